package model

// CollectionSummary collects the per-item outcomes of a playlist fetch.
// Item failures never abort the collection, so Outcomes always has one entry
// per enumerated item (or a single entry when the collection itself failed).
type CollectionSummary struct {
	Reference string
	Title     string
	Directory string
	Outcomes  []Outcome
}

// SingleFailure builds a summary for a collection that failed before any item ran
func SingleFailure(reference string, stage Stage, reason string, err error) CollectionSummary {
	return CollectionSummary{
		Reference: reference,
		Outcomes:  []Outcome{Failed(reference, stage, reason, err)},
	}
}

// Total returns the number of outcomes
func (c CollectionSummary) Total() int {
	return len(c.Outcomes)
}

// Succeeded returns the number of fully successful items
func (c CollectionSummary) Succeeded() int {
	n := 0
	for _, o := range c.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Degraded returns the number of items downloaded but not normalized
func (c CollectionSummary) Degraded() int {
	n := 0
	for _, o := range c.Outcomes {
		if o.Degraded() {
			n++
		}
	}
	return n
}

// Failed returns the number of items with no usable file
func (c CollectionSummary) Failed() int {
	return c.Total() - c.Succeeded() - c.Degraded()
}

// AllOK returns true if there is at least one outcome and none failed
func (c CollectionSummary) AllOK() bool {
	return c.Total() > 0 && c.Succeeded() == c.Total()
}
