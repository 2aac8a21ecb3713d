// Package logging builds the slog loggers used across yt-fetch.
//
// Two formats are supported: "console" renders one line per record as
// "time LEVEL component: message key=value ...", colorizing the level when
// stdout is a terminal; "json" emits one object per line with ts, level,
// and msg keys. Request identifiers travel through context.Context and are
// attached with WithContext.
package logging
