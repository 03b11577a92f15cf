// Package sources provides the tool data sources monitored by the watchdog.
//
// A source exposes an opaque revision token through Timestamp.
// The watchdog only compares tokens for equality between ticks,
// so a token may be a counter, a modification time, or accumulated CPU time.
package sources

import "errors"

// ErrSourceUnavailable indicates a source can no longer be read.
var ErrSourceUnavailable = errors.New("source unavailable")

// Source is an independently-updated data source.
// Timestamp must not block.
type Source interface {
	Timestamp() (uint64, error)
}

// Stopper is implemented by sources holding resources that must be released
// when the source is removed from the scene.
type Stopper interface {
	Stop() error
}
