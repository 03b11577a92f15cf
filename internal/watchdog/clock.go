package watchdog

import "time"

// Clock supplies the wall-clock time used for elapsed-time accounting.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
