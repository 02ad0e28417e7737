package xtime

import "time"

func UTCNow() time.Time {
	return time.Now().UTC()
}

// UnixMilli converts a time to epoch milliseconds.
func UnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}

// FromUnixMilli converts epoch milliseconds to a UTC time.
// A zero input yields the zero time.
func FromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}

	return time.UnixMilli(ms).UTC()
}
