package domain

import "time"

// StoredTime normalizes t to what every store keeps: UTC with microsecond precision.
func StoredTime(t time.Time) time.Time { return t.UTC().Truncate(time.Microsecond) }
