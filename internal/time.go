package internal

import "time"

// CurrentTimestamp is *the* way to get a current timestamp in scr and
// time.Now() should be avoided.
//
// Timestamps are rounded to the nearest millisecond so that they survive a
// round trip through postgres, and are in UTC so that testify's DeepEqual
// comparisons don't trip over differing time zones.
func CurrentTimestamp() time.Time {
	return time.Now().Round(time.Millisecond).UTC()
}

// Clock returns the current time. Tests swap it out to pin the reporting
// month.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return CurrentTimestamp()
	}
	return c()
}
