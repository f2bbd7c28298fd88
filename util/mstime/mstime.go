package mstime

import "time"

const nanosecondsInMillisecond = int64(time.Millisecond / time.Nanosecond)

// NowUnixMilliseconds returns the current time as the millisecond timestamp
// carried by block headers
func NowUnixMilliseconds() int64 {
	return ToUnixMilliseconds(time.Now())
}

// ToUnixMilliseconds converts t to a millisecond timestamp
func ToUnixMilliseconds(t time.Time) int64 {
	return t.UnixNano() / nanosecondsInMillisecond
}

// UnixMillisecondsToTime converts a millisecond timestamp to a time.Time
func UnixMillisecondsToTime(milliseconds int64) time.Time {
	return time.Unix(0, milliseconds*nanosecondsInMillisecond)
}
