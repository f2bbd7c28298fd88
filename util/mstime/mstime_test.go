package mstime

import (
	"testing"
	"time"
)

func TestMillisecondRoundTrip(t *testing.T) {
	original := time.Date(2021, time.March, 4, 5, 6, 7, 891234567, time.UTC)
	milliseconds := ToUnixMilliseconds(original)
	if milliseconds%1000 != 891 {
		t.Fatalf("TestMillisecondRoundTrip: unexpected milliseconds %d", milliseconds)
	}

	converted := UnixMillisecondsToTime(milliseconds)
	if !converted.Equal(original.Truncate(time.Millisecond)) {
		t.Fatalf("TestMillisecondRoundTrip: got %s, want %s", converted, original.Truncate(time.Millisecond))
	}
}

func TestNowUnixMilliseconds(t *testing.T) {
	before := ToUnixMilliseconds(time.Now())
	now := NowUnixMilliseconds()
	after := ToUnixMilliseconds(time.Now())
	if now < before || now > after {
		t.Fatalf("TestNowUnixMilliseconds: %d is not within [%d, %d]", now, before, after)
	}
}
