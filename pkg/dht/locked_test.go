package dht

import (
	rtdebug "runtime/debug"
	"testing"
	"time"
)

func TestReadLocked(t *testing.T) {
	old := rtdebug.SetGCPercent(75)
	defer rtdebug.SetGCPercent(old)

	var gcDuringRead int
	l := respond(Frame{60, 0, 25, 0, 85})
	d := New(l, DHT11,
		WithSleep(func(time.Duration) {
			gcDuringRead = rtdebug.SetGCPercent(-1)
		}),
		WithSpin(func(time.Duration) {}))

	n, r, err := d.ReadLocked()
	if err != nil || n != 2 || r.Humidity != 60 || r.Temperature != 25 {
		t.Fatalf("ReadLocked = %d, %+v, %v", n, r, err)
	}
	if gcDuringRead != -1 {
		t.Fatalf("gc percent during read = %d, want -1 (off)", gcDuringRead)
	}
	if p := rtdebug.SetGCPercent(75); p != 75 {
		t.Fatalf("gc percent after read = %d, want 75", p)
	}
}
