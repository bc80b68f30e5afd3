package dht

import (
	"runtime"
	rtdebug "runtime/debug"
)

// ReadLocked is Read with the goroutine locked to its thread and the
// garbage collector stopped until the sensor has sent its frame.
// A stop-the-world pause during the 4ms frame shifts the pulse widths.
func (d *Decoder) ReadLocked() (int, Reading, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	gcPercent := rtdebug.SetGCPercent(-1)
	defer rtdebug.SetGCPercent(gcPercent)

	return d.Read()
}
