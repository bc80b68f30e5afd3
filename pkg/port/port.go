// Package port holds the definition of a physical port
package port

import "time"

const (
	// MaxPulse is the longest pulse (phase) MeasurePulse waits for.
	MaxPulse = 255 * time.Microsecond

	// PulseTimeout is returned by Pulse if no pulse completes within MaxPulse.
	// It is negative, so it never collides with a measured width.
	PulseTimeout time.Duration = -1
)

// Line is a single open-drain data line shared by the host and a device.
//
// The methods don't return errors: a line that can't be switched or read
// behaves like a line without a device attached.
type Line interface {
	// OpenDrain configures the line as open-drain with pull-up, released (high).
	OpenDrain()
	// Output switches the line to output and drives it low.
	Output()
	// Input releases the line, the pull-up takes over.
	Input()
	// Read returns the current level (true = high).
	Read() bool
	// Pulse waits for the next high pulse and returns its width,
	// or PulseTimeout.
	Pulse() time.Duration
	// Pin returns the pin number that this Line represents.
	Pin() int
	// Close releases the line.
	Close() error
}

// StateType is the logical level of a line.
type StateType int

const (
	// High indicates a logical 1.
	High StateType = 1
	// Low indicates a logical 0.
	Low StateType = 0
	// Invalid indicates an unknown or invalid state.
	Invalid StateType = -1
)

// State converts a line level to a StateType.
func State(level bool) StateType {
	if level {
		return High
	}
	return Low
}

func (s StateType) String() string {
	switch s {
	case High:
		return "high"
	case Low:
		return "low"
	default:
		return "invalid"
	}
}

// MeasurePulse measures the width of the next high pulse on a line read by read.
//  * a low phase in progress is skipped first
//  * the high phase is timed until the line goes low again
// If either phase lasts longer than limit, PulseTimeout is returned.
func MeasurePulse(read func() bool, limit time.Duration) time.Duration {
	start := time.Now()
	for !read() {
		if time.Since(start) > limit {
			return PulseTimeout
		}
	}

	start = time.Now()
	for read() {
		if time.Since(start) > limit {
			return PulseTimeout
		}
	}

	return time.Since(start)
}

// Spin busy-waits for d.
// time.Sleep can't hold microsecond delays, the scheduler wakes up much later.
func Spin(d time.Duration) {
	for start := time.Now(); time.Since(start) < d; {
	}
}
