//go:build !linux

package raspberry

// open fails, the hardware drivers require linux. Only the sim driver is available.
func (c *Chip) open() error {
	return ErrUnsupported
}
