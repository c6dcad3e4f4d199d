package driver

import "time"

type DriverOpt func(*Driver)

func WithTickLength(tickLength time.Duration) DriverOpt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}

// WithManager adds a manager to the end of the tick order.
func WithManager(name string, m Manager) DriverOpt {
	return func(d *Driver) {
		d.managers = append(d.managers, namedManager{name: name, m: m})
	}
}
