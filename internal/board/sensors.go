package board

import "periph.io/x/conn/v3/gpio"

// DiscreteSensor is one of the three HT inputs wired straight to a
// GPIO line instead of going through the expanders. The line is pulled
// up, so the raw level is inverted: low means active.
type DiscreteSensor struct {
	Name string
	Pin  gpio.PinIO
}

// Active reports whether the sensor is asserted. A sensor whose pin
// could not be opened has a nil Pin and always reads inactive.
func (s DiscreteSensor) Active() bool {
	if s.Pin == nil {
		return false
	}
	return s.Pin.Read() == gpio.Low
}
