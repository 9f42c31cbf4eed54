package stopwatch

import "time"

// Clock is the time source a Timer reads from.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock reads the host wall clock.
var SystemClock Clock = systemClock{}
