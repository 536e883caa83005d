// Package schedule turns a thermostat program payload into setpoints and
// picks the one that applies at a given time of day.
package schedule

import "fmt"

// DefaultTargetC is returned by Resolve when no program point is available.
const DefaultTargetC = 20.0

// DefaultMaxPoints bounds how many points a single payload may contribute.
const DefaultMaxPoints = 3

// TimeOfDay is a wall-clock hour and minute.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Valid reports whether the hour and minute are in range.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Point is a single program entry: from At onwards the target is TempC.
type Point struct {
	At    TimeOfDay
	TempC float64
}

// Schedule holds points in the order they were parsed. Duplicate times are
// allowed; the earlier entry wins.
type Schedule []Point
