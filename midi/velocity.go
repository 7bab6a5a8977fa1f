package midi

import (
	"math"
	"time"
)

// Impact speeds (world units per second) mapped onto the MIDI range
const (
	MinSpeed = 50.0
	MaxSpeed = 750.0

	MaxVelocity     uint8 = 0x7F
	MaxNoteDuration       = 400 * time.Millisecond
)

// scaleSpeed clamps speed to [MinSpeed, MaxSpeed] and rescales it to [0, 1]
func scaleSpeed(speed float64) float64 {
	if math.IsNaN(speed) {
		speed = MinSpeed
	}
	speed = math.Min(math.Max(speed, MinSpeed), MaxSpeed)
	return (speed - MinSpeed) / (MaxSpeed - MinSpeed)
}

// ToVelocity converts an impact speed to a MIDI velocity, truncating
func ToVelocity(speed float64) uint8 {
	return uint8(float64(MaxVelocity) * scaleSpeed(speed))
}

// ToNoteDuration converts an impact speed to a note length in whole
// milliseconds between 0 and MaxNoteDuration
func ToNoteDuration(speed float64) time.Duration {
	ms := float64(MaxNoteDuration.Milliseconds()) * scaleSpeed(speed)
	return time.Duration(ms) * time.Millisecond
}
