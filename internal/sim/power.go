package sim

import "math"

// Power synthesis constants. The battery depletes at 0.01 %/s of wall
// time and wraps back to 100 whenever it would fall to 20 % or below; the
// sawtooth is preserved for compatibility with existing dashboards rather
// than depleting to zero.
const (
	batteryDrainPerSec   = 0.01
	batteryWrapThreshold = 20.0
	batteryVoltageBase   = 22.0
	batteryVoltageRange  = 4.0
	baselineCurrentDraw  = 5.0
	maxTotalCurrentDraw  = 35.0
)

// batteryPercentage is a pure function of elapsed seconds since engine
// start: a sawtooth from 100 down to the wrap threshold and back, with a
// period of (100-threshold)/drain seconds.
func batteryPercentage(elapsed float64) float64 {
	return 100.0 - math.Mod(elapsed*batteryDrainPerSec, 100.0-batteryWrapThreshold)
}

// powerState derives the full power record from elapsed time and the
// per-motor currents of the current tick.
func powerState(elapsed float64, motors *JointSet[MotorState]) PowerState {
	pct := batteryPercentage(elapsed)

	total := motors.LeftHip.Current +
		motors.RightHip.Current +
		motors.LeftKnee.Current +
		motors.RightKnee.Current

	return PowerState{
		BatteryPercentage: pct,
		BatteryVoltage:    batteryVoltageBase + (pct/100.0)*batteryVoltageRange,
		CurrentDraw:       clamp(baselineCurrentDraw+total, baselineCurrentDraw, maxTotalCurrentDraw),
	}
}
