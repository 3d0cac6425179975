package sim

import "math"

// Joint range limits shared by both synthesizers.
const (
	maxPosition = math.Pi
	maxVelocity = 2.0
	maxTorque   = 30.0
)

// Gait waveform parameters: 1 Hz stride, hips as the primary oscillation,
// knees 45° ahead with slightly larger amplitude, right side in antiphase.
const (
	gaitFrequency   = 1.0
	hipAmplitude    = 0.5
	kneeAmplitude   = 0.6
	kneePhaseOffset = math.Pi / 4
	torqueGain      = 15.0
)

// gaitSynthesizer produces a deterministic walking pattern as a function
// of elapsed time, plus bounded noise on velocities and torques.
type gaitSynthesizer struct {
	noise *noiseSource
}

// joints returns the kinematic state for all four joints at the given
// elapsed time since engine start. Noise is consumed in a fixed order
// (velocities hips before knees, then torques in the same order) so
// seeded runs reproduce exactly.
func (g *gaitSynthesizer) joints(elapsed float64) JointSet[JointState] {
	phase := 2 * math.Pi * gaitFrequency * elapsed

	leftHipPos := hipAmplitude * math.Sin(phase)
	rightHipPos := hipAmplitude * math.Sin(phase+math.Pi)
	leftKneePos := kneeAmplitude * math.Sin(phase+kneePhaseOffset)
	rightKneePos := kneeAmplitude * math.Sin(phase+math.Pi+kneePhaseOffset)

	// Velocities are the analytic derivative of the position terms.
	hipVelFactor := hipAmplitude * 2 * math.Pi * gaitFrequency
	kneeVelFactor := kneeAmplitude * 2 * math.Pi * gaitFrequency
	leftHipVel := hipVelFactor*math.Cos(phase) + g.noise.uniform(0.1)
	rightHipVel := hipVelFactor*math.Cos(phase+math.Pi) + g.noise.uniform(0.1)
	leftKneeVel := kneeVelFactor*math.Cos(phase+kneePhaseOffset) + g.noise.uniform(0.1)
	rightKneeVel := kneeVelFactor*math.Cos(phase+math.Pi+kneePhaseOffset) + g.noise.uniform(0.1)

	leftHipTorque := clamp(leftHipVel*torqueGain+g.noise.uniform(1.0), -maxTorque, maxTorque)
	rightHipTorque := clamp(rightHipVel*torqueGain+g.noise.uniform(1.0), -maxTorque, maxTorque)
	leftKneeTorque := clamp(leftKneeVel*torqueGain+g.noise.uniform(1.0), -maxTorque, maxTorque)
	rightKneeTorque := clamp(rightKneeVel*torqueGain+g.noise.uniform(1.0), -maxTorque, maxTorque)

	// Clamps are unconditional even though the analytic formula stays in
	// range for positions.
	return JointSet[JointState]{
		LeftHip: JointState{
			Position: clamp(leftHipPos, -maxPosition, maxPosition),
			Velocity: clamp(leftHipVel, -maxVelocity, maxVelocity),
			Torque:   leftHipTorque,
		},
		RightHip: JointState{
			Position: clamp(rightHipPos, -maxPosition, maxPosition),
			Velocity: clamp(rightHipVel, -maxVelocity, maxVelocity),
			Torque:   rightHipTorque,
		},
		LeftKnee: JointState{
			Position: clamp(leftKneePos, -maxPosition, maxPosition),
			Velocity: clamp(leftKneeVel, -maxVelocity, maxVelocity),
			Torque:   leftKneeTorque,
		},
		RightKnee: JointState{
			Position: clamp(rightKneePos, -maxPosition, maxPosition),
			Velocity: clamp(rightKneeVel, -maxVelocity, maxVelocity),
			Torque:   rightKneeTorque,
		},
	}
}
