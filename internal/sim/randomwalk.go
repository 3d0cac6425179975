package sim

// randomWalkSynthesizer integrates a smooth per-joint random walk:
// bounded random acceleration into velocity, velocity into position, both
// clamped. State persists across ticks until the engine resets.
type randomWalkSynthesizer struct {
	noise      *noiseSource
	positions  JointSet[float64]
	velocities JointSet[float64]
}

// joints advances every joint by dt seconds and returns the resulting
// state. dt is the measured inter-tick interval, not an assumed constant:
// a very large dt after a stall legitimately saturates velocity and
// position at their clamp bounds in a single step.
func (r *randomWalkSynthesizer) joints(dt float64) JointSet[JointState] {
	for _, j := range AllJoints {
		vel := r.velocities.At(j)
		*vel = clamp(*vel+r.noise.uniform(0.5)*dt, -maxVelocity, maxVelocity)

		pos := r.positions.At(j)
		*pos = clamp(*pos+*vel*dt, -maxPosition, maxPosition)
	}

	leftHipTorque := clamp(r.velocities.LeftHip*torqueGain+r.noise.uniform(1.0), -maxTorque, maxTorque)
	rightHipTorque := clamp(r.velocities.RightHip*torqueGain+r.noise.uniform(1.0), -maxTorque, maxTorque)
	leftKneeTorque := clamp(r.velocities.LeftKnee*torqueGain+r.noise.uniform(1.0), -maxTorque, maxTorque)
	rightKneeTorque := clamp(r.velocities.RightKnee*torqueGain+r.noise.uniform(1.0), -maxTorque, maxTorque)

	return JointSet[JointState]{
		LeftHip: JointState{
			Position: r.positions.LeftHip,
			Velocity: r.velocities.LeftHip,
			Torque:   leftHipTorque,
		},
		RightHip: JointState{
			Position: r.positions.RightHip,
			Velocity: r.velocities.RightHip,
			Torque:   rightHipTorque,
		},
		LeftKnee: JointState{
			Position: r.positions.LeftKnee,
			Velocity: r.velocities.LeftKnee,
			Torque:   leftKneeTorque,
		},
		RightKnee: JointState{
			Position: r.positions.RightKnee,
			Velocity: r.velocities.RightKnee,
			Torque:   rightKneeTorque,
		},
	}
}

// reset zeroes all per-joint walk state.
func (r *randomWalkSynthesizer) reset() {
	r.positions = JointSet[float64]{}
	r.velocities = JointSet[float64]{}
}
