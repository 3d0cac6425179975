package sim

import (
	"math"
	"testing"
)

func TestRandomWalkRanges(t *testing.T) {
	w := &randomWalkSynthesizer{noise: newNoiseSource(3)}

	for i := 0; i < 5000; i++ {
		joints := w.joints(0.1)
		for _, j := range AllJoints {
			st := joints.At(j)
			if math.Abs(st.Position) > maxPosition {
				t.Fatalf("tick %d %s position %v out of range", i, j, st.Position)
			}
			if math.Abs(st.Velocity) > maxVelocity {
				t.Fatalf("tick %d %s velocity %v out of range", i, j, st.Velocity)
			}
			if math.Abs(st.Torque) > maxTorque {
				t.Fatalf("tick %d %s torque %v out of range", i, j, st.Torque)
			}
		}
	}
}

// A zero dt must leave positions and velocities exactly where they were:
// the walk integrates measured time, it does not assume a tick happened.
func TestRandomWalkZeroDt(t *testing.T) {
	w := &randomWalkSynthesizer{noise: newNoiseSource(3)}
	for i := 0; i < 20; i++ {
		w.joints(0.1)
	}
	before := w.positions
	beforeVel := w.velocities

	joints := w.joints(0)
	for _, j := range AllJoints {
		if got, want := joints.At(j).Position, *before.At(j); got != want {
			t.Errorf("%s position moved on dt=0: %v != %v", j, got, want)
		}
		if got, want := joints.At(j).Velocity, *beforeVel.At(j); got != want {
			t.Errorf("%s velocity moved on dt=0: %v != %v", j, got, want)
		}
	}
}

// A huge dt after a stall saturates at the clamp bounds instead of
// overflowing.
func TestRandomWalkLargeDtSaturates(t *testing.T) {
	w := &randomWalkSynthesizer{noise: newNoiseSource(9)}

	joints := w.joints(1e6)
	for _, j := range AllJoints {
		st := joints.At(j)
		if math.Abs(st.Velocity) > maxVelocity {
			t.Errorf("%s velocity %v exceeds clamp after stall", j, st.Velocity)
		}
		if math.Abs(st.Position) > maxPosition {
			t.Errorf("%s position %v exceeds clamp after stall", j, st.Position)
		}
		// With dt this large the position integral pins at a bound.
		if math.Abs(st.Position) != maxPosition {
			t.Errorf("%s position %v not saturated after stall", j, st.Position)
		}
	}
}

func TestRandomWalkReset(t *testing.T) {
	w := &randomWalkSynthesizer{noise: newNoiseSource(3)}
	for i := 0; i < 50; i++ {
		w.joints(0.1)
	}
	w.reset()

	if w.positions != (JointSet[float64]{}) || w.velocities != (JointSet[float64]{}) {
		t.Errorf("reset left walk state: pos=%+v vel=%+v", w.positions, w.velocities)
	}
}
