// Package sim synthesizes physically plausible exoskeleton telemetry:
// joint kinematics, motor currents and temperatures, IMU readings, power
// draw, and an overall health verdict, one immutable packet per tick.
package sim

import (
	"fmt"
	"time"
)

// Joint identifies one of the four actuated joints. The set is closed:
// every per-joint record always carries exactly these four slots.
type Joint int

const (
	LeftHip Joint = iota
	LeftKnee
	RightHip
	RightKnee

	NumJoints = 4
)

var jointNames = [NumJoints]string{"left_hip", "left_knee", "right_hip", "right_knee"}

// AllJoints lists every joint in declaration order.
var AllJoints = [NumJoints]Joint{LeftHip, LeftKnee, RightHip, RightKnee}

func (j Joint) String() string {
	if j < 0 || j >= NumJoints {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// Valid reports whether j names one of the four joints.
func (j Joint) Valid() bool {
	return j >= 0 && j < NumJoints
}

// ParseJoint maps a wire name like "left_hip" back to its Joint.
func ParseJoint(name string) (Joint, error) {
	for i, n := range jointNames {
		if n == name {
			return Joint(i), nil
		}
	}
	return 0, fmt.Errorf("invalid joint %q", name)
}

// MotorStatus is the health state of a single motor driver.
type MotorStatus string

const (
	StatusOK      MotorStatus = "ok"
	StatusWarning MotorStatus = "warning"
	StatusError   MotorStatus = "error"
	StatusOffline MotorStatus = "offline"
)

// ParseMotorStatus validates a wire value for MotorStatus.
func ParseMotorStatus(s string) (MotorStatus, error) {
	switch MotorStatus(s) {
	case StatusOK, StatusWarning, StatusError, StatusOffline:
		return MotorStatus(s), nil
	}
	return "", fmt.Errorf("invalid motor status %q", s)
}

// Health is the system-wide verdict reduced from motor statuses and the
// emergency stop flag.
type Health string

const (
	Healthy  Health = "healthy"
	Degraded Health = "degraded"
	Critical Health = "critical"
)

// JointSet holds one value per joint as a fixed four-slot record, so
// "exactly these four joints" is enforced structurally rather than by a
// dynamic map.
type JointSet[T any] struct {
	LeftHip   T `json:"left_hip"`
	LeftKnee  T `json:"left_knee"`
	RightHip  T `json:"right_hip"`
	RightKnee T `json:"right_knee"`
}

// At returns a pointer to the slot for j. Callers must pass a valid joint.
func (s *JointSet[T]) At(j Joint) *T {
	switch j {
	case LeftHip:
		return &s.LeftHip
	case LeftKnee:
		return &s.LeftKnee
	case RightHip:
		return &s.RightHip
	case RightKnee:
		return &s.RightKnee
	}
	panic(fmt.Sprintf("sim: invalid joint %d", int(j)))
}

// JointState is the kinematic state of one joint for one tick.
// Position is radians in [-pi, pi], velocity rad/s in [-2, 2], torque
// N·m in [-30, 30].
type JointState struct {
	Position float64 `json:"position"`
	Velocity float64 `json:"velocity"`
	Torque   float64 `json:"torque"`
}

// MotorState is the electrical state of one motor for one tick. Current
// is amperes in [0.5, 15], temperature Celsius in [25, 65].
type MotorState struct {
	Current     float64     `json:"current"`
	Temperature float64     `json:"temperature"`
	Status      MotorStatus `json:"status"`
}

// IMUReading is one inertial sample. Acceleration is m/s² with gravity on
// the vertical axis; gyroscope is rad/s.
type IMUReading struct {
	Acceleration [3]float64 `json:"acceleration"`
	Gyroscope    [3]float64 `json:"gyroscope"`
}

// PowerState is the battery and bus state for one tick.
type PowerState struct {
	BatteryPercentage float64 `json:"battery_percentage"`
	BatteryVoltage    float64 `json:"battery_voltage"`
	CurrentDraw       float64 `json:"current_draw"`
}

// SystemStatus carries the health verdict and operator-visible state.
type SystemStatus struct {
	HealthStatus  Health   `json:"health_status"`
	EmergencyStop bool     `json:"emergency_stop"`
	ErrorMessages []string `json:"error_messages"`
	UptimeSeconds float64  `json:"uptime_seconds"`
}

// Packet is one complete telemetry frame. Packets are immutable once
// emitted; the engine owns them until published, after which any number
// of sessions may read them concurrently.
type Packet struct {
	Timestamp time.Time            `json:"timestamp"`
	Sequence  uint64               `json:"sequence"`
	Joints    JointSet[JointState] `json:"joints"`
	Motors    JointSet[MotorState] `json:"motors"`
	Sensors   JointSet[IMUReading] `json:"sensors"`
	Power     PowerState           `json:"power"`
	System    SystemStatus         `json:"system"`
}
