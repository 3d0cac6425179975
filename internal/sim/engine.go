package sim

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Mode selects the joint synthesis strategy. It is fixed at construction
// for the lifetime of the engine.
type Mode string

const (
	ModeGait   Mode = "gait"
	ModeRandom Mode = "random"
)

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeGait, ModeRandom:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid mode %q (must be %q or %q)", s, ModeGait, ModeRandom)
}

// Engine owns all mutable simulation state: the sequence counter, clock
// origin, thermal and battery accumulators, random-walk state, and the
// operator-settable fault flags. Tick is called by a single producer
// goroutine; the fault mutators may be called concurrently from request
// handlers and are applied atomically with respect to Tick.
type Engine struct {
	mode Mode
	rate float64

	mu       sync.Mutex
	noise    *noiseSource
	gait     *gaitSynthesizer
	walk     *randomWalkSynthesizer
	thermal  thermalModel
	seq      uint64
	start    time.Time
	lastTick time.Time

	statuses      JointSet[MotorStatus]
	emergencyStop bool
	errorMessages []string

	seed int64
	now  func() time.Time
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithSeed fixes the noise source seed for reproducible runs. The zero
// seed (default) derives one from the clock.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine validates the configuration and builds an engine. An invalid
// mode or non-positive rate is fatal here: no partial engine is created.
func NewEngine(mode Mode, rateHz float64, opts ...Option) (*Engine, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if rateHz <= 0 {
		return nil, fmt.Errorf("invalid update rate %v Hz (must be > 0)", rateHz)
	}

	e := &Engine{
		mode: mode,
		rate: rateHz,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.seed == 0 {
		e.seed = e.now().UnixNano()
	}

	e.noise = newNoiseSource(e.seed)
	e.gait = &gaitSynthesizer{noise: e.noise}
	e.walk = &randomWalkSynthesizer{noise: e.noise}
	e.thermal = newThermalModel()
	e.resetLocked(e.now())
	return e, nil
}

// Mode returns the synthesis mode fixed at construction.
func (e *Engine) Mode() Mode { return e.mode }

// Rate returns the configured target update rate in Hz.
func (e *Engine) Rate() float64 { return e.rate }

// Tick advances every sub-model by the wall time elapsed since the
// previous tick and returns a freshly built packet. The sequence number
// increments by exactly one per call, starting at zero.
func (e *Engine) Tick() *Packet {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	dt := now.Sub(e.lastTick).Seconds()
	e.lastTick = now
	elapsed := now.Sub(e.start).Seconds()

	var joints JointSet[JointState]
	if e.mode == ModeGait {
		joints = e.gait.joints(elapsed)
	} else {
		joints = e.walk.joints(dt)
	}

	motors := e.generateMotors(&joints)
	sensors := e.generateSensors(&joints)
	power := powerState(elapsed, &motors)

	system := SystemStatus{
		HealthStatus:  evaluateHealth(e.emergencyStop, &motors),
		EmergencyStop: e.emergencyStop,
		ErrorMessages: append(make([]string, 0, len(e.errorMessages)), e.errorMessages...),
		UptimeSeconds: elapsed,
	}

	pkt := &Packet{
		Timestamp: now.UTC(),
		Sequence:  e.seq,
		Joints:    joints,
		Motors:    motors,
		Sensors:   sensors,
		Power:     power,
		System:    system,
	}
	e.seq++
	return pkt
}

// generateMotors derives per-motor current from torque magnitude and
// advances the thermal accumulators. Hips before knees, left before
// right, to keep the noise draw order stable.
func (e *Engine) generateMotors(joints *JointSet[JointState]) JointSet[MotorState] {
	var motors JointSet[MotorState]
	for _, j := range [NumJoints]Joint{LeftHip, RightHip, LeftKnee, RightKnee} {
		torque := joints.At(j).Torque
		current := clamp(math.Abs(torque)*0.3+2.0+e.noise.uniform(0.5), 0.5, 15.0)
		*motors.At(j) = MotorState{
			Current:     current,
			Temperature: e.thermal.update(j, current),
			Status:      *e.statuses.At(j),
		}
	}
	return motors
}

// generateSensors synthesizes IMU readings correlated with joint
// velocity, with gravity on the vertical acceleration axis.
func (e *Engine) generateSensors(joints *JointSet[JointState]) JointSet[IMUReading] {
	var sensors JointSet[IMUReading]
	for _, j := range [NumJoints]Joint{LeftHip, RightHip, LeftKnee, RightKnee} {
		vel := joints.At(j).Velocity
		gyro := [3]float64{
			clamp(vel*0.3+e.noise.uniform(0.1), -1.0, 1.0),
			clamp(vel*0.2+e.noise.uniform(0.1), -1.0, 1.0),
			clamp(vel*0.25+e.noise.uniform(0.1), -1.0, 1.0),
		}
		accel := [3]float64{
			clamp(e.noise.uniform(0.5), -2.0, 2.0),
			clamp(-9.8+e.noise.uniform(0.3), -11.0, -8.0),
			clamp(e.noise.uniform(0.5), -2.0, 2.0),
		}
		*sensors.At(j) = IMUReading{Acceleration: accel, Gyroscope: gyro}
	}
	return sensors
}

// SetMotorStatus overrides the reported status of one motor, visible from
// the next tick. An invalid joint or status is rejected without touching
// the simulation.
func (e *Engine) SetMotorStatus(j Joint, status MotorStatus) error {
	if !j.Valid() {
		return fmt.Errorf("invalid joint %d", int(j))
	}
	if _, err := ParseMotorStatus(string(status)); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	*e.statuses.At(j) = status
	return nil
}

// SetEmergencyStop toggles the emergency stop flag.
func (e *Engine) SetEmergencyStop(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emergencyStop = active
}

// AddErrorMessage appends an operator-visible error message.
func (e *Engine) AddErrorMessage(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errorMessages = append(e.errorMessages, msg)
}

// ClearErrorMessages drops all operator-visible error messages.
func (e *Engine) ClearErrorMessages() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errorMessages = nil
}

// Reset atomically restores the engine to its initial state: sequence
// zero, clock origin now, ambient thermal accumulators, zeroed random
// walk, all faults cleared. Accumulators are never reset implicitly.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked(e.now())
}

func (e *Engine) resetLocked(now time.Time) {
	e.seq = 0
	e.start = now
	e.lastTick = now
	e.thermal.reset()
	e.walk.reset()
	for _, j := range AllJoints {
		*e.statuses.At(j) = StatusOK
	}
	e.emergencyStop = false
	e.errorMessages = nil
}
