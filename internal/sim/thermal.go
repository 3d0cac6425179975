package sim

// Thermal model constants. The lag factor is applied once per tick, so
// the effective time constant scales with the configured update rate;
// that coupling is intentional for this tick-based model.
const (
	ambientTemp      = 25.0
	maxMotorTemp     = 65.0
	thermalBaseline  = 45.0
	thermalLoadGain  = 0.5
	thermalLagFactor = 0.05
)

// thermalModel tracks one temperature accumulator per motor as a discrete
// first-order lag toward a current-dependent target.
type thermalModel struct {
	temps JointSet[float64]
}

func newThermalModel() thermalModel {
	m := thermalModel{}
	m.reset()
	return m
}

// update advances the accumulator for j given the motor's instantaneous
// current draw and returns the exposed (clamped) temperature.
func (m *thermalModel) update(j Joint, current float64) float64 {
	target := thermalBaseline + thermalLoadGain*current
	acc := m.temps.At(j)
	*acc += (target - *acc) * thermalLagFactor
	return clamp(*acc, ambientTemp, maxMotorTemp)
}

// reset returns every accumulator to ambient.
func (m *thermalModel) reset() {
	for _, j := range AllJoints {
		*m.temps.At(j) = ambientTemp
	}
}
