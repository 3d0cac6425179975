package sim

// evaluateHealth reduces motor statuses and the emergency stop flag to a
// single verdict. Emergency stop dominates regardless of motor state,
// then any errored motor, then any warning.
func evaluateHealth(emergencyStop bool, motors *JointSet[MotorState]) Health {
	if emergencyStop {
		return Critical
	}

	anyWarning := false
	for _, j := range AllJoints {
		switch motors.At(j).Status {
		case StatusError:
			return Critical
		case StatusWarning:
			anyWarning = true
		}
	}
	if anyWarning {
		return Degraded
	}
	return Healthy
}
