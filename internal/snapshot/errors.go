package snapshot

import "errors"

var (
	// ErrParamDim indicates a parameter vector of the wrong length.
	ErrParamDim = errors.New("snapshot: parameter vector has wrong length")

	// ErrOutputDim indicates a model output of the wrong length.
	ErrOutputDim = errors.New("snapshot: output vector has wrong length")

	// ErrUnknownMetric indicates a metric name with no implementation.
	ErrUnknownMetric = errors.New("snapshot: unknown metric")

	// ErrNotConfigurable indicates a system whose parameters cannot be set.
	ErrNotConfigurable = errors.New("snapshot: system is not configurable")

	// ErrNoEnergy indicates the energy metric on a system without a
	// Hamiltonian.
	ErrNoEnergy = errors.New("snapshot: system does not define an energy")

	// ErrComponent indicates a state component outside the system's state.
	ErrComponent = errors.New("snapshot: state component out of range")
)
