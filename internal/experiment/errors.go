package experiment

import "errors"

var (
	// ErrInvalidBounds indicates an empty parameter list or a parameter
	// whose minimum is not below its maximum.
	ErrInvalidBounds = errors.New("experiment: parameter bounds need min < max")

	// ErrLevels indicates a grid with fewer than two levels per parameter.
	ErrLevels = errors.New("experiment: grid needs at least two levels")

	// ErrUnknownModel indicates a model name missing from the registry.
	ErrUnknownModel = errors.New("experiment: unknown model")

	// ErrUnknownIntegrator indicates an integrator name missing from the
	// registry.
	ErrUnknownIntegrator = errors.New("experiment: unknown integrator")
)
