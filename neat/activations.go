package neat

import (
	"fmt"
	"math"
	"strings"
)

// Activation is the closed set of unary functions a neuron can apply.
type Activation int

const (
	Sigmoid Activation = iota
	Tanh
	ReLU
	Identity
)

// DefaultActivation is assigned to neurons created by mutation and initialization.
const DefaultActivation = Sigmoid

// activationNames maps configuration names to activations.
var activationNames = map[string]Activation{
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"identity": Identity,
}

// ParseActivation looks an activation up by its configuration name.
func ParseActivation(name string) (Activation, error) {
	if a, ok := activationNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("unknown activation function: %s", name)
}

// Apply evaluates the activation at x.
func (a Activation) Apply(x float64) float64 {
	switch a {
	case Sigmoid:
		return 1.0 / (1.0 + math.Exp(-x))
	case Tanh:
		return math.Tanh(x)
	case ReLU:
		return math.Max(0, x)
	case Identity:
		return x
	default:
		panic(fmt.Sprintf("neat: unknown activation %d", int(a)))
	}
}

// String returns the name accepted by ParseActivation.
func (a Activation) String() string {
	switch a {
	case Sigmoid:
		return "sigmoid"
	case Tanh:
		return "tanh"
	case ReLU:
		return "relu"
	case Identity:
		return "identity"
	default:
		return fmt.Sprintf("activation(%d)", int(a))
	}
}
