package neat

import (
	"fmt"
)

// --------------------------- NeuronGene ---------------------------

// NeuronGene represents a neuron in the genome.
type NeuronGene struct {
	ID         int // Unique within a genome; the id range decides input/output/hidden role.
	Bias       float64
	Activation Activation
}

// String returns a string representation of the NeuronGene.
func (ng *NeuronGene) String() string {
	return fmt.Sprintf("NeuronGene(ID: %d, Bias: %.3f, Activation: %s)", ng.ID, ng.Bias, ng.Activation)
}

// Copy creates a deep copy of the NeuronGene.
func (ng *NeuronGene) Copy() *NeuronGene {
	c := *ng
	return &c
}

// Crossover creates a child gene taking bias and activation independently
// from either parent with a fair coin flip. ng keeps its id.
func (ng *NeuronGene) Crossover(other *NeuronGene, rng Source) *NeuronGene {
	child := ng.Copy()
	if rng.Bool() {
		child.Bias = other.Bias
	}
	if rng.Bool() {
		child.Activation = other.Activation
	}
	return child
}

// --------------------------- LinkGene ---------------------------

// LinkID identifies a link gene. The ordered pair is its only identity.
type LinkID struct {
	InputID  int
	OutputID int
}

// String formats the link as "in->out".
func (id LinkID) String() string {
	return fmt.Sprintf("%d->%d", id.InputID, id.OutputID)
}

// LinkGene represents a directed weighted connection between two neurons.
// Disabled links stay in the genome so that they can be re-enabled later.
type LinkGene struct {
	ID      LinkID
	Weight  float64
	Enabled bool
}

// String returns a string representation of the LinkGene.
func (lg *LinkGene) String() string {
	return fmt.Sprintf("LinkGene(ID: %s, Weight: %.3f, Enabled: %t)", lg.ID, lg.Weight, lg.Enabled)
}

// Copy creates a deep copy of the LinkGene.
func (lg *LinkGene) Copy() *LinkGene {
	c := *lg
	return &c
}

// Touches reports whether the link has neuronID as one of its endpoints.
func (lg *LinkGene) Touches(neuronID int) bool {
	return lg.ID.InputID == neuronID || lg.ID.OutputID == neuronID
}

// Crossover creates a child gene taking weight and enabled state independently
// from either parent with a fair coin flip.
func (lg *LinkGene) Crossover(other *LinkGene, rng Source) *LinkGene {
	child := lg.Copy()
	if rng.Bool() {
		child.Weight = other.Weight
	}
	if rng.Bool() {
		child.Enabled = other.Enabled
	}
	return child
}
