package neat

// Crossover creates a child genome from two parents.
//
// The child takes its input/output counts and its whole gene set from dominant.
// Where recessive carries a gene with the same identity (neuron id, or link
// ordered pair), each attribute is drawn from either parent with a fair coin.
// Genes found only in recessive are never inherited. Neither parent is modified.
//
// Hidden neuron ids are allocated per genome, so unrelated parents can reuse an id
// for unrelated neurons. The child is not checked for cycles here; see RepairCycles.
func Crossover(dominant, recessive *Genome, childID int, rng Source) *Genome {
	child := NewGenome(childID, dominant.NumInputs, dominant.NumOutputs)

	for _, id := range dominant.NeuronIDs() {
		neuron := dominant.Neurons[id]
		if other, ok := recessive.FindNeuron(id); ok {
			child.AddNeuron(neuron.Crossover(other, rng))
		} else {
			child.AddNeuron(neuron.Copy())
		}
	}

	for _, id := range dominant.LinkIDs() {
		link := dominant.Links[id]
		if other, ok := recessive.FindLink(id); ok {
			child.AddLink(link.Crossover(other, rng))
		} else {
			child.AddLink(link.Copy())
		}
	}

	return child
}
