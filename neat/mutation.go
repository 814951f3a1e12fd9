package neat

// Mutate applies the mutation operators to g in place.
//
// Each structural operator (add link, remove link, add neuron, remove neuron) is
// attempted independently against a fresh uniform draw. Afterwards a fair coin
// picks either a weight or a bias perturbation, itself gated by its own
// probability. Operators whose preconditions are not met do nothing; Mutate never fails.
func Mutate(g *Genome, config *Config, rng Source) {
	mc := &config.Mutation
	gc := &config.Genome

	if rng.Float64() < mc.AddLinkProb {
		MutateAddLink(g, gc, rng)
	}
	if rng.Float64() < mc.RemoveLinkProb {
		MutateRemoveLink(g, mc.RemoveLinkPolicy, rng)
	}
	if rng.Float64() < mc.AddNeuronProb {
		MutateAddNeuron(g, gc, rng)
	}
	if rng.Float64() < mc.RemoveNeuronProb {
		MutateRemoveNeuron(g, rng)
	}

	if rng.Bool() {
		if rng.Float64() < mc.WeightMutateProb {
			MutateLinkWeight(g, mc.MutatePower, gc, rng)
		}
	} else {
		if rng.Float64() < mc.BiasMutateProb {
			MutateNeuronBias(g, mc.MutatePower, gc, rng)
		}
	}
}

// MutateAddLink attempts to connect a random input-or-hidden neuron to a random
// output-or-hidden neuron. An existing link is re-enabled instead of duplicated,
// and links that would close a cycle are never added or re-enabled.
func MutateAddLink(g *Genome, config *GenomeConfig, rng Source) {
	var sources, targets []int
	for _, id := range g.NeuronIDs() {
		if g.IsInput(id) || g.IsHidden(id) {
			sources = append(sources, id)
		}
		if g.IsOutput(id) || g.IsHidden(id) {
			targets = append(targets, id)
		}
	}
	if len(sources) == 0 || len(targets) == 0 {
		return
	}

	in := Choose(rng, sources)
	out := Choose(rng, targets)
	linkID := LinkID{InputID: in, OutputID: out}

	if existing, ok := g.FindLink(linkID); ok {
		if !existing.Enabled && !g.WouldCreateCycle(in, out) {
			existing.Enabled = true
		}
		return
	}

	if g.WouldCreateCycle(in, out) {
		return
	}

	g.AddLink(&LinkGene{ID: linkID, Weight: newWeight(config, rng), Enabled: true})
}

// RemovableLinks lists, in ascending id order, the links the remove-link operator
// may delete under the given policy.
func RemovableLinks(g *Genome, policy string) []LinkID {
	var removable []LinkID
	for _, id := range g.LinkIDs() {
		protected := g.IsInput(id.InputID) || g.IsOutput(id.OutputID)
		if policy == RemoveLinkEssential && !g.IsInput(id.InputID) && !g.IsInput(id.OutputID) {
			protected = true
		}
		if !protected {
			removable = append(removable, id)
		}
	}
	return removable
}

// MutateRemoveLink deletes one uniformly chosen removable link outright.
func MutateRemoveLink(g *Genome, policy string, rng Source) {
	removable := RemovableLinks(g, policy)
	if len(removable) == 0 {
		return
	}
	delete(g.Links, Choose(rng, removable))
}

// MutateAddNeuron splits a random link: the link is deleted, a new hidden neuron is
// inserted and wired source->new (weight 1.0) and new->target (original weight),
// which keeps the link's transfer at the moment of the split.
func MutateAddNeuron(g *Genome, config *GenomeConfig, rng Source) {
	if len(g.Links) == 0 {
		return
	}

	split := g.Links[Choose(rng, g.LinkIDs())]
	// Splitting a disabled link enables a path it did not carry before.
	if !split.Enabled && g.WouldCreateCycle(split.ID.InputID, split.ID.OutputID) {
		return
	}
	delete(g.Links, split.ID)

	neuron := &NeuronGene{
		ID:         g.NextNeuronID(),
		Bias:       newBias(config, rng),
		Activation: config.DefaultActivationFn(),
	}
	g.AddNeuron(neuron)

	g.AddLink(&LinkGene{
		ID:      LinkID{InputID: split.ID.InputID, OutputID: neuron.ID},
		Weight:  1.0,
		Enabled: true,
	})
	g.AddLink(&LinkGene{
		ID:      LinkID{InputID: neuron.ID, OutputID: split.ID.OutputID},
		Weight:  split.Weight,
		Enabled: true,
	})
}

// MutateRemoveNeuron deletes a random hidden neuron and every link touching it.
// Genomes with fewer than two hidden neurons are left alone.
func MutateRemoveNeuron(g *Genome, rng Source) {
	hidden := g.HiddenIDs()
	if len(hidden) < 2 {
		return
	}

	victim := Choose(rng, hidden)
	for id, l := range g.Links {
		if l.Touches(victim) {
			delete(g.Links, id)
		}
	}
	delete(g.Neurons, victim)
}

// MutateLinkWeight perturbs the weight of one random link.
func MutateLinkWeight(g *Genome, power float64, config *GenomeConfig, rng Source) {
	if len(g.Links) == 0 {
		return
	}
	l := g.Links[Choose(rng, g.LinkIDs())]
	l.Weight = clamp(l.Weight+rng.Gaussian(0, power), config.WeightMinValue, config.WeightMaxValue)
}

// MutateNeuronBias perturbs the bias of one random neuron.
func MutateNeuronBias(g *Genome, power float64, config *GenomeConfig, rng Source) {
	if len(g.Neurons) == 0 {
		return
	}
	n := g.Neurons[Choose(rng, g.NeuronIDs())]
	n.Bias = clamp(n.Bias+rng.Gaussian(0, power), config.BiasMinValue, config.BiasMaxValue)
}
