package neat

import (
	"math"
	"sort"
)

// Genome is the evolvable unit: neuron and link genes plus the fixed input/output counts.
//
// Neuron ids [0, NumInputs) are inputs, [NumInputs, NumInputs+NumOutputs) are outputs,
// and every id above that range is a hidden neuron. The graph of enabled links must
// stay acyclic and every link endpoint must be a neuron of the same genome.
type Genome struct {
	ID         int                  // Globally unique, assigned by the population's Counter.
	NumInputs  int                  // Shared by the whole population.
	NumOutputs int                  // Shared by the whole population.
	Neurons    map[int]*NeuronGene  // Map neuron ID -> NeuronGene
	Links      map[LinkID]*LinkGene // Map link ID -> LinkGene
}

// NewGenome creates an empty genome with the given id and input/output counts.
func NewGenome(id, numInputs, numOutputs int) *Genome {
	return &Genome{
		ID:         id,
		NumInputs:  numInputs,
		NumOutputs: numOutputs,
		Neurons:    make(map[int]*NeuronGene),
		Links:      make(map[LinkID]*LinkGene),
	}
}

// ensureMaps allocates gene maps left nil by decoding an empty genome.
func (g *Genome) ensureMaps() {
	if g.Neurons == nil {
		g.Neurons = make(map[int]*NeuronGene)
	}
	if g.Links == nil {
		g.Links = make(map[LinkID]*LinkGene)
	}
}

// AddNeuron inserts a neuron gene. It returns false, leaving the genome untouched,
// if a neuron with the same id already exists.
func (g *Genome) AddNeuron(n *NeuronGene) bool {
	if _, exists := g.Neurons[n.ID]; exists {
		return false
	}
	g.Neurons[n.ID] = n
	return true
}

// AddLink inserts a link gene. It returns false, leaving the genome untouched,
// if a link with the same ordered pair already exists.
func (g *Genome) AddLink(l *LinkGene) bool {
	if _, exists := g.Links[l.ID]; exists {
		return false
	}
	g.Links[l.ID] = l
	return true
}

// FindNeuron looks a neuron up by id.
func (g *Genome) FindNeuron(id int) (*NeuronGene, bool) {
	n, ok := g.Neurons[id]
	return n, ok
}

// FindLink looks a link up by its ordered pair.
func (g *Genome) FindLink(id LinkID) (*LinkGene, bool) {
	l, ok := g.Links[id]
	return l, ok
}

// InputIDs lists the input neuron ids [0, NumInputs).
func (g *Genome) InputIDs() []int {
	ids := make([]int, g.NumInputs)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// OutputIDs lists the output neuron ids [NumInputs, NumInputs+NumOutputs).
func (g *Genome) OutputIDs() []int {
	ids := make([]int, g.NumOutputs)
	for i := range ids {
		ids[i] = g.NumInputs + i
	}
	return ids
}

// IsInput reports whether id is in the input range [0, NumInputs).
func (g *Genome) IsInput(id int) bool {
	return id >= 0 && id < g.NumInputs
}

// IsOutput reports whether id is one of the output neurons.
func (g *Genome) IsOutput(id int) bool {
	return id >= g.NumInputs && id < g.NumInputs+g.NumOutputs
}

// IsHidden reports whether id lies above the input and output ranges.
func (g *Genome) IsHidden(id int) bool {
	return id >= g.NumInputs+g.NumOutputs
}

// HiddenIDs lists the hidden neuron ids present in the genome, ascending.
func (g *Genome) HiddenIDs() []int {
	ids := make([]int, 0, len(g.Neurons))
	for id := range g.Neurons {
		if g.IsHidden(id) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// NeuronIDs lists every neuron id present in the genome, ascending.
func (g *Genome) NeuronIDs() []int {
	ids := make([]int, 0, len(g.Neurons))
	for id := range g.Neurons {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// LinkIDs lists every link id in the genome, ordered by input then output id.
func (g *Genome) LinkIDs() []LinkID {
	ids := make([]LinkID, 0, len(g.Links))
	for id := range g.Links {
		ids = append(ids, id)
	}
	sortLinkIDs(ids)
	return ids
}

// NextNeuronID returns max(existing id) + 1, or 0 for a genome without neurons.
func (g *Genome) NextNeuronID() int {
	if len(g.Neurons) == 0 {
		return 0
	}
	maxID := math.MinInt
	for id := range g.Neurons {
		if id > maxID {
			maxID = id
		}
	}
	next := maxID + 1
	// Hidden ids must never land inside the input/output range.
	if floor := g.NumInputs + g.NumOutputs; next < floor {
		next = floor
	}
	return next
}

// Copy creates a deep copy of the genome.
func (g *Genome) Copy() *Genome {
	c := NewGenome(g.ID, g.NumInputs, g.NumOutputs)
	for id, n := range g.Neurons {
		c.Neurons[id] = n.Copy()
	}
	for id, l := range g.Links {
		c.Links[id] = l.Copy()
	}
	return c
}

// NewRandomGenome builds a genome with all input and output neurons, numHidden hidden
// neurons, and links input->hidden, hidden->later hidden and hidden->output
// (plus input->output for the hidden_direct scheme). Each candidate link is
// cycle-checked before insertion.
func NewRandomGenome(id int, numInputs, numOutputs, numHidden int, config *GenomeConfig, rng Source) *Genome {
	g := NewGenome(id, numInputs, numOutputs)
	activation := config.DefaultActivationFn()

	for _, in := range g.InputIDs() {
		g.AddNeuron(&NeuronGene{ID: in, Bias: 0.0, Activation: activation})
	}
	for _, out := range g.OutputIDs() {
		g.AddNeuron(&NeuronGene{ID: out, Bias: 0.0, Activation: activation})
	}
	hidden := make([]int, numHidden)
	for i := range hidden {
		hidden[i] = numInputs + numOutputs + i
		g.AddNeuron(&NeuronGene{ID: hidden[i], Bias: 0.0, Activation: activation})
	}

	connect := func(in, out int) {
		if g.WouldCreateCycle(in, out) {
			return
		}
		g.AddLink(&LinkGene{
			ID:      LinkID{InputID: in, OutputID: out},
			Weight:  newWeight(config, rng),
			Enabled: true,
		})
	}

	for _, in := range g.InputIDs() {
		for _, h := range hidden {
			connect(in, h)
		}
	}
	for i, h := range hidden {
		for _, later := range hidden[i+1:] {
			connect(h, later)
		}
	}
	for _, h := range hidden {
		for _, out := range g.OutputIDs() {
			connect(h, out)
		}
	}
	if config.InitialConnection == ConnectionHiddenDirect {
		for _, in := range g.InputIDs() {
			for _, out := range g.OutputIDs() {
				connect(in, out)
			}
		}
	}
	return g
}

// WouldCreateCycle reports whether enabling a link inputID->outputID would close a
// cycle, i.e. whether outputID already reaches inputID along enabled links.
func (g *Genome) WouldCreateCycle(inputID, outputID int) bool {
	if inputID == outputID {
		return true
	}

	adjacency := make(map[int][]int)
	for id, l := range g.Links {
		if l.Enabled {
			adjacency[id.InputID] = append(adjacency[id.InputID], id.OutputID)
		}
	}

	visited := make(map[int]bool)
	stack := []int{outputID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == inputID {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		stack = append(stack, adjacency[current]...)
	}
	return false
}

func newWeight(config *GenomeConfig, rng Source) float64 {
	return clamp(rng.Gaussian(config.WeightInitMean, config.WeightInitStdev), config.WeightMinValue, config.WeightMaxValue)
}

func newBias(config *GenomeConfig, rng Source) float64 {
	return clamp(rng.Gaussian(config.BiasInitMean, config.BiasInitStdev), config.BiasMinValue, config.BiasMaxValue)
}

func sortLinkIDs(ids []LinkID) {
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].InputID != ids[j].InputID {
			return ids[i].InputID < ids[j].InputID
		}
		return ids[i].OutputID < ids[j].OutputID
	})
}
