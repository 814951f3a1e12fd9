package nn

import (
	"errors"
	"fmt"
	"sort"

	"github.com/baldhumanity/neat-ff/neat"
)

var (
	// ErrInputSize is returned when an input vector does not match the network's inputs.
	ErrInputSize = errors.New("input size mismatch")
	// ErrMissingNeuron is returned when a link or an input/output id has no neuron gene.
	ErrMissingNeuron = errors.New("missing neuron")
	// ErrCycle is returned when the enabled links of a genome contain a cycle.
	ErrCycle = errors.New("enabled links contain a cycle")
)

type incoming struct {
	Source int
	Weight float64
}

// neuralNode is a neuron prepared for activation.
type neuralNode struct {
	ID         int
	Bias       float64
	Activation neat.Activation
	Inputs     []incoming // Enabled incoming links
}

// FeedForwardNetwork is the phenotype compiled from a genome.
type FeedForwardNetwork struct {
	InputIDs  []int
	OutputIDs []int
	EvalOrder []int // Non-input neurons in evaluation order
	Levels    map[int]int

	layers [][]int
	nodes  map[int]neuralNode
}

// CreateFeedForwardNetwork compiles g into an evaluator.
//
// Neurons are first grouped into layers by expanding frontiers from the inputs
// along enabled links, with the outputs kept for a final layer of their own. Each
// neuron then gets its longest hop count from any source, and hidden neurons are
// evaluated in ascending (level, layer, id) order before the outputs.
// Hidden neurons that no input reaches are never evaluated and read as 0.
func CreateFeedForwardNetwork(g *neat.Genome) (*FeedForwardNetwork, error) {
	if err := checkNeurons(g); err != nil {
		return nil, err
	}

	linkIDs := g.LinkIDs()
	var enabled []*neat.LinkGene
	for _, id := range linkIDs {
		if l := g.Links[id]; l.Enabled {
			enabled = append(enabled, l)
		}
	}

	layers := buildLayers(g, enabled)
	levels, err := relaxLevels(g, enabled)
	if err != nil {
		return nil, err
	}

	layerOf := make(map[int]int)
	var hidden []int
	for i, layer := range layers[1 : len(layers)-1] {
		for _, id := range layer {
			layerOf[id] = i + 1
			hidden = append(hidden, id)
		}
	}
	sort.SliceStable(hidden, func(i, j int) bool {
		a, b := hidden[i], hidden[j]
		if levels[a] != levels[b] {
			return levels[a] < levels[b]
		}
		if layerOf[a] != layerOf[b] {
			return layerOf[a] < layerOf[b]
		}
		return a < b
	})

	net := &FeedForwardNetwork{
		InputIDs:  g.InputIDs(),
		OutputIDs: g.OutputIDs(),
		EvalOrder: append(hidden, g.OutputIDs()...),
		Levels:    levels,
		layers:    layers,
		nodes:     make(map[int]neuralNode, len(g.Neurons)),
	}
	for _, id := range net.EvalOrder {
		gene := g.Neurons[id]
		net.nodes[id] = neuralNode{ID: id, Bias: gene.Bias, Activation: gene.Activation}
	}
	for _, l := range enabled {
		node, ok := net.nodes[l.ID.OutputID]
		if !ok {
			continue
		}
		node.Inputs = append(node.Inputs, incoming{Source: l.ID.InputID, Weight: l.Weight})
		net.nodes[l.ID.OutputID] = node
	}
	return net, nil
}

// checkNeurons reports links and input/output ids that reference absent neurons.
func checkNeurons(g *neat.Genome) error {
	for _, id := range append(g.InputIDs(), g.OutputIDs()...) {
		if _, ok := g.FindNeuron(id); !ok {
			return fmt.Errorf("%w: genome %d has no gene for neuron %d", ErrMissingNeuron, g.ID, id)
		}
	}
	for _, id := range g.LinkIDs() {
		for _, end := range []int{id.InputID, id.OutputID} {
			if _, ok := g.FindNeuron(end); !ok {
				return fmt.Errorf("%w: genome %d link %s references neuron %d", ErrMissingNeuron, g.ID, id, end)
			}
		}
	}
	return nil
}

// buildLayers returns the input layer, the frontier layers and the output layer.
func buildLayers(g *neat.Genome, enabled []*neat.LinkGene) [][]int {
	assigned := make(map[int]bool)
	inputs := g.InputIDs()
	for _, id := range inputs {
		assigned[id] = true
	}
	layers := [][]int{inputs}

	for {
		var frontier []int
		for _, l := range enabled {
			src, dst := l.ID.InputID, l.ID.OutputID
			if !assigned[src] || assigned[dst] || g.IsOutput(dst) {
				continue
			}
			frontier = append(frontier, dst)
		}
		if len(frontier) == 0 {
			break
		}
		// Commit after the scan so a layer holds only neurons fed by earlier layers.
		var layer []int
		for _, id := range frontier {
			if !assigned[id] {
				assigned[id] = true
				layer = append(layer, id)
			}
		}
		sort.Ints(layer)
		layers = append(layers, layer)
	}

	return append(layers, g.OutputIDs())
}

// relaxLevels computes each neuron's longest hop count from a neuron without
// enabled incoming links. It fails with ErrCycle if no fixpoint is reached
// within as many passes as there are neurons.
func relaxLevels(g *neat.Genome, enabled []*neat.LinkGene) (map[int]int, error) {
	levels := make(map[int]int, len(g.Neurons))
	for id := range g.Neurons {
		levels[id] = 0
	}

	for pass := 0; pass <= len(g.Neurons); pass++ {
		changed := false
		for _, l := range enabled {
			if l.ID.InputID == l.ID.OutputID {
				return nil, fmt.Errorf("%w: genome %d self-loop on neuron %d", ErrCycle, g.ID, l.ID.InputID)
			}
			if next := levels[l.ID.InputID] + 1; next > levels[l.ID.OutputID] {
				levels[l.ID.OutputID] = next
				changed = true
			}
		}
		if !changed {
			return levels, nil
		}
	}
	return nil, fmt.Errorf("%w: genome %d", ErrCycle, g.ID)
}

// Layers returns a copy of the layering computed at compile time. The first
// layer holds the inputs and the last one the outputs.
func (net *FeedForwardNetwork) Layers() [][]int {
	out := make([][]int, len(net.layers))
	for i, layer := range net.layers {
		out[i] = append([]int(nil), layer...)
	}
	return out
}

// Activate feeds inputs, in input-id order, through the network and returns the
// output values in output-id order.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.InputIDs) {
		return nil, fmt.Errorf("%w: got %d values for %d inputs", ErrInputSize, len(inputs), len(net.InputIDs))
	}

	values := make(map[int]float64, len(net.InputIDs)+len(net.EvalOrder))
	for i, id := range net.InputIDs {
		values[id] = inputs[i]
	}

	for _, id := range net.EvalOrder {
		node := net.nodes[id]
		sum := node.Bias
		for _, in := range node.Inputs {
			sum += in.Weight * values[in.Source]
		}
		values[id] = node.Activation.Apply(sum)
	}

	outputs := make([]float64, len(net.OutputIDs))
	for i, id := range net.OutputIDs {
		outputs[i] = values[id]
	}
	return outputs, nil
}
