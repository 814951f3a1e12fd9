package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGenome builds a genome with every input and output neuron, the given hidden
// neurons and links. All neurons have bias 0 and the sigmoid activation.
func testGenome(t *testing.T, numInputs, numOutputs int, hidden []int, links ...*LinkGene) *Genome {
	t.Helper()
	g := NewGenome(1, numInputs, numOutputs)
	ids := append(append(g.InputIDs(), g.OutputIDs()...), hidden...)
	for _, id := range ids {
		require.True(t, g.AddNeuron(&NeuronGene{ID: id, Activation: Sigmoid}))
	}
	for _, l := range links {
		require.True(t, g.AddLink(l))
	}
	return g
}

func link(in, out int, weight float64) *LinkGene {
	return &LinkGene{ID: LinkID{InputID: in, OutputID: out}, Weight: weight, Enabled: true}
}

func disabled(l *LinkGene) *LinkGene {
	l.Enabled = false
	return l
}

func TestGenomeIDRanges(t *testing.T) {
	g := NewGenome(7, 3, 2)

	assert.Equal(t, []int{0, 1, 2}, g.InputIDs())
	assert.Equal(t, []int{3, 4}, g.OutputIDs())
	assert.True(t, g.IsInput(2))
	assert.True(t, g.IsOutput(3))
	assert.True(t, g.IsHidden(5))
	assert.False(t, g.IsHidden(4))
}

func TestGenomeNextNeuronID(t *testing.T) {
	g := NewGenome(1, 2, 1)
	assert.Equal(t, 0, g.NextNeuronID(), "empty genome")

	g = testGenome(t, 2, 1, nil)
	assert.Equal(t, 3, g.NextNeuronID())

	g = testGenome(t, 2, 1, []int{3, 8})
	assert.Equal(t, 9, g.NextNeuronID())

	// Only inputs present: the next hidden id still skips the output range.
	g = NewGenome(1, 2, 2)
	g.AddNeuron(&NeuronGene{ID: 0})
	g.AddNeuron(&NeuronGene{ID: 1})
	assert.Equal(t, 4, g.NextNeuronID())
}

func TestGenomeAddAndFind(t *testing.T) {
	g := testGenome(t, 1, 1, nil, link(0, 1, 0.5))

	assert.False(t, g.AddNeuron(&NeuronGene{ID: 0, Bias: 3}), "duplicate neuron")
	n, ok := g.FindNeuron(0)
	require.True(t, ok)
	assert.Equal(t, 0.0, n.Bias)

	assert.False(t, g.AddLink(link(0, 1, 9)), "duplicate link")
	l, ok := g.FindLink(LinkID{InputID: 0, OutputID: 1})
	require.True(t, ok)
	assert.Equal(t, 0.5, l.Weight)

	_, ok = g.FindNeuron(42)
	assert.False(t, ok)
	_, ok = g.FindLink(LinkID{InputID: 1, OutputID: 0})
	assert.False(t, ok, "links are directed")
}

func TestGenomeCopyIsDeep(t *testing.T) {
	g := testGenome(t, 1, 1, []int{2}, link(0, 2, 1), link(2, 1, 1))
	c := g.Copy()
	require.Equal(t, g, c)

	c.Neurons[2].Bias = 5
	c.Links[LinkID{InputID: 0, OutputID: 2}].Weight = -1
	delete(c.Links, LinkID{InputID: 2, OutputID: 1})

	assert.Equal(t, 0.0, g.Neurons[2].Bias)
	assert.Equal(t, 1.0, g.Links[LinkID{InputID: 0, OutputID: 2}].Weight)
	assert.Len(t, g.Links, 2)
}

func TestGenomeLinkIDsSorted(t *testing.T) {
	g := testGenome(t, 2, 1, []int{3, 4}, link(4, 2, 1), link(0, 4, 1), link(1, 3, 1), link(0, 3, 1))
	assert.Equal(t, []LinkID{{0, 3}, {0, 4}, {1, 3}, {4, 2}}, g.LinkIDs())
	assert.Equal(t, []int{3, 4}, g.HiddenIDs())
}

func TestWouldCreateCycle(t *testing.T) {
	g := testGenome(t, 1, 1, []int{2, 3, 4},
		link(0, 2, 1), link(2, 3, 1), link(3, 4, 1), link(4, 1, 1))

	assert.True(t, g.WouldCreateCycle(4, 2))
	assert.True(t, g.WouldCreateCycle(3, 3), "self-loop")
	assert.False(t, g.WouldCreateCycle(2, 4))
	assert.False(t, g.WouldCreateCycle(0, 1))

	// Disabled links do not count.
	g.Links[LinkID{InputID: 3, OutputID: 4}].Enabled = false
	assert.False(t, g.WouldCreateCycle(4, 2))
}

func TestNewRandomGenome(t *testing.T) {
	config := DefaultConfig().Genome

	tests := []struct {
		name       string
		connection string
		wantLinks  int
	}{
		// 2x2 input->hidden, 1 hidden->hidden, 2x1 hidden->output.
		{name: "hidden", connection: ConnectionHidden, wantLinks: 7},
		{name: "hidden_direct", connection: ConnectionHiddenDirect, wantLinks: 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config.InitialConnection = tt.connection
			g := NewRandomGenome(3, 2, 1, 2, &config, NewRNG(1))

			assert.Equal(t, 3, g.ID)
			assert.Equal(t, []int{0, 1, 2, 3, 4}, g.NeuronIDs())
			assert.Equal(t, []int{3, 4}, g.HiddenIDs())
			assert.Len(t, g.Links, tt.wantLinks)
			require.NoError(t, Validate(g))
			for _, n := range g.Neurons {
				assert.Equal(t, 0.0, n.Bias)
				assert.Equal(t, Sigmoid, n.Activation)
			}
			for _, l := range g.Links {
				assert.True(t, l.Enabled)
				assert.False(t, g.IsInput(l.ID.OutputID))
				assert.False(t, g.IsOutput(l.ID.InputID))
			}
		})
	}
}

func TestNewRandomGenomeWithoutHidden(t *testing.T) {
	config := DefaultConfig().Genome
	g := NewRandomGenome(0, 3, 2, 0, &config, NewRNG(1))
	assert.Len(t, g.Neurons, 5)
	assert.Empty(t, g.Links)
}
