package nn

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/neat-ff/neat"
)

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// buildGenome creates a genome whose neurons all use activation and bias 0.
func buildGenome(t *testing.T, numInputs, numOutputs int, hidden []int, activation neat.Activation, links ...*neat.LinkGene) *neat.Genome {
	t.Helper()
	g := neat.NewGenome(1, numInputs, numOutputs)
	for _, id := range append(append(g.InputIDs(), g.OutputIDs()...), hidden...) {
		require.True(t, g.AddNeuron(&neat.NeuronGene{ID: id, Activation: activation}))
	}
	for _, l := range links {
		require.True(t, g.AddLink(l))
	}
	return g
}

func link(in, out int, weight float64) *neat.LinkGene {
	return &neat.LinkGene{ID: neat.LinkID{InputID: in, OutputID: out}, Weight: weight, Enabled: true}
}

func TestHiddenEvaluatedBeforeOutput(t *testing.T) {
	g := buildGenome(t, 2, 1, []int{3}, neat.Sigmoid, link(0, 3, 1), link(1, 3, 1), link(3, 2, 1))

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2}, net.EvalOrder)
	assert.Equal(t, [][]int{{0, 1}, {3}, {2}}, net.Layers())

	out, err := net.Activate([]float64{1, 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, sigmoid(sigmoid(2.0)), out[0], 1e-12)
}

func TestEvalOrderFollowsDependencies(t *testing.T) {
	// 3 and 4 share the first frontier layer, but 3 also depends on 4.
	g := buildGenome(t, 1, 1, []int{3, 4}, neat.Identity,
		link(0, 4, 3), link(0, 3, 1), link(4, 3, 1), link(3, 1, 0.5))

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0}, {3, 4}, {1}}, net.Layers())
	assert.Equal(t, []int{4, 3, 1}, net.EvalOrder)
	assert.Equal(t, 2, net.Levels[3])
	assert.Equal(t, 3, net.Levels[1])

	out, err := net.Activate([]float64{2})
	require.NoError(t, err)
	// 4 = 2*3 = 6, 3 = 2*1 + 6 = 8, 1 = 8*0.5.
	assert.Equal(t, []float64{4}, out)
}

func TestBiasAndDisabledLinks(t *testing.T) {
	g := buildGenome(t, 1, 1, nil, neat.Identity, link(0, 1, 5))
	g.Links[neat.LinkID{InputID: 0, OutputID: 1}].Enabled = false
	g.Neurons[1].Bias = 0.25

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	out, err := net.Activate([]float64{10})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25}, out)
}

func TestUnreachableHiddenReadsZero(t *testing.T) {
	g := buildGenome(t, 1, 1, []int{2, 3}, neat.Identity, link(0, 1, 1), link(2, 1, 4), link(2, 3, 1))
	g.Neurons[2].Bias = 7

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, net.EvalOrder)

	out, err := net.Activate([]float64{3})
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, out)
}

func TestMultipleOutputsInDeclaredOrder(t *testing.T) {
	g := buildGenome(t, 2, 2, []int{4}, neat.Identity, link(0, 3, 1), link(1, 4, 2), link(4, 2, 1), link(0, 2, 1))

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	out, err := net.Activate([]float64{1, 10})
	require.NoError(t, err)
	assert.Equal(t, []float64{21, 1}, out)
}

func TestActivateInputSizeMismatch(t *testing.T) {
	g := buildGenome(t, 2, 1, nil, neat.Sigmoid, link(0, 2, 1))
	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	_, err = net.Activate([]float64{1})
	assert.ErrorIs(t, err, ErrInputSize)
	_, err = net.Activate([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrInputSize)
}

func TestCreateMissingNeuron(t *testing.T) {
	g := buildGenome(t, 1, 1, nil, neat.Sigmoid, link(0, 1, 1))
	g.Links[neat.LinkID{InputID: 0, OutputID: 5}] = link(0, 5, 1)

	_, err := CreateFeedForwardNetwork(g)
	assert.ErrorIs(t, err, ErrMissingNeuron)

	g = buildGenome(t, 2, 1, nil, neat.Sigmoid)
	delete(g.Neurons, 1)
	_, err = CreateFeedForwardNetwork(g)
	assert.ErrorIs(t, err, ErrMissingNeuron)
}

func TestCreateCycle(t *testing.T) {
	g := buildGenome(t, 1, 1, []int{2, 3}, neat.Sigmoid, link(0, 2, 1), link(2, 3, 1), link(3, 2, 1), link(3, 1, 1))
	_, err := CreateFeedForwardNetwork(g)
	assert.ErrorIs(t, err, ErrCycle)

	g = buildGenome(t, 1, 1, []int{2}, neat.Sigmoid, link(0, 2, 1), link(2, 2, 1), link(2, 1, 1))
	_, err = CreateFeedForwardNetwork(g)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestEvolvedGenomesCompile(t *testing.T) {
	config := neat.DefaultConfig()
	config.Mutation.AddLinkProb = 0.6
	config.Mutation.AddNeuronProb = 0.4
	config.Mutation.RemoveNeuronProb = 0.2
	config.Mutation.RemoveLinkProb = 0.3

	for seed := uint64(1); seed <= 10; seed++ {
		rng := neat.NewRNG(seed)
		g := neat.NewRandomGenome(0, 3, 2, 2, &config.Genome, rng)
		for step := 0; step < 100; step++ {
			neat.Mutate(g, config, rng)

			net, err := CreateFeedForwardNetwork(g)
			require.NoError(t, err, "seed %d step %d", seed, step)
			out, err := net.Activate([]float64{0.5, -1, 2})
			require.NoError(t, err)
			require.Len(t, out, 2)
			for _, v := range out {
				require.False(t, math.IsNaN(v))
			}

			// Every enabled link into an evaluated neuron reads an already computed source.
			position := map[int]int{}
			for i, id := range net.EvalOrder {
				position[id] = i
			}
			for _, l := range g.Links {
				if !l.Enabled {
					continue
				}
				dst, ok := position[l.ID.OutputID]
				if !ok {
					continue
				}
				if src, ok := position[l.ID.InputID]; ok {
					require.Less(t, src, dst, "seed %d step %d link %s", seed, step, l.ID)
				}
			}
		}
	}
}

// compilingFitness fails for genomes that do not compile to a network.
func compilingFitness(_ context.Context, g *neat.Genome, _ neat.Source) (float64, error) {
	if _, err := CreateFeedForwardNetwork(g); err != nil {
		return 0, err
	}
	return 1, nil
}

// oppositeLinkPopulation holds two scored, acyclic parents that link hidden
// neurons 2 and 3 in opposite directions. Mutation is disabled.
func oppositeLinkPopulation(t *testing.T, repair bool) *neat.Population {
	t.Helper()
	off := func(l *neat.LinkGene) *neat.LinkGene {
		l.Enabled = false
		return l
	}
	a := buildGenome(t, 1, 1, []int{2, 3}, neat.Sigmoid, link(0, 2, 1), link(2, 3, 1), link(3, 1, 1), off(link(3, 2, 1)))
	b := buildGenome(t, 1, 1, []int{2, 3}, neat.Sigmoid, link(0, 3, 1), link(3, 2, 1), link(2, 1, 1), off(link(2, 3, 1)))
	for _, g := range []*neat.Genome{a, b} {
		_, err := CreateFeedForwardNetwork(g)
		require.NoError(t, err)
	}

	config := neat.DefaultConfig()
	config.Neat.NumInputs = 1
	config.Neat.NumOutputs = 1
	config.Neat.PopulationSize = 100
	config.Neat.SurvivalThreshold = 1
	config.Neat.RepairCrossoverCycles = repair
	config.Mutation = neat.MutationConfig{RemoveLinkPolicy: neat.RemoveLinkHidden}
	pop, err := neat.NewPopulation(config, neat.NewRNG(9), neat.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	pop.Individuals = []*neat.Individual{
		{Genome: a, Fitness: 1, FitnessComputed: true},
		{Genome: b, Fitness: 1, FitnessComputed: true},
	}
	return pop
}

func TestCrossoverChildrenCompileWithRepair(t *testing.T) {
	pop := oppositeLinkPopulation(t, true)
	ctx := context.Background()

	require.NoError(t, pop.Step(ctx, compilingFitness))
	for _, ind := range pop.Individuals {
		_, err := CreateFeedForwardNetwork(ind.Genome)
		require.NoError(t, err, "genome %d", ind.Genome.ID)
	}
	require.NoError(t, pop.Step(ctx, compilingFitness))
}

func TestCrossoverChildrenWithoutRepairHitCycle(t *testing.T) {
	pop := oppositeLinkPopulation(t, false)
	ctx := context.Background()

	require.NoError(t, pop.Step(ctx, compilingFitness))
	cyclic := 0
	for _, ind := range pop.Individuals {
		if _, err := CreateFeedForwardNetwork(ind.Genome); err != nil {
			assert.ErrorIs(t, err, ErrCycle)
			cyclic++
		}
	}
	assert.Positive(t, cyclic)

	err := pop.Step(ctx, compilingFitness)
	assert.ErrorIs(t, err, ErrCycle)
	assert.Equal(t, 1, pop.Generation)
}
