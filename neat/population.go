package neat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyGeneration is returned when reproduction produced no children.
// The current population is kept in that case.
var ErrEmptyGeneration = errors.New("reproduction produced an empty generation")

// FitnessFunc scores a genome; higher is better. It must not modify the genome.
// rng is an independent stream reserved for this evaluation.
type FitnessFunc func(ctx context.Context, genome *Genome, rng Source) (float64, error)

// Individual is a genome together with its fitness for the current generation.
type Individual struct {
	Genome          *Genome
	Fitness         float64
	FitnessComputed bool
}

// Counter hands out monotonically increasing genome ids.
type Counter struct {
	NextID int
}

// Next returns the current id and advances the counter.
func (c *Counter) Next() int {
	id := c.NextID
	c.NextID++
	return id
}

// Reporter is notified once per generation, after evaluation and before reproduction.
type Reporter interface {
	ReportGeneration(ctx context.Context, stats GenerationStats, individuals []*Individual) error
}

// Population holds the state of the evolutionary process.
type Population struct {
	Config      *Config
	Individuals []*Individual
	Generation  int
	Best        *Individual // Best individual observed so far
	GenomeIDs   *Counter

	rng       *RNG
	logger    *slog.Logger
	reporters []Reporter
}

// Option configures a Population.
type Option func(*Population)

// WithLogger sets the logger used for per-generation progress.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Population) {
		p.logger = logger
	}
}

// WithReporters registers generation reporters.
func WithReporters(reporters ...Reporter) Option {
	return func(p *Population) {
		p.reporters = append(p.reporters, reporters...)
	}
}

// NewPopulation creates the initial generation. If rng is nil a generator seeded
// with config.Neat.Seed is used.
func NewPopulation(config *Config, rng *RNG, opts ...Option) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRNG(config.Neat.Seed)
	}

	p := newPopulation(config, rng, opts...)
	for i := 0; i < config.Neat.PopulationSize; i++ {
		numHidden := rng.IntRange(config.Genome.MinHidden, config.Genome.MaxHidden)
		g := NewRandomGenome(p.GenomeIDs.Next(), config.Neat.NumInputs, config.Neat.NumOutputs, numHidden, &config.Genome, rng)
		p.Individuals = append(p.Individuals, &Individual{Genome: g})
	}
	return p, nil
}

func newPopulation(config *Config, rng *RNG, opts ...Option) *Population {
	p := &Population{
		Config:    config,
		GenomeIDs: &Counter{},
		rng:       rng,
		logger:    slog.Default().With(slog.String("component", "neat")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the given number of generations and returns the best individual
// observed. With zero generations it returns the best of the current, possibly
// unevaluated, population.
func (p *Population) Run(ctx context.Context, generations int, fitness FitnessFunc) (*Individual, error) {
	for i := 0; i < generations; i++ {
		if err := p.Step(ctx, fitness); err != nil {
			return p.Best, err
		}
	}
	if p.Best == nil {
		p.Best = bestOf(p.Individuals)
	}
	if p.Best == nil {
		return nil, ErrEmptyGeneration
	}
	return p.Best, nil
}

// Step runs one generation: evaluation, best tracking, reporting, then
// replacement of the whole population by crossover+mutation children.
// Generation only advances when the step completes. A failed evaluation also
// rewinds the random source, so a checkpoint taken after a canceled step
// resumes on the same stream as an uninterrupted run.
func (p *Population) Step(ctx context.Context, fitness FitnessFunc) error {
	generation := p.Generation + 1
	start := time.Now()

	state, err := p.rng.MarshalBinary()
	if err != nil {
		return fmt.Errorf("saving random state in generation %d: %w", generation, err)
	}
	if err := p.evaluate(ctx, fitness); err != nil {
		err = fmt.Errorf("fitness evaluation failed in generation %d: %w", generation, err)
		return errors.Join(err, p.rng.UnmarshalBinary(state))
	}

	if current := bestOf(p.Individuals); current != nil {
		if p.Best == nil || current.Fitness > p.Best.Fitness {
			p.Best = current
		}
	}

	stats := computeStats(generation, p.Individuals)
	stats.Elapsed = time.Since(start)
	if p.Best != nil {
		stats.OverallBest = p.Best.Fitness
	}
	for _, r := range p.reporters {
		if err := r.ReportGeneration(ctx, stats, p.Individuals); err != nil {
			return fmt.Errorf("reporting generation %d: %w", generation, err)
		}
	}

	children := p.reproduce()
	if len(children) == 0 {
		return fmt.Errorf("generation %d: %w", generation, ErrEmptyGeneration)
	}
	p.Individuals = children
	p.Generation = generation

	p.logger.Info("generation complete",
		slog.Int("generation", generation),
		slog.Int("best_genome", stats.BestGenomeID),
		slog.Float64("best", stats.BestFitness),
		slog.Float64("mean", stats.MeanFitness),
		slog.Float64("overall_best", stats.OverallBest),
		slog.Duration("elapsed", stats.Elapsed),
	)
	return nil
}

// evaluate scores every individual that has no fitness yet. Evaluations run
// concurrently, bounded by Neat.Workers. Each one gets its own random stream,
// drawn in population order so that results do not depend on scheduling.
func (p *Population) evaluate(ctx context.Context, fitness FitnessFunc) error {
	var pending []*Individual
	for _, ind := range p.Individuals {
		if !ind.FitnessComputed {
			pending = append(pending, ind)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	streams := make([]*RNG, len(pending))
	for i := range streams {
		streams[i] = p.rng.Spawn()
	}
	scores := make([]float64, len(pending))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, p.Config.Neat.Workers))
	for i, ind := range pending {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			score, err := fitness(egCtx, ind.Genome, streams[i])
			if err != nil {
				return fmt.Errorf("genome %d: %w", ind.Genome.ID, err)
			}
			scores[i] = score
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, ind := range pending {
		ind.Fitness = scores[i]
		ind.FitnessComputed = true
	}
	return nil
}

// reproduce builds the next generation from the fittest individuals.
func (p *Population) reproduce() []*Individual {
	size := p.Config.Neat.PopulationSize
	if size <= 0 || len(p.Individuals) == 0 {
		return nil
	}

	sorted := make([]*Individual, len(p.Individuals))
	copy(sorted, p.Individuals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fitness > sorted[j].Fitness
	})

	cutoff := int(math.Ceil(p.Config.Neat.SurvivalThreshold * float64(size)))
	cutoff = min(max(cutoff, 1), len(sorted))

	children := make([]*Individual, 0, size)
	for len(children) < size {
		dominant := ChooseFirst(p.rng, sorted, cutoff)
		recessive := ChooseFirst(p.rng, sorted, cutoff)
		// Ties keep the first draw dominant.
		if recessive.Fitness > dominant.Fitness {
			dominant, recessive = recessive, dominant
		}

		child := Crossover(dominant.Genome, recessive.Genome, p.GenomeIDs.Next(), p.rng)
		if p.Config.Neat.RepairCrossoverCycles {
			if n := RepairCycles(child); n > 0 {
				p.logger.Debug("disabled cyclic links after crossover",
					slog.Int("genome", child.ID),
					slog.Int("dominant", dominant.Genome.ID),
					slog.Int("recessive", recessive.Genome.ID),
					slog.Int("links", n),
				)
			}
		}
		Mutate(child, p.Config, p.rng)
		children = append(children, &Individual{Genome: child})
	}
	return children
}
