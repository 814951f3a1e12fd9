package neat

import (
	"time"
)

// GenerationStats summarises the fitness of one evaluated generation.
type GenerationStats struct {
	Generation    int
	Size          int
	BestFitness   float64
	BestGenomeID  int
	MeanFitness   float64
	MedianFitness float64
	StdevFitness  float64
	MinFitness    float64
	// Best fitness observed over the whole run so far.
	OverallBest float64
	Elapsed     time.Duration
}

// computeStats summarises individuals. Individuals without a computed fitness count as 0.
func computeStats(generation int, individuals []*Individual) GenerationStats {
	stats := GenerationStats{Generation: generation, Size: len(individuals), BestGenomeID: -1}
	if len(individuals) == 0 {
		return stats
	}

	fitnesses := make([]float64, len(individuals))
	for i, ind := range individuals {
		fitnesses[i] = ind.Fitness
	}
	if best := bestOf(individuals); best != nil {
		stats.BestFitness = best.Fitness
		stats.BestGenomeID = best.Genome.ID
	}
	stats.MeanFitness = Mean(fitnesses)
	stats.MedianFitness = Median(fitnesses)
	stats.StdevFitness = Stdev(fitnesses)
	stats.MinFitness = MinFloat(fitnesses)
	return stats
}

// bestOf returns the first individual with the highest fitness.
func bestOf(individuals []*Individual) *Individual {
	var best *Individual
	for _, ind := range individuals {
		if best == nil || ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}
