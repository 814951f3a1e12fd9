package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
)

// checkpointData holds the parts of a Population that are saved. The Config is
// supplied again on load.
type checkpointData struct {
	Individuals []*Individual
	Generation  int
	Best        *Individual
	NextID      int
	RandState   []byte
}

// SaveCheckpoint writes the population state, including the random generator
// state, to a gzip-compressed gob file.
func (p *Population) SaveCheckpoint(filePath string) error {
	randState, err := p.rng.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal random state: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	data := checkpointData{
		Individuals: p.Individuals,
		Generation:  p.Generation,
		Best:        p.Best,
		NextID:      p.GenomeIDs.NextID,
		RandState:   randState,
	}
	if err := gob.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint '%s': %w", filePath, err)
	}

	p.logger.Info("checkpoint saved", "path", filePath, "generation", p.Generation)
	return file.Close()
}

// LoadCheckpoint restores a population saved by SaveCheckpoint. A run resumed
// from a checkpoint continues exactly as the uninterrupted run would have.
func LoadCheckpoint(filePath string, config *Config, opts ...Option) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	var data checkpointData
	if err := gob.NewDecoder(gzReader).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}

	rng := NewRNG(0)
	if err := rng.UnmarshalBinary(data.RandState); err != nil {
		return nil, fmt.Errorf("failed to restore random state: %w", err)
	}

	p := newPopulation(config, rng, opts...)
	p.Individuals = data.Individuals
	p.Generation = data.Generation
	p.Best = data.Best
	p.GenomeIDs.NextID = data.NextID

	if p.Best != nil {
		p.Best.Genome.ensureMaps()
	}
	for _, ind := range p.Individuals {
		ind.Genome.ensureMaps()
		if ind.Genome.NumInputs != config.Neat.NumInputs || ind.Genome.NumOutputs != config.Neat.NumOutputs {
			return nil, fmt.Errorf("checkpoint genome %d has %d inputs and %d outputs, config expects %d and %d",
				ind.Genome.ID, ind.Genome.NumInputs, ind.Genome.NumOutputs, config.Neat.NumInputs, config.Neat.NumOutputs)
		}
	}

	p.logger.Info("checkpoint loaded", "path", filePath, "generation", p.Generation)
	return p, nil
}
