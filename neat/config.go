package neat

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for the evolution engine.
type Config struct {
	Neat     NeatConfig
	Genome   GenomeConfig
	Mutation MutationConfig
}

// NeatConfig holds population-level parameters.
type NeatConfig struct {
	PopulationSize        int     `ini:"population_size" env:"NEAT_POPULATION_SIZE"`
	NumInputs             int     `ini:"num_inputs" env:"NEAT_NUM_INPUTS"`
	NumOutputs            int     `ini:"num_outputs" env:"NEAT_NUM_OUTPUTS"`
	SurvivalThreshold     float64 `ini:"survival_threshold" env:"NEAT_SURVIVAL_THRESHOLD"` // Fraction of the sorted population eligible as parents
	Seed                  uint64  `ini:"seed" env:"NEAT_SEED"`
	Workers               int     `ini:"workers" env:"NEAT_WORKERS"` // Concurrent fitness evaluations
	RepairCrossoverCycles bool    `ini:"repair_crossover_cycles" env:"NEAT_REPAIR_CROSSOVER_CYCLES"`
}

// GenomeConfig holds parameters for genome construction and gene value ranges.
type GenomeConfig struct {
	MinHidden         int    `ini:"min_hidden" env:"NEAT_MIN_HIDDEN"`
	MaxHidden         int    `ini:"max_hidden" env:"NEAT_MAX_HIDDEN"`
	InitialConnection string `ini:"initial_connection" env:"NEAT_INITIAL_CONNECTION"` // "hidden" or "hidden_direct"
	ActivationDefault string `ini:"activation_default" env:"NEAT_ACTIVATION_DEFAULT"`

	WeightInitMean  float64 `ini:"weight_init_mean" env:"NEAT_WEIGHT_INIT_MEAN"`
	WeightInitStdev float64 `ini:"weight_init_stdev" env:"NEAT_WEIGHT_INIT_STDEV"`
	WeightMinValue  float64 `ini:"weight_min_value" env:"NEAT_WEIGHT_MIN_VALUE"`
	WeightMaxValue  float64 `ini:"weight_max_value" env:"NEAT_WEIGHT_MAX_VALUE"`

	BiasInitMean  float64 `ini:"bias_init_mean" env:"NEAT_BIAS_INIT_MEAN"`
	BiasInitStdev float64 `ini:"bias_init_stdev" env:"NEAT_BIAS_INIT_STDEV"`
	BiasMinValue  float64 `ini:"bias_min_value" env:"NEAT_BIAS_MIN_VALUE"`
	BiasMaxValue  float64 `ini:"bias_max_value" env:"NEAT_BIAS_MAX_VALUE"`
}

// MutationConfig holds the per-operator mutation probabilities.
type MutationConfig struct {
	AddLinkProb      float64 `ini:"add_link_prob" env:"NEAT_ADD_LINK_PROB"`
	RemoveLinkProb   float64 `ini:"remove_link_prob" env:"NEAT_REMOVE_LINK_PROB"`
	AddNeuronProb    float64 `ini:"add_neuron_prob" env:"NEAT_ADD_NEURON_PROB"`
	RemoveNeuronProb float64 `ini:"remove_neuron_prob" env:"NEAT_REMOVE_NEURON_PROB"`
	WeightMutateProb float64 `ini:"weight_mutate_prob" env:"NEAT_WEIGHT_MUTATE_PROB"`
	BiasMutateProb   float64 `ini:"bias_mutate_prob" env:"NEAT_BIAS_MUTATE_PROB"`
	MutatePower      float64 `ini:"mutate_power" env:"NEAT_MUTATE_POWER"` // Stdev of weight/bias perturbations
	RemoveLinkPolicy string  `ini:"remove_link_policy" env:"NEAT_REMOVE_LINK_POLICY"`
}

const (
	ConnectionHidden       = "hidden"
	ConnectionHiddenDirect = "hidden_direct"

	// RemoveLinkEssential protects links leaving an input, links entering an output,
	// and links between two non-input neurons. Nothing is ever removable under it.
	RemoveLinkEssential = "essential"
	// RemoveLinkHidden protects links leaving an input or entering an output only.
	RemoveLinkHidden = "hidden"
)

// DefaultConfig returns the stock parameters.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopulationSize:        6,
			NumInputs:             3,
			NumOutputs:            2,
			SurvivalThreshold:     0.3,
			Seed:                  1,
			Workers:               1,
			RepairCrossoverCycles: true,
		},
		Genome: GenomeConfig{
			MinHidden:         1,
			MaxHidden:         3,
			InitialConnection: ConnectionHidden,
			ActivationDefault: "sigmoid",
			WeightInitMean:    0.0,
			WeightInitStdev:   1.0,
			WeightMinValue:    -20.0,
			WeightMaxValue:    20.0,
			BiasInitMean:      0.0,
			BiasInitStdev:     1.0,
			BiasMinValue:      -20.0,
			BiasMaxValue:      20.0,
		},
		Mutation: MutationConfig{
			AddLinkProb:      0.05,
			RemoveLinkProb:   0.02,
			AddNeuronProb:    0.01,
			RemoveNeuronProb: 0.01,
			WeightMutateProb: 0.8,
			BiasMutateProb:   0.7,
			MutatePower:      1.2,
			RemoveLinkPolicy: RemoveLinkHidden,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file.
// Keys missing from the file keep their DefaultConfig values, and NEAT_*
// environment variables override both.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig()

	if err := cfg.Section("NEAT").MapTo(&config.Neat); err != nil {
		return nil, fmt.Errorf("failed to map [NEAT] section: %w", err)
	}
	if err := cfg.Section("DefaultGenome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultGenome] section: %w", err)
	}
	if err := cfg.Section("DefaultMutation").MapTo(&config.Mutation); err != nil {
		return nil, fmt.Errorf("failed to map [DefaultMutation] section: %w", err)
	}

	if err := ParseEnv(config); err != nil {
		return nil, err
	}

	config.Genome.InitialConnection = cleanIniString(config.Genome.InitialConnection)
	config.Genome.ActivationDefault = cleanIniString(config.Genome.ActivationDefault)
	config.Mutation.RemoveLinkPolicy = cleanIniString(config.Mutation.RemoveLinkPolicy)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseEnv applies NEAT_* environment overrides to config.
func ParseEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks parameter ranges.
func (c *Config) Validate() error {
	if c.Neat.PopulationSize < 0 {
		return fmt.Errorf("config error: population_size cannot be negative")
	}
	if c.Neat.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if c.Neat.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}
	if c.Neat.SurvivalThreshold <= 0 || c.Neat.SurvivalThreshold > 1 {
		return fmt.Errorf("config error: survival_threshold must be in (0, 1]")
	}
	if c.Neat.Workers < 1 {
		return fmt.Errorf("config error: workers must be at least 1")
	}

	if c.Genome.MinHidden < 0 || c.Genome.MaxHidden < c.Genome.MinHidden {
		return fmt.Errorf("config error: hidden range [%d, %d] is invalid", c.Genome.MinHidden, c.Genome.MaxHidden)
	}
	switch c.Genome.InitialConnection {
	case ConnectionHidden, ConnectionHiddenDirect:
	default:
		return fmt.Errorf("config error: invalid initial_connection type '%s'", c.Genome.InitialConnection)
	}
	if _, err := ParseActivation(c.Genome.ActivationDefault); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Genome.WeightMaxValue < c.Genome.WeightMinValue {
		return fmt.Errorf("config error: weight_max_value cannot be less than weight_min_value")
	}
	if c.Genome.BiasMaxValue < c.Genome.BiasMinValue {
		return fmt.Errorf("config error: bias_max_value cannot be less than bias_min_value")
	}
	if c.Genome.WeightInitStdev < 0 || c.Genome.BiasInitStdev < 0 {
		return fmt.Errorf("config error: init stdev cannot be negative")
	}

	probs := map[string]float64{
		"add_link_prob":      c.Mutation.AddLinkProb,
		"remove_link_prob":   c.Mutation.RemoveLinkProb,
		"add_neuron_prob":    c.Mutation.AddNeuronProb,
		"remove_neuron_prob": c.Mutation.RemoveNeuronProb,
		"weight_mutate_prob": c.Mutation.WeightMutateProb,
		"bias_mutate_prob":   c.Mutation.BiasMutateProb,
	}
	for name, p := range probs {
		if p < 0 || p > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", name)
		}
	}
	if c.Mutation.MutatePower < 0 {
		return fmt.Errorf("config error: mutate_power cannot be negative")
	}
	switch c.Mutation.RemoveLinkPolicy {
	case RemoveLinkEssential, RemoveLinkHidden:
	default:
		return fmt.Errorf("config error: invalid remove_link_policy '%s'", c.Mutation.RemoveLinkPolicy)
	}
	return nil
}

// DefaultActivationFn returns the activation assigned to new neurons.
func (gc *GenomeConfig) DefaultActivationFn() Activation {
	a, err := ParseActivation(gc.ActivationDefault)
	if err != nil {
		return DefaultActivation
	}
	return a
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
