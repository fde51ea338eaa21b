package neat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the configuration for the genetic operators and the reference population driver.
type Config struct {
	Operators  OperatorConfig   `yaml:"operators"`
	Population PopulationConfig `yaml:"population"`
}

// OperatorConfig holds the named, bounded-probability fields consumed by
// Mutate, Distance and Speciate.
type OperatorConfig struct {
	MutationRate           float64 `ini:"mutation_rate" yaml:"mutation_rate"`
	WeightMutationRate     float64 `ini:"weight_mutation_rate" yaml:"weight_mutation_rate"`
	WeightMutationStrength float64 `ini:"weight_mutation_strength" yaml:"weight_mutation_strength"` // Stdev of Gaussian perturbation
	WeightReplaceRate      float64 `ini:"weight_replace_rate" yaml:"weight_replace_rate"`
	ConnAddRate            float64 `ini:"conn_add_rate" yaml:"conn_add_rate"` // Used by the structural mutations, not by Mutate
	ConnDeleteRate         float64 `ini:"conn_delete_rate" yaml:"conn_delete_rate"`
	ConnEnableRate         float64 `ini:"conn_enable_rate" yaml:"conn_enable_rate"`
	ConnDisableRate        float64 `ini:"conn_disable_rate" yaml:"conn_disable_rate"`
	NodeAddRate            float64 `ini:"node_add_rate" yaml:"node_add_rate"` // Used by the structural mutations, not by Mutate

	CompatibilityThreshold     float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`
	CompatibilityExcessCoeff   float64 `ini:"compatibility_excess_coeff" yaml:"compatibility_excess_coeff"`
	CompatibilityDisjointCoeff float64 `ini:"compatibility_disjoint_coeff" yaml:"compatibility_disjoint_coeff"`
	CompatibilityWeightCoeff   float64 `ini:"compatibility_weight_coeff" yaml:"compatibility_weight_coeff"`
}

// PopulationConfig holds parameters for the reference Population driver.
type PopulationConfig struct {
	PopSize              int     `ini:"pop_size" yaml:"pop_size"`
	NumInputs            int     `ini:"num_inputs" yaml:"num_inputs"`
	NumOutputs           int     `ini:"num_outputs" yaml:"num_outputs"`
	FitnessThreshold     float64 `ini:"fitness_threshold" yaml:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination" yaml:"no_fitness_termination"`
	MaxStagnation        int     `ini:"max_stagnation" yaml:"max_stagnation"`
	SpeciesElitism       int     `ini:"species_elitism" yaml:"species_elitism"`
	Elitism              int     `ini:"elitism" yaml:"elitism"`
	SurvivalThreshold    float64 `ini:"survival_threshold" yaml:"survival_threshold"`
	MinSpeciesSize       int     `ini:"min_species_size" yaml:"min_species_size"`
	FeedForward          bool    `ini:"feed_forward" yaml:"feed_forward"` // If true, structural mutation never creates cycles
}

// DefaultConfig returns a configuration with the defaults used when a key is absent.
func DefaultConfig() *Config {
	return &Config{
		Operators: OperatorConfig{
			MutationRate:               0.8,
			WeightMutationRate:         0.8,
			WeightMutationStrength:     0.5,
			WeightReplaceRate:          0.1,
			ConnAddRate:                0.05,
			ConnDeleteRate:             0.01,
			ConnEnableRate:             0.02,
			ConnDisableRate:            0.01,
			NodeAddRate:                0.03,
			CompatibilityThreshold:     3.0,
			CompatibilityExcessCoeff:   1.0,
			CompatibilityDisjointCoeff: 1.0,
			CompatibilityWeightCoeff:   0.4,
		},
		Population: PopulationConfig{
			PopSize:           150,
			NumInputs:         2,
			NumOutputs:        1,
			FitnessThreshold:  3.9,
			MaxStagnation:     15,
			SpeciesElitism:    2,
			Elitism:           1,
			SurvivalThreshold: 0.2,
			MinSpeciesSize:    2,
			FeedForward:       true,
		},
	}
}

// Coefficients returns the compatibility coefficients as consumed by Distance.
func (oc *OperatorConfig) Coefficients() Coefficients {
	return Coefficients{
		Excess:   float32(oc.CompatibilityExcessCoeff),
		Disjoint: float32(oc.CompatibilityDisjointCoeff),
		Weight:   float32(oc.CompatibilityWeightCoeff),
	}
}

// LoadConfig loads configuration parameters from an INI file, or from a YAML
// file when the path ends in .yaml or .yml. Keys missing from the file keep
// the values from DefaultConfig.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config '%s': %w", filePath, err)
		}
	default:
		cfg, err := ini.LoadSources(ini.LoadOptions{
			IgnoreInlineComment:         true,
			UnescapeValueCommentSymbols: true,
		}, filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
		}
		if err := cfg.Section("Operators").MapTo(&config.Operators); err != nil {
			return nil, fmt.Errorf("failed to map [Operators] section: %w", err)
		}
		if err := cfg.Section("Population").MapTo(&config.Population); err != nil {
			return nil, fmt.Errorf("failed to map [Population] section: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks probabilities are within [0,1], coefficients are non-negative
// and the population parameters are usable.
func (c *Config) Validate() error {
	op := &c.Operators
	probabilities := []struct {
		name  string
		value float64
	}{
		{"mutation_rate", op.MutationRate},
		{"weight_mutation_rate", op.WeightMutationRate},
		{"weight_replace_rate", op.WeightReplaceRate},
		{"conn_add_rate", op.ConnAddRate},
		{"conn_delete_rate", op.ConnDeleteRate},
		{"conn_enable_rate", op.ConnEnableRate},
		{"conn_disable_rate", op.ConnDisableRate},
		{"node_add_rate", op.NodeAddRate},
		{"survival_threshold", c.Population.SurvivalThreshold},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", p.name)
		}
	}

	coefficients := []struct {
		name  string
		value float64
	}{
		{"weight_mutation_strength", op.WeightMutationStrength},
		{"compatibility_threshold", op.CompatibilityThreshold},
		{"compatibility_excess_coeff", op.CompatibilityExcessCoeff},
		{"compatibility_disjoint_coeff", op.CompatibilityDisjointCoeff},
		{"compatibility_weight_coeff", op.CompatibilityWeightCoeff},
	}
	for _, co := range coefficients {
		if co.value < 0 {
			return fmt.Errorf("config error: %s cannot be negative", co.name)
		}
	}

	pc := &c.Population
	if pc.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if pc.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if pc.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}
	if pc.MaxStagnation <= 0 {
		return fmt.Errorf("config error: max_stagnation must be positive")
	}
	if pc.MinSpeciesSize <= 0 {
		return fmt.Errorf("config error: min_species_size must be positive")
	}
	if pc.Elitism < 0 || pc.SpeciesElitism < 0 {
		return fmt.Errorf("config error: elitism and species_elitism cannot be negative")
	}
	return nil
}
