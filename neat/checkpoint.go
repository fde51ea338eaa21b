package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
)

// PopulationSaveData holds the parts of Population needed for saving.
// The Config is not saved; it is supplied again on load. The random source is not saved either.
type PopulationSaveData struct {
	Genomes       []*Genome
	Species       []*Species
	NextSpeciesID int
	Innovations   *InnovationTracker
	Stagnation    *StagnationTracker
	Generation    int
	Best          *Genome
}

// SaveCheckpoint saves the current state of the Population to a gzip-compressed gob file.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)

	saveData := PopulationSaveData{
		Genomes:       p.Genomes,
		Species:       p.Species,
		NextSpeciesID: p.NextSpeciesID,
		Innovations:   p.Innovations,
		Stagnation:    p.Stagnation,
		Generation:    p.Generation,
		Best:          p.Best, // Might be nil
	}
	if err := gob.NewEncoder(gzWriter).Encode(saveData); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint '%s': %w", filePath, err)
	}

	p.logger.Info("checkpoint saved", "path", filePath, "generation", p.Generation)
	return nil
}

// LoadCheckpoint loads a Population state from a checkpoint file.
// The configuration and random source are supplied by the caller; a nil logger discards output.
func LoadCheckpoint(checkpointPath string, config *Config, rng *rand.Rand, logger *slog.Logger) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	saveData := PopulationSaveData{}
	if err := gob.NewDecoder(gzReader).Decode(&saveData); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}

	// Gob leaves empty maps nil.
	if saveData.Innovations == nil {
		saveData.Innovations = NewInnovationTracker(0, config.Population.NumInputs+config.Population.NumOutputs)
	}
	if saveData.Innovations.Connections == nil {
		saveData.Innovations.Connections = make(map[ConnectionKey]int)
	}
	if saveData.Innovations.Splits == nil {
		saveData.Innovations.Splits = make(map[int]NodeSplit)
	}
	stagnation := NewStagnationTracker(&config.Population)
	if saveData.Stagnation != nil && saveData.Stagnation.Best != nil {
		stagnation.Best = saveData.Stagnation.Best
	}

	p := &Population{
		Config:        config,
		Genomes:       saveData.Genomes,
		Species:       saveData.Species,
		NextSpeciesID: saveData.NextSpeciesID,
		Innovations:   saveData.Innovations,
		Stagnation:    stagnation, // Limits come from the supplied config
		Generation:    saveData.Generation,
		Best:          saveData.Best,
		rng:           rng,
		logger:        orDiscard(logger),
	}
	p.logger.Info("checkpoint loaded", "path", checkpointPath, "generation", p.Generation)
	return p, nil
}
