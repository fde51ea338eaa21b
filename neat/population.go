package neat

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// FitnessFunc is the type for the function provided by the user to evaluate genome fitness.
// It takes the current generation of genomes and should update their Fitness field.
type FitnessFunc func(genomes []*Genome) error

// GenomeEvaluator scores a single genome. The rng is private to the call.
type GenomeEvaluator func(rng *rand.Rand, g *Genome) (float32, error)

// Population holds the state of the NEAT evolutionary process.
type Population struct {
	Config        *Config
	Genomes       []*Genome // Current generation
	Species       []*Species
	NextSpeciesID int
	Innovations   *InnovationTracker
	Stagnation    *StagnationTracker
	Generation    int
	Best          *Genome // Best genome found so far

	rng    *rand.Rand
	logger *slog.Logger
}

// NewPopulation creates a new Population instance.
// It initializes the first generation of fully connected genomes based on the config.
// A nil logger discards all output.
func NewPopulation(config *Config, rng *rand.Rand, logger *slog.Logger) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	pc := &config.Population
	p := &Population{
		Config:      config,
		Innovations: NewInnovationTracker(0, pc.NumInputs+pc.NumOutputs),
		Stagnation:  NewStagnationTracker(pc),
		rng:         rng,
		logger:      orDiscard(logger),
	}
	p.Genomes = p.initialGenomes()
	return p, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

func (p *Population) initialGenomes() []*Genome {
	pc := &p.Config.Population
	genomes := make([]*Genome, pc.PopSize)
	for i := range genomes {
		g := NewGenome(pc.NumInputs, pc.NumOutputs)
		ConnectFully(p.rng, g, p.Innovations)
		genomes[i] = g
	}
	return genomes
}

// RunGeneration executes a single generation of the NEAT algorithm.
// Returns the winning genome if the fitness threshold is met this generation, otherwise nil.
func (p *Population) RunGeneration(fitnessFunc FitnessFunc) (*Genome, error) {
	p.Generation++
	genStartTime := time.Now()
	log := p.logger.With("generation", p.Generation)

	// 1. Evaluate Fitness
	if err := fitnessFunc(p.Genomes); err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}

	// 2. Track Best Genome & Check Termination Condition
	currentBest := p.findBestGenome()
	if currentBest != nil && (p.Best == nil || currentBest.Fitness > p.Best.Fitness) {
		p.Best = currentBest.Clone()
		log.Info("new best genome", "fitness", p.Best.Fitness,
			"nodes", len(p.Best.Nodes), "connections", p.Best.EnabledCount())
	}
	fs := SummarizeFitness(p.Genomes)
	log.Debug("fitness", "mean", fs.Mean, "stdev", fs.Stdev, "max", fs.Max, "min", fs.Min)

	if !p.Config.Population.NoFitnessTermination && p.Best != nil &&
		float64(p.Best.Fitness) >= p.Config.Population.FitnessThreshold {
		return p.Best, nil
	}

	// 3. Speciate
	previous := make(map[int]bool, len(p.Species))
	for _, s := range p.Species {
		previous[s.ID] = true
	}
	p.Species, p.NextSpeciesID = Speciate(p.rng, p.Genomes, p.Species, &p.Config.Operators, p.NextSpeciesID)
	current := make(map[int]bool, len(p.Species))
	for _, s := range p.Species {
		current[s.ID] = true
		if !previous[s.ID] && p.Generation > 1 {
			log.Debug("species created", "species", s.ID, "size", s.Size())
		}
	}
	for id := range previous {
		if !current[id] {
			log.Debug("species emptied", "species", id)
		}
	}
	ss := SummarizeSpecies(p.Species)
	log.Info("speciated", "species", ss.Count, "mean_size", ss.MeanSize, "largest", ss.LargestSize)

	// 4. Remove stagnant species
	survivors, stagnant := p.Stagnation.Update(p.Species)
	for _, s := range stagnant {
		log.Info("species removed for stagnation", "species", s.ID,
			"stagnant_generations", s.StagnantGenerations, "best_fitness", s.BestFitness)
	}
	if len(survivors) == 0 {
		log.Warn("all species stagnated, resetting population")
		p.Species = nil
		p.Genomes = p.initialGenomes()
		return nil, nil
	}

	// 5. Reproduce
	p.Genomes = Reproduce(p.rng, p.Genomes, survivors, p.Config, p.Innovations)
	p.Species = survivors

	log.Info("generation finished", "population", len(p.Genomes), "elapsed", time.Since(genStartTime))
	return nil, nil
}

// Run calls RunGeneration until a winner is found or maxGenerations is reached
// (maxGenerations <= 0 means no limit). It returns the best genome seen.
func (p *Population) Run(fitnessFunc FitnessFunc, maxGenerations int) (*Genome, error) {
	for maxGenerations <= 0 || p.Generation < maxGenerations {
		winner, err := p.RunGeneration(fitnessFunc)
		if err != nil {
			return p.Best, err
		}
		if winner != nil {
			p.logger.Info("fitness threshold reached", "generation", p.Generation, "fitness", winner.Fitness)
			return winner, nil
		}
	}
	return p.Best, nil
}

// findBestGenome finds the genome with the highest fitness in the current population.
func (p *Population) findBestGenome() *Genome {
	var best *Genome
	for _, g := range p.Genomes {
		if best == nil || g.Fitness > best.Fitness {
			best = g
		}
	}
	return best
}

// ParallelFitness returns a FitnessFunc that scores genomes concurrently on at most
// workers goroutines. Every genome is evaluated with its own rng seeded from rng, so
// results do not depend on scheduling. Evaluation errors are combined.
func ParallelFitness(rng *rand.Rand, workers int, eval GenomeEvaluator) FitnessFunc {
	return func(genomes []*Genome) error {
		seeds := make([]int64, len(genomes))
		for i := range seeds {
			seeds[i] = rng.Int63()
		}
		p := pool.New().WithMaxGoroutines(max(workers, 1)).WithErrors()
		for i, g := range genomes {
			i, g := i, g
			p.Go(func() error {
				fitness, err := eval(rand.New(rand.NewSource(seeds[i])), g)
				if err != nil {
					return fmt.Errorf("genome %d: %w", i, err)
				}
				g.Fitness = fitness
				return nil
			})
		}
		return p.Wait()
	}
}
