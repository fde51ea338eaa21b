// Package neat is the computational core of a neuroevolution engine.
//
// The module evolves neural-network controllers with genetic algorithms instead of
// gradient training. It is split into four packages:
//
//   - neat: variable-topology genomes (compatibility distance, crossover, mutation),
//     speciation, fitness sharing and a reference Population driver with innovation
//     tracking, stagnation, reproduction and checkpoints.
//   - neat/nn: a fixed-topology feedforward network with optional Elman recurrence and
//     binary persistence, and a compiled evaluator for NEAT genomes.
//   - neat/pareto: NSGA-II non-dominated sorting, crowding distance and tournament selection.
//   - neat/flat: tournament, crossover, mutation and statistics over plain slices.
//
// Every operation that consumes randomness takes an explicit *rand.Rand.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("configs/xor.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	rng := rand.New(rand.NewSource(1))
//	pop, err := neat.NewPopulation(config, rng, slog.Default())
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Run for 100 generations with your fitness function
//	winner, err := pop.Run(neat.ParallelFitness(rng, 4, evalGenome), 100)
//	if err != nil {
//		log.Fatalf("Error running generation: %v", err)
//	}
//	net := nn.FromGenome(winner)
//	fmt.Println(net.Forward([]float32{1, 0, 1}))
package neat
