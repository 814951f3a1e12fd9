// Package neatff is the root of a feed-forward NEAT (NeuroEvolution of Augmenting
// Topologies) engine.
//
// The engine lives in package neat: genes and genomes, the mutation and crossover
// operators, and the generational loop. Package neat/nn compiles a genome into an
// evaluable feed-forward network. Every operator keeps the graph of enabled links
// acyclic; hidden neuron ids are allocated per genome, with no global innovation
// numbers and no speciation.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	pop, err := neat.NewPopulation(config, neat.NewRNG(config.Neat.Seed))
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	best, err := pop.Run(ctx, 100, func(ctx context.Context, g *neat.Genome, rng neat.Source) (float64, error) {
//		net, err := nn.CreateFeedForwardNetwork(g)
//		if err != nil {
//			return 0, err
//		}
//		out, err := net.Activate([]float64{1, 0})
//		if err != nil {
//			return 0, err
//		}
//		return -math.Abs(1 - out[0]), nil
//	})
//	if err != nil {
//		log.Fatalf("Error running evolution: %v", err)
//	}
//	fmt.Println(best.Genome)
package neatff
