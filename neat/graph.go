package neat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

var (
	// ErrCyclic reports an enabled-link cycle in a genome.
	ErrCyclic = errors.New("enabled links form a cycle")
	// ErrDanglingLink reports a link whose endpoint is not a neuron of the genome.
	ErrDanglingLink = errors.New("link references a missing neuron")
)

// enabledGraph builds the directed graph of the genome's enabled links.
// The second result is false when a self-loop is present, since it cannot
// be represented in a simple graph and is a cycle on its own.
func enabledGraph(g *Genome) (*simple.DirectedGraph, bool) {
	dg := simple.NewDirectedGraph()
	for id := range g.Neurons {
		addNode(dg, id)
	}
	for id, l := range g.Links {
		if !l.Enabled {
			continue
		}
		if id.InputID == id.OutputID {
			return dg, false
		}
		addNode(dg, id.InputID)
		addNode(dg, id.OutputID)
		dg.SetEdge(dg.NewEdge(simple.Node(id.InputID), simple.Node(id.OutputID)))
	}
	return dg, true
}

func addNode(dg *simple.DirectedGraph, id int) {
	if dg.Node(int64(id)) == nil {
		dg.AddNode(simple.Node(id))
	}
}

// HasCycle reports whether the enabled links of g contain a directed cycle.
func HasCycle(g *Genome) bool {
	dg, ok := enabledGraph(g)
	if !ok {
		return true
	}
	_, err := topo.Sort(dg)
	return err != nil
}

// Validate checks the structural invariants of g: every link endpoint is a neuron
// of g and the enabled links are acyclic.
func Validate(g *Genome) error {
	for _, id := range g.LinkIDs() {
		if _, ok := g.Neurons[id.InputID]; !ok {
			return fmt.Errorf("genome %d: link %s: %w", g.ID, id, ErrDanglingLink)
		}
		if _, ok := g.Neurons[id.OutputID]; !ok {
			return fmt.Errorf("genome %d: link %s: %w", g.ID, id, ErrDanglingLink)
		}
	}
	if HasCycle(g) {
		return fmt.Errorf("genome %d: %w", g.ID, ErrCyclic)
	}
	return nil
}

// RepairCycles disables enabled links of g until the enabled graph is acyclic.
// Links are accepted in ascending id order and a link is disabled when it would
// close a cycle among the links accepted before it. Disabled genes are kept.
// It returns the number of links disabled; acyclic genomes are left untouched.
func RepairCycles(g *Genome) int {
	if !HasCycle(g) {
		return 0
	}

	accepted := simple.NewDirectedGraph()
	for id := range g.Neurons {
		addNode(accepted, id)
	}

	disabled := 0
	for _, id := range g.LinkIDs() {
		l := g.Links[id]
		if !l.Enabled {
			continue
		}
		addNode(accepted, id.InputID)
		addNode(accepted, id.OutputID)
		from, to := simple.Node(id.InputID), simple.Node(id.OutputID)
		if id.InputID == id.OutputID || topo.PathExistsIn(accepted, to, from) {
			l.Enabled = false
			disabled++
			continue
		}
		accepted.SetEdge(accepted.NewEdge(from, to))
	}
	return disabled
}
