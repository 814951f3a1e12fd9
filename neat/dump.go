package neat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// WriteText writes the human-readable genome dump used for offline inspection:
// the genome id, each neuron's id and bias, and each link's endpoints, weight and state.
// Genes are listed in ascending id order.
func (g *Genome) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Genome ID: %d\n", g.ID)
	fmt.Fprintln(bw, "Neurons:")
	for _, id := range g.NeuronIDs() {
		fmt.Fprintf(bw, "Neuron ID: %d, Bias: %g\n", id, g.Neurons[id].Bias)
	}
	fmt.Fprintln(bw, "Links:")
	for _, id := range g.LinkIDs() {
		l := g.Links[id]
		state := "disabled"
		if l.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(bw, "Link from neuron %d to neuron %d with weight %g (%s)\n", id.InputID, id.OutputID, l.Weight, state)
	}
	return bw.Flush()
}

// String returns the text dump of the genome.
func (g *Genome) String() string {
	var sb strings.Builder
	_ = g.WriteText(&sb)
	return sb.String()
}

// SaveText writes the genome's text dump to filePath.
func (g *Genome) SaveText(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create genome file '%s': %w", filePath, err)
	}
	if err := g.WriteText(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write genome %d: %w", g.ID, err)
	}
	return file.Close()
}
