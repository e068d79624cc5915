package replicon

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Topology resolves the topology of each replicon: a default (chosen from
// the CLI or from the number of sequences in the input file) plus optional
// per-replicon overrides from a topology file.
type Topology struct {
	def  string
	byID map[string]string
}

// NewTopology builds a resolver with the given default ("circ" or "lin").
// The topology file, when non-empty, holds one "<replicon_id> <topology>"
// pair per line; topology is spelled circ/circular or lin/linear.
func NewTopology(def string, topologyFile string) (*Topology, error) {
	t := &Topology{def: def, byID: map[string]string{}}
	if topologyFile == "" {
		return t, nil
	}
	f, err := os.Open(topologyFile)
	if err != nil {
		return nil, fmt.Errorf("open topology file %s: %w", topologyFile, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("topology file %s line %d: expected '<id> <topology>', got %q",
				topologyFile, lineNo, line)
		}
		topo, err := parseTopo(fields[1])
		if err != nil {
			return nil, fmt.Errorf("topology file %s line %d: %w", topologyFile, lineNo, err)
		}
		t.byID[fields[0]] = topo
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read topology file %s: %w", topologyFile, err)
	}
	return t, nil
}

func parseTopo(s string) (string, error) {
	switch strings.ToLower(s) {
	case "circ", "circular":
		return TopoCircular, nil
	case "lin", "linear":
		return TopoLinear, nil
	}
	return "", fmt.Errorf("unknown topology %q", s)
}

// Get returns the topology for a replicon id, falling back to the default.
func (t *Topology) Get(id string) string {
	if topo, ok := t.byID[id]; ok {
		return topo
	}
	return t.def
}

// Apply assigns a topology to every sequence. A replicon shorter than four
// times the distance threshold cannot meaningfully wrap, so it is forced
// linear whatever the resolver says.
func Apply(seqs []*Sequence, t *Topology, distThreshold int) {
	for _, s := range seqs {
		topo := t.Get(s.ID)
		if s.Len() < 4*distThreshold {
			topo = TopoLinear
		}
		s.Topology = topo
	}
}
