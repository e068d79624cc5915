// Package replicon loads DNA replicons from FASTA files and resolves their
// topology (circular or linear).
package replicon

import (
	"fmt"
	"os"
	"strings"
)

// Topology values.
const (
	TopoCircular = "circ"
	TopoLinear   = "lin"
)

// Sequence is one replicon: identifier, bases and resolved topology.
type Sequence struct {
	ID       string
	Seq      string
	Topology string
}

func (s *Sequence) Len() int { return len(s.Seq) }

// Circular reports whether the replicon topology is circular.
func (s *Sequence) Circular() bool { return s.Topology == TopoCircular }

// Window extracts the subsequence [beg, end). On a circular replicon a
// window with beg > end wraps through the origin.
func (s *Sequence) Window(beg, end int) string {
	size := s.Len()
	if size == 0 {
		return ""
	}
	beg = clamp(beg, 0, size)
	end = clamp(end, 0, size)
	if beg <= end {
		return s.Seq[beg:end]
	}
	if !s.Circular() {
		return ""
	}
	return s.Seq[beg:] + s.Seq[:end]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WriteFasta writes the sequence as a single-record FASTA file, 60 bases
// per line.
func (s *Sequence) WriteFasta(path string) error {
	var b strings.Builder
	b.WriteString(">")
	b.WriteString(s.ID)
	b.WriteString("\n")
	for i := 0; i < len(s.Seq); i += 60 {
		end := i + 60
		if end > len(s.Seq) {
			end = len(s.Seq)
		}
		b.WriteString(s.Seq[i:end])
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write fasta %s: %w", path, err)
	}
	return nil
}
