package replicon

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/yumyai/intfinder/logger"
	"go.uber.org/zap"
)

// minRepliconLen is the shortest sequence worth scanning; anything at or
// below it is skipped with a warning.
const minRepliconLen = 50

// dnaAlphabet covers the IUPAC ambiguous DNA codes.
const dnaAlphabet = "ACGTRYSWKMBDHVN"

func validDNA(seq string) bool {
	for _, c := range seq {
		if !strings.ContainsRune(dnaAlphabet, c) {
			return false
		}
	}
	return true
}

// ReadFasta parses a (multi-)FASTA file. Sequences containing characters
// outside the IUPAC DNA alphabet, or not longer than 50 bp, are skipped
// with a warning rather than failing the whole file.
func ReadFasta(path string) ([]*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replicon file %s: %w", path, err)
	}
	defer f.Close()

	var (
		seqs []*Sequence
		id   string
		body strings.Builder
	)
	flush := func() {
		if id == "" {
			return
		}
		seq := strings.ToUpper(body.String())
		switch {
		case !validDNA(seq):
			logger.Warn("sequence contains invalid characters, the sequence is skipped",
				zap.String("id", id))
		case len(seq) <= minRepliconLen:
			logger.Warn("sequence is too short, the sequence is skipped (must be > 50bp)",
				zap.String("id", id), zap.Int("length", len(seq)))
		default:
			seqs = append(seqs, &Sequence{ID: id, Seq: seq})
		}
		body.Reset()
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			flush()
			id = ""
			if fields := strings.Fields(line[1:]); len(fields) > 0 {
				id = fields[0]
			}
			continue
		}
		body.WriteString(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read replicon file %s: %w", path, err)
	}
	flush()
	return seqs, nil
}
