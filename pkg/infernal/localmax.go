package infernal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/yumyai/intfinder/pkg/attc"
	"github.com/yumyai/intfinder/pkg/model"
	"github.com/yumyai/intfinder/pkg/replicon"
)

// Cmsearch is the exhaustive-search collaborator backed by the cmsearch
// binary run with --max (all speed heuristics disabled). It satisfies
// attc.Searcher.
type Cmsearch struct {
	Binary       string  // path to the cmsearch executable
	OutDir       string  // directory receiving temporary fasta/result files
	EvalueCutoff float64 // hits above it are dropped
	MinAttcSize  int
	MaxAttcSize  int
	KeepTmp      bool // keep intermediate fasta/result files
}

var _ attc.Searcher = (*Cmsearch)(nil)

// LocalMax extracts the window [winBeg, winEnd) of the replicon (wrapping
// through the origin on circular replicons when winBeg > winEnd), runs
// cmsearch --max restricted to the requested strand on it, and returns the
// hits shifted back to replicon coordinates, sorted by pos_beg.
func (c *Cmsearch) LocalMax(rep *replicon.Sequence, winBeg, winEnd int,
	modelPath string, strand attc.StrandSearch, workers int) (model.HitTable, error) {

	sub := rep.Window(winBeg, winEnd)
	if sub == "" {
		return model.HitTable{}, nil
	}

	stem := filepath.Join(c.OutDir, fmt.Sprintf("%s_subseq_%s", rep.ID, uuid.NewString()))
	fastaFile := stem + ".fst"
	resFile := stem + ".res"
	tblFile := stem + "_table.res"
	if !c.KeepTmp {
		defer func() {
			os.Remove(fastaFile)
			os.Remove(resFile)
			os.Remove(tblFile)
		}()
	}

	window := &replicon.Sequence{ID: rep.ID, Seq: sub}
	if err := window.WriteFasta(fastaFile); err != nil {
		return nil, err
	}

	args := []string{
		"--max",
		"--cpu", strconv.Itoa(workers),
		"-o", resFile,
		"--tblout", tblFile,
		"-E", "10",
	}
	switch strand {
	case attc.SearchTop:
		args = append(args, "--toponly")
	case attc.SearchBottom:
		args = append(args, "--bottomonly")
	}
	args = append(args, modelPath, fastaFile)

	if err := runCmsearch(c.Binary, args); err != nil {
		return nil, err
	}

	hits, err := ParseTbloutFile(tblFile, c.EvalueCutoff, c.MinAttcSize, c.MaxAttcSize)
	if err != nil {
		return nil, err
	}

	// back to replicon coordinates
	size := rep.Len()
	for i := range hits {
		hits[i].PosBeg = shift(hits[i].PosBeg, winBeg, size, rep.Circular())
		hits[i].PosEnd = shift(hits[i].PosEnd, winBeg, size, rep.Circular())
	}
	hits.SortByPos()
	return hits, nil
}

// shift converts a 1-based position inside the extracted window into a
// 1-based replicon position.
func shift(pos, winBeg, size int, circular bool) int {
	abs := winBeg + pos
	if circular && size > 0 {
		abs = (abs-1)%size + 1
		if abs <= 0 {
			abs += size
		}
	}
	return abs
}

// Expand iteratively widens the search window in the requested directions,
// one step of four distance thresholds at a time, while new in-bound hits
// keep appearing. It returns the union of previously and newly found hits,
// deduplicated and sorted by pos_beg.
func (c *Cmsearch) Expand(rep *replicon.Sequence, winBeg, winEnd int,
	accumulated, latest model.HitTable, circular bool, distThreshold, maxAttcSize int,
	modelPath string, searchLeft, searchRight bool, workers int) (model.HitTable, error) {

	size := rep.Len()
	step := 4 * distThreshold
	strand := strandOfHits(latest)

	out := append(model.HitTable{}, accumulated...)

	if searchRight {
		wb, we := winEnd, winEnd+step
		for searched := 0; searched < size; searched += step {
			if circular {
				wb, we = wb%size, we%size
			} else if wb >= size {
				break
			} else if we > size {
				we = size
			}
			found, err := c.LocalMax(rep, wb, we, modelPath, strand, workers)
			if err != nil {
				return nil, fmt.Errorf("expand right of %s: %w", rep.ID, err)
			}
			added := appendNew(&out, found, maxAttcSize)
			if added == 0 {
				break
			}
			wb, we = we, we+step
		}
	}

	if searchLeft {
		wb, we := winBeg-step, winBeg
		for searched := 0; searched < size; searched += step {
			if circular {
				wb = modPos(wb, size)
				we = modPos(we, size)
			} else if we <= 0 {
				break
			} else if wb < 0 {
				wb = 0
			}
			found, err := c.LocalMax(rep, wb, we, modelPath, strand, workers)
			if err != nil {
				return nil, fmt.Errorf("expand left of %s: %w", rep.ID, err)
			}
			added := appendNew(&out, found, maxAttcSize)
			if added == 0 {
				break
			}
			wb, we = wb-step, wb
		}
	}

	out = out.Dedup()
	out.SortByPos()
	return out, nil
}

// strandOfHits narrows the expansion search to the strand of the hits found
// so far; mixed or empty tables search both strands.
func strandOfHits(hits model.HitTable) attc.StrandSearch {
	plus, minus := false, false
	for _, h := range hits {
		switch h.Strand {
		case model.StrandPlus:
			plus = true
		case model.StrandMinus:
			minus = true
		}
	}
	switch {
	case plus && !minus:
		return attc.SearchTop
	case minus && !plus:
		return attc.SearchBottom
	}
	return attc.SearchBoth
}

func modPos(a, size int) int {
	m := a % size
	if m < 0 {
		m += size
	}
	return m
}

// appendNew adds the hits not yet present (evalue excluded) whose span does
// not exceed maxAttcSize, and reports how many were added.
func appendNew(out *model.HitTable, found model.HitTable, maxAttcSize int) int {
	added := 0
	for _, h := range found {
		if h.PosEnd-h.PosBeg+1 > maxAttcSize {
			continue
		}
		if out.Contains(h) {
			continue
		}
		*out = append(*out, h)
		added++
	}
	return added
}
