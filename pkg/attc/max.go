package attc

import (
	"fmt"

	"github.com/yumyai/intfinder/logger"
	"github.com/yumyai/intfinder/pkg/model"
	"github.com/yumyai/intfinder/pkg/replicon"
	"go.uber.org/zap"
)

// Searcher is the exhaustive-search collaborator: a heuristic-free
// covariance search limited to a window, and an iterative window expansion.
// Implementations may shell out to external binaries; failures propagate as
// errors and abort the current replicon.
type Searcher interface {
	LocalMax(rep *replicon.Sequence, winBeg, winEnd int, modelPath string,
		strand StrandSearch, workers int) (model.HitTable, error)
	Expand(rep *replicon.Sequence, winBeg, winEnd int, accumulated, latest model.HitTable,
		circular bool, distThreshold, maxAttcSize int, modelPath string,
		searchLeft, searchRight bool, workers int) (model.HitTable, error)
}

// FindMax re-scans, for every previously detected integron, the genomic
// window derived from its type with the exhaustive covariance search, then
// merges and deduplicates the hits of all integrons into one table.
//
// Integrons are processed strictly sequentially: the CALIN overlap check and
// the deduplication both depend on the hits accumulated so far.
func FindMax(integrons []model.IntegronDescription, rep *replicon.Sequence,
	distThreshold int, modelPath string, maxAttcSize int, circular bool,
	workers int, s Searcher) (model.HitTable, error) {

	size := rep.Len()
	maxFinal := model.HitTable{}

	for _, desc := range integrons {
		var maxElt model.HitTable
		var err error

		switch desc.Type() {
		case model.TypeComplete:
			maxElt, err = maxComplete(desc, rep, size, distThreshold, modelPath, maxAttcSize, circular, workers, s)
		case model.TypeCALIN:
			maxElt, err = maxCalin(desc, rep, size, distThreshold, modelPath, maxAttcSize, circular, workers, s, maxFinal)
		case model.TypeIn0:
			maxElt, err = maxIn0(desc, rep, size, distThreshold, modelPath, maxAttcSize, circular, workers, s)
		}
		if err != nil {
			return nil, err
		}

		maxFinal = append(maxFinal, maxElt...)
		maxFinal = maxFinal.Dedup()
	}
	return maxFinal, nil
}

// maxComplete handles an integron with both an integrase and attC sites.
// The window never crosses the integrase, and the expansion only runs away
// from it.
func maxComplete(desc model.IntegronDescription, rep *replicon.Sequence,
	size, distThreshold int, modelPath string, maxAttcSize int, circular bool,
	workers int, s Searcher) (model.HitTable, error) {

	attc := desc.AttC()
	win, integraseIsLeft := completeWindow(desc, size, distThreshold, circular)
	logger.Debug("local max on complete integron",
		zap.String("replicon", rep.ID), zap.Int("beg", win.Beg), zap.Int("end", win.End))

	dfMax, err := s.LocalMax(rep, win.Beg, win.End, modelPath, win.Strand, workers)
	if err != nil {
		return nil, fmt.Errorf("local max on complete integron of %s: %w", rep.ID, err)
	}
	maxElt := append(model.HitTable{}, dfMax...)
	if len(dfMax) == 0 {
		return maxElt, nil
	}

	goLeft := modSize(attc[0].PosBeg-dfMax[0].PosEnd, size) < distThreshold && !integraseIsLeft
	goRight := modSize(dfMax[len(dfMax)-1].PosBeg-attc[len(attc)-1].PosEnd, size) < distThreshold && integraseIsLeft

	maxElt, err = s.Expand(rep, win.Beg, win.End, maxElt, dfMax,
		circular, distThreshold, maxAttcSize, modelPath, goLeft, goRight, workers)
	if err != nil {
		return nil, fmt.Errorf("expand complete integron of %s: %w", rep.ID, err)
	}
	return maxElt, nil
}

// maxCalin handles an attC-only cluster. A cluster whose hit starts are
// already present in the accumulated table was covered by a previous window
// and is not re-scanned.
func maxCalin(desc model.IntegronDescription, rep *replicon.Sequence,
	size, distThreshold int, modelPath string, maxAttcSize int, circular bool,
	workers int, s Searcher, accumulated model.HitTable) (model.HitTable, error) {

	covered := make(map[int]bool, len(accumulated))
	for _, h := range accumulated {
		covered[h.PosBeg] = true
	}
	for _, e := range desc {
		if covered[e.PosBeg] {
			return nil, nil
		}
	}

	attc := desc.AttC()
	win := calinWindow(desc, size, distThreshold, circular)
	logger.Debug("local max on CALIN",
		zap.String("replicon", rep.ID), zap.Int("beg", win.Beg), zap.Int("end", win.End))

	dfMax, err := s.LocalMax(rep, win.Beg, win.End, modelPath, win.Strand, workers)
	if err != nil {
		return nil, fmt.Errorf("local max on CALIN of %s: %w", rep.ID, err)
	}
	maxElt := append(model.HitTable{}, dfMax...)
	if len(dfMax) == 0 {
		// the exhaustive mode can also come back empty when every
		// candidate exceeds the permitted attC size
		return maxElt, nil
	}

	goLeft := modSize(attc[0].PosBeg-dfMax[0].PosEnd, size) < distThreshold
	goRight := modSize(dfMax[len(dfMax)-1].PosBeg-attc[len(attc)-1].PosEnd, size) < distThreshold

	maxElt, err = s.Expand(rep, win.Beg, win.End, maxElt, dfMax,
		circular, distThreshold, maxAttcSize, modelPath, goLeft, goRight, workers)
	if err != nil {
		return nil, fmt.Errorf("expand CALIN of %s: %w", rep.ID, err)
	}
	return maxElt, nil
}

// maxIn0 handles a lone integrase, unless the hit comes from the unrelated
// phage-integrase family.
func maxIn0(desc model.IntegronDescription, rep *replicon.Sequence,
	size, distThreshold int, modelPath string, maxAttcSize int, circular bool,
	workers int, s Searcher) (model.HitTable, error) {

	if desc.AnyModel(model.PhageIntegraseModel) {
		return nil, nil
	}

	win := in0Window(desc, size, distThreshold, circular)
	logger.Debug("local max on In0",
		zap.String("replicon", rep.ID), zap.Int("beg", win.Beg), zap.Int("end", win.End))

	dfMax, err := s.LocalMax(rep, win.Beg, win.End, modelPath, win.Strand, workers)
	if err != nil {
		return nil, fmt.Errorf("local max on In0 of %s: %w", rep.ID, err)
	}
	maxElt := append(model.HitTable{}, dfMax...)
	if len(maxElt) == 0 {
		return maxElt, nil
	}

	maxElt, err = s.Expand(rep, win.Beg, win.End, maxElt, dfMax,
		circular, distThreshold, maxAttcSize, modelPath, true, true, workers)
	if err != nil {
		return nil, fmt.Errorf("expand In0 of %s: %w", rep.ID, err)
	}
	return maxElt, nil
}
