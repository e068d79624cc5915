// Package finder runs the attC-only detection pipeline over one replicon:
// first-pass covariance search, clustering, optional exhaustive re-search,
// and report writing.
package finder

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/yumyai/intfinder/logger"
	"github.com/yumyai/intfinder/pkg/attc"
	"github.com/yumyai/intfinder/pkg/config"
	"github.com/yumyai/intfinder/pkg/db"
	"github.com/yumyai/intfinder/pkg/infernal"
	"github.com/yumyai/intfinder/pkg/model"
	"github.com/yumyai/intfinder/pkg/replicon"
	"github.com/yumyai/intfinder/pkg/results"
	"go.uber.org/zap"
)

// Finder holds the collaborators shared by every replicon of a run.
type Finder struct {
	Cfg      *config.Config
	Searcher attc.Searcher // used when Cfg.LocalMax is set
	Cache    *db.MaxCache  // optional max-search cache
}

// ProcessReplicon analyses one replicon end to end and writes
// <id>.integrons and, when something was found, <id>.summary in the output
// directory. It returns the two file paths (summary may be empty).
func (f *Finder) ProcessReplicon(rep *replicon.Sequence) (string, string, error) {
	cfg := f.Cfg

	tmpDir := filepath.Join(cfg.OutDir, "other_"+rep.ID)
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create tmp dir %s: %w", tmpDir, err)
	}
	if !cfg.KeepTmp {
		defer func() {
			if err := os.RemoveAll(tmpDir); err != nil {
				logger.Warn("cannot remove temporary results",
					zap.String("dir", tmpDir), zap.Error(err))
			}
		}()
	}

	tmpFasta := filepath.Join(tmpDir, rep.ID+".fst")
	if err := rep.WriteFasta(tmpFasta); err != nil {
		return "", "", err
	}

	logger.Info("Starting default search", zap.String("replicon", rep.ID))
	tableFile := infernal.TableFile(tmpDir, rep.ID)
	if _, err := os.Stat(tableFile); err != nil {
		if err := infernal.Run(tmpFasta, rep.ID, cfg.Cmsearch, tmpDir, cfg.ModelAttc, cfg.CPU); err != nil {
			return "", "", err
		}
	}

	hits, err := infernal.ParseTbloutFile(tableFile, cfg.EvalueAttc, cfg.MinAttcSize, cfg.MaxAttcSize)
	if err != nil {
		return "", "", err
	}
	hits.SortByPos()
	logger.Info("Default search done", zap.String("replicon", rep.ID), zap.Int("hits", len(hits)))

	clusters := attc.Cluster(hits, cfg.KeepPalindromes, cfg.DistanceThreshold, rep.Len())
	integrons := Describe(clusters, rep, hits)

	if cfg.LocalMax && f.Searcher != nil {
		maxHits, err := f.findMax(integrons, rep)
		if err != nil {
			return "", "", err
		}
		if len(maxHits) > 0 {
			maxHits.SortByPos()
			clusters = attc.Cluster(maxHits, cfg.KeepPalindromes, cfg.DistanceThreshold, rep.Len())
			integrons = Describe(clusters, rep, hits)
		}
	}

	report := results.Report(integrons)
	report = results.FilterCalin(report, cfg.CalinThreshold)

	integronFile := filepath.Join(cfg.OutDir, rep.ID+".integrons")
	if err := results.WriteReportFile(integronFile, report); err != nil {
		return "", "", err
	}
	if len(report) == 0 {
		return integronFile, "", nil
	}

	summaryFile := filepath.Join(cfg.OutDir, rep.ID+".summary")
	if err := results.WriteSummaryFile(summaryFile, results.Summary(report)); err != nil {
		return "", "", err
	}
	return integronFile, summaryFile, nil
}

// findMax runs the exhaustive re-search, going through the cache when one
// is configured.
func (f *Finder) findMax(integrons []model.IntegronDescription, rep *replicon.Sequence) (model.HitTable, error) {
	if f.Cache != nil {
		cached, ok, err := f.Cache.Load(rep.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			logger.Info("Max search already done, using cached hits",
				zap.String("replicon", rep.ID), zap.Int("hits", len(cached)))
			return cached, nil
		}
	}

	logger.Info("Starting search with local max", zap.String("replicon", rep.ID))
	maxHits, err := attc.FindMax(integrons, rep, f.Cfg.DistanceThreshold,
		f.Cfg.ModelAttc, f.Cfg.MaxAttcSize, rep.Circular(), f.Cfg.CPU, f.Searcher)
	if err != nil {
		return nil, err
	}
	logger.Info("Search with local max done",
		zap.String("replicon", rep.ID), zap.Int("hits", len(maxHits)))

	if f.Cache != nil {
		if err := f.Cache.Store(rep.ID, maxHits); err != nil {
			return nil, err
		}
	}
	return maxHits, nil
}

// Describe turns attC clusters into integron descriptions. Without protein
// annotation every cluster is an attC-only (CALIN) integron. Hits absent
// from the first-pass table are flagged as not found by the default search.
func Describe(clusters []model.HitTable, rep *replicon.Sequence, defaultHits model.HitTable) []model.IntegronDescription {
	var integrons []model.IntegronDescription
	for _, cluster := range clusters {
		id := uuid.NewString()
		desc := make(model.IntegronDescription, 0, len(cluster))
		for j, h := range cluster {
			dist := math.NaN()
			if j > 0 {
				gap := h.PosBeg - cluster[j-1].PosEnd
				if gap < 0 && rep.Circular() {
					gap += rep.Len()
				}
				dist = float64(gap)
			}
			def := "No"
			if defaultHits.Contains(h) {
				def = "Yes"
			}
			desc = append(desc, model.Element{
				IDIntegron:         id,
				IDReplicon:         rep.ID,
				Element:            fmt.Sprintf("attc_%03d", j+1),
				PosBeg:             h.PosBeg,
				PosEnd:             h.PosEnd,
				Strand:             h.Strand.Int(),
				Evalue:             h.Evalue,
				TypeElt:            model.EltAttC,
				Annotation:         model.EltAttC,
				Model:              h.Model,
				Type:               model.TypeCALIN,
				Default:            def,
				Distance2Attc:      dist,
				ConsideredTopology: rep.Topology,
			})
		}
		integrons = append(integrons, desc)
	}
	return integrons
}
