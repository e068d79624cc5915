// Package results builds and persists the per-replicon integron report
// tables and their cross-replicon aggregation.
package results

import (
	"fmt"
	"sort"

	"github.com/yumyai/intfinder/pkg/model"
)

// ReportColumns is the fixed column order of an integron report.
var ReportColumns = []string{
	"ID_integron", "ID_replicon", "element",
	"pos_beg", "pos_end", "strand", "evalue",
	"type_elt", "annotation", "model",
	"type", "default", "distance_2attC", "considered_topology",
}

// Report flattens the integron descriptions of one replicon into a single
// table. Integron identifiers are renumbered integron_01, integron_02, ...
// by ascending position of first appearance, and rows are sorted by
// (ID_integron, pos_beg, evalue).
func Report(integrons []model.IntegronDescription) []model.Element {
	var rows []model.Element
	for _, d := range integrons {
		rows = append(rows, d...)
	}
	if len(rows) == 0 {
		return nil
	}

	// provisional ids -> integron_NN, ordered by pos_beg
	byPos := make([]model.Element, len(rows))
	copy(byPos, rows)
	sort.SliceStable(byPos, func(i, j int) bool { return byPos[i].PosBeg < byPos[j].PosBeg })
	rename := make(map[string]string)
	next := 1
	for _, e := range byPos {
		if _, ok := rename[e.IDIntegron]; !ok {
			rename[e.IDIntegron] = fmt.Sprintf("integron_%02d", next)
			next++
		}
	}
	for i := range rows {
		rows[i].IDIntegron = rename[rows[i].IDIntegron]
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.IDIntegron != b.IDIntegron {
			return a.IDIntegron < b.IDIntegron
		}
		if a.PosBeg != b.PosBeg {
			return a.PosBeg < b.PosBeg
		}
		return a.Evalue < b.Evalue
	})
	return rows
}

// FilterCalin drops the CALIN integrons whose attC count is below the
// threshold. Complete and In0 integrons always pass.
func FilterCalin(report []model.Element, threshold int) []model.Element {
	attcCount := make(map[string]int)
	for _, e := range report {
		if e.Type == model.TypeCALIN && e.TypeElt == model.EltAttC {
			attcCount[e.IDIntegron]++
		}
	}
	var out []model.Element
	for _, e := range report {
		if n, isCalin := attcCount[e.IDIntegron]; isCalin && n < threshold {
			continue
		}
		out = append(out, e)
	}
	return out
}
