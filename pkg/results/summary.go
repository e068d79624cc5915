package results

import (
	"sort"

	"github.com/yumyai/intfinder/pkg/model"
)

// SummaryRow counts the completeness classes of one integron of one
// replicon. Exactly one of the three counters is non-zero per row; the
// explicit zero columns keep the summary table shape stable.
type SummaryRow struct {
	IDReplicon string
	IDIntegron string
	Complete   int
	In0        int
	CALIN      int
}

// Summary cross-tabulates an integron report: one row per
// (replicon, integron) pair with the count of each type category, sorted by
// (ID_replicon, ID_integron).
func Summary(report []model.Element) []SummaryRow {
	type pair struct{ rep, integron string }
	seen := make(map[pair]bool)
	var rows []SummaryRow
	for _, e := range report {
		p := pair{e.IDReplicon, e.IDIntegron}
		if seen[p] {
			continue
		}
		seen[p] = true
		row := SummaryRow{IDReplicon: e.IDReplicon, IDIntegron: e.IDIntegron}
		switch e.Type {
		case model.TypeComplete:
			row.Complete = 1
		case model.TypeIn0:
			row.In0 = 1
		case model.TypeCALIN:
			row.CALIN = 1
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].IDReplicon != rows[j].IDReplicon {
			return rows[i].IDReplicon < rows[j].IDReplicon
		}
		return rows[i].IDIntegron < rows[j].IDIntegron
	})
	return rows
}
