package results

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/yumyai/intfinder/pkg/model"
)

// NoIntegronMarker is written instead of a report when nothing was found.
const NoIntegronMarker = "# No Integron found"

// WriteReport writes the integron report as a tab-separated table with the
// fixed column order. Missing attC distances are rendered as NA.
func WriteReport(w io.Writer, report []model.Element) error {
	if _, err := fmt.Fprintln(w, strings.Join(ReportColumns, "\t")); err != nil {
		return err
	}
	for _, e := range report {
		dist := "NA"
		if !math.IsNaN(e.Distance2Attc) {
			dist = strconv.FormatFloat(e.Distance2Attc, 'g', -1, 64)
		}
		evalue := "NA"
		if !math.IsNaN(e.Evalue) {
			evalue = strconv.FormatFloat(e.Evalue, 'g', -1, 64)
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.IDIntegron, e.IDReplicon, e.Element,
			e.PosBeg, e.PosEnd, e.Strand, evalue,
			e.TypeElt, e.Annotation, e.Model,
			e.Type, e.Default, dist, e.ConsideredTopology)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteReportFile writes the report to path, or the no-integron marker when
// the report is empty.
func WriteReportFile(path string, report []model.Element) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer f.Close()
	if len(report) == 0 {
		_, err = fmt.Fprintln(f, NoIntegronMarker)
		return err
	}
	return WriteReport(f, report)
}

// WriteSummary writes the per-integron type counts as a tab-separated table.
func WriteSummary(w io.Writer, rows []SummaryRow) error {
	if _, err := fmt.Fprintln(w, "ID_replicon\tID_integron\tcomplete\tIn0\tCALIN"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
			r.IDReplicon, r.IDIntegron, r.Complete, r.In0, r.CALIN); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummaryFile writes the summary table to path.
func WriteSummaryFile(path string, rows []SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary %s: %w", path, err)
	}
	defer f.Close()
	return WriteSummary(f, rows)
}
