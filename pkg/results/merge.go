package results

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/yumyai/intfinder/pkg/model"
)

// MergeReports aggregates several per-replicon .integrons files into one
// report. Comment lines (leading '#') and empty files are tolerated; no
// input rows yields an empty report.
func MergeReports(paths ...string) ([]model.Element, error) {
	var all []model.Element
	for _, p := range paths {
		rows, err := readReport(p)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

func readReport(path string) ([]model.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report %s: %w", path, err)
	}
	defer f.Close()

	var rows []model.Element
	sc := bufio.NewScanner(f)
	header := true
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if header {
			header = false
			continue
		}
		e, err := elementFromRecord(strings.Split(line, "\t"))
		if err != nil {
			return nil, fmt.Errorf("report %s line %d: %w", path, lineNo, err)
		}
		rows = append(rows, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	return rows, nil
}

func elementFromRecord(rec []string) (model.Element, error) {
	if len(rec) != len(ReportColumns) {
		return model.Element{}, fmt.Errorf("expected %d columns, got %d", len(ReportColumns), len(rec))
	}
	var (
		e   model.Element
		err error
	)
	e.IDIntegron = rec[0]
	e.IDReplicon = rec[1]
	e.Element = rec[2]
	if e.PosBeg, err = strconv.Atoi(rec[3]); err != nil {
		return model.Element{}, fmt.Errorf("pos_beg %q: %w", rec[3], err)
	}
	if e.PosEnd, err = strconv.Atoi(rec[4]); err != nil {
		return model.Element{}, fmt.Errorf("pos_end %q: %w", rec[4], err)
	}
	if e.Strand, err = strconv.Atoi(rec[5]); err != nil {
		return model.Element{}, fmt.Errorf("strand %q: %w", rec[5], err)
	}
	if e.Evalue, err = parseMaybeNA(rec[6]); err != nil {
		return model.Element{}, fmt.Errorf("evalue %q: %w", rec[6], err)
	}
	e.TypeElt = rec[7]
	e.Annotation = rec[8]
	e.Model = rec[9]
	e.Type = rec[10]
	e.Default = rec[11]
	if e.Distance2Attc, err = parseMaybeNA(rec[12]); err != nil {
		return model.Element{}, fmt.Errorf("distance_2attC %q: %w", rec[12], err)
	}
	e.ConsideredTopology = rec[13]
	return e, nil
}

func parseMaybeNA(s string) (float64, error) {
	if s == "NA" || s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// MergeSummaries aggregates several .summary files into one table.
func MergeSummaries(paths ...string) ([]SummaryRow, error) {
	var all []SummaryRow
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open summary %s: %w", p, err)
		}
		sc := bufio.NewScanner(f)
		header := true
		lineNo := 0
		for sc.Scan() {
			lineNo++
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if header {
				header = false
				continue
			}
			fields := strings.Split(line, "\t")
			if len(fields) != 5 {
				f.Close()
				return nil, fmt.Errorf("summary %s line %d: expected 5 columns, got %d", p, lineNo, len(fields))
			}
			var row SummaryRow
			row.IDReplicon = fields[0]
			row.IDIntegron = fields[1]
			if row.Complete, err = strconv.Atoi(fields[2]); err != nil {
				f.Close()
				return nil, fmt.Errorf("summary %s line %d: complete %q: %w", p, lineNo, fields[2], err)
			}
			if row.In0, err = strconv.Atoi(fields[3]); err != nil {
				f.Close()
				return nil, fmt.Errorf("summary %s line %d: In0 %q: %w", p, lineNo, fields[3], err)
			}
			if row.CALIN, err = strconv.Atoi(fields[4]); err != nil {
				f.Close()
				return nil, fmt.Errorf("summary %s line %d: CALIN %q: %w", p, lineNo, fields[4], err)
			}
			all = append(all, row)
		}
		err = sc.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read summary %s: %w", p, err)
		}
	}
	return all, nil
}
