package infernal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yumyai/intfinder/pkg/model"
)

// tblout column indices (whitespace-separated cmsearch --tblout format).
const (
	colTarget  = 0
	colQuery   = 2
	colMdlFrom = 5
	colMdlTo   = 6
	colSeqFrom = 7
	colSeqTo   = 8
	colStrand  = 9
	colEvalue  = 15
	tbloutCols = 17
)

// ParseTblout reads a cmsearch --tblout stream into a hit table. Hits with
// an e-value above evalueCutoff, or whose genomic span falls outside
// [minAttcSize, maxAttcSize], are dropped. The returned table is sorted by
// pos_beg.
func ParseTblout(r io.Reader, evalueCutoff float64, minAttcSize, maxAttcSize int) (model.HitTable, error) {
	var hits model.HitTable
	sc := bufio.NewScanner(r)
	row := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		row++
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < tbloutCols {
			return nil, &model.MalformedInputError{Row: row, Field: "record",
				Value: fmt.Sprintf("%d columns", len(fields))}
		}
		h, err := model.HitFromRecord(row, []string{
			fields[colTarget], fields[colQuery],
			fields[colMdlFrom], fields[colMdlTo],
			fields[colSeqFrom], fields[colSeqTo],
			fields[colStrand], fields[colEvalue],
		})
		if err != nil {
			return nil, err
		}

		// on the bottom strand cmsearch reports seq_from > seq_to
		if h.PosBeg > h.PosEnd {
			h.PosBeg, h.PosEnd = h.PosEnd, h.PosBeg
		}

		if h.Evalue > evalueCutoff {
			continue
		}
		if span := h.PosEnd - h.PosBeg + 1; span < minAttcSize || span > maxAttcSize {
			continue
		}
		hits = append(hits, h)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tblout: %w", err)
	}
	hits.SortByPos()
	return hits, nil
}

// ParseTbloutFile is ParseTblout over a file on disk.
func ParseTbloutFile(path string, evalueCutoff float64, minAttcSize, maxAttcSize int) (model.HitTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tblout %s: %w", path, err)
	}
	defer f.Close()
	hits, err := ParseTblout(f, evalueCutoff, minAttcSize, maxAttcSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return hits, nil
}
