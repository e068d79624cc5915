package model

import (
	"fmt"
	"sort"
	"strconv"
)

// MalformedInputError reports a hit row whose numeric fields cannot be
// materialized into a typed table.
type MalformedInputError struct {
	Row   int
	Field string
	Value string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed hit table: row %d field %q has invalid value %q",
		e.Row, e.Field, e.Value)
}

// HitFromRecord materializes one raw record into a typed AttcHit.
// Field order follows the hit table columns: accession, model, model_start,
// model_end, pos_beg, pos_end, strand, evalue.
func HitFromRecord(row int, rec []string) (AttcHit, error) {
	if len(rec) < 8 {
		return AttcHit{}, &MalformedInputError{Row: row, Field: "record", Value: fmt.Sprintf("%d columns", len(rec))}
	}
	var (
		h   AttcHit
		err error
	)
	h.Accession = rec[0]
	h.Model = rec[1]
	if h.ModelStart, err = strconv.Atoi(rec[2]); err != nil {
		return AttcHit{}, &MalformedInputError{Row: row, Field: "model_start", Value: rec[2]}
	}
	if h.ModelEnd, err = strconv.Atoi(rec[3]); err != nil {
		return AttcHit{}, &MalformedInputError{Row: row, Field: "model_end", Value: rec[3]}
	}
	if h.PosBeg, err = strconv.Atoi(rec[4]); err != nil {
		return AttcHit{}, &MalformedInputError{Row: row, Field: "pos_beg", Value: rec[4]}
	}
	if h.PosEnd, err = strconv.Atoi(rec[5]); err != nil {
		return AttcHit{}, &MalformedInputError{Row: row, Field: "pos_end", Value: rec[5]}
	}
	switch rec[6] {
	case "+":
		h.Strand = StrandPlus
	case "-":
		h.Strand = StrandMinus
	default:
		return AttcHit{}, &MalformedInputError{Row: row, Field: "strand", Value: rec[6]}
	}
	if h.Evalue, err = strconv.ParseFloat(rec[7], 64); err != nil {
		return AttcHit{}, &MalformedInputError{Row: row, Field: "evalue", Value: rec[7]}
	}
	return h, nil
}

// SortByPos orders the table by pos_beg ascending. The sort is stable so
// rows sharing a start keep their insertion order.
func (t HitTable) SortByPos() {
	sort.SliceStable(t, func(i, j int) bool { return t[i].PosBeg < t[j].PosBeg })
}

// key identifies a hit on every column except the e-value.
type hitKey struct {
	accession  string
	model      string
	modelStart int
	modelEnd   int
	posBeg     int
	posEnd     int
	strand     Strand
}

func (h AttcHit) key() hitKey {
	return hitKey{h.Accession, h.Model, h.ModelStart, h.ModelEnd, h.PosBeg, h.PosEnd, h.Strand}
}

// Dedup drops rows identical on every column except evalue, keeping the
// first occurrence, and returns the resulting densely indexed table.
func (t HitTable) Dedup() HitTable {
	seen := make(map[hitKey]bool, len(t))
	out := make(HitTable, 0, len(t))
	for _, h := range t {
		k := h.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, h)
	}
	return out
}

// Contains reports whether an identical row (evalue excluded) is present.
func (t HitTable) Contains(h AttcHit) bool {
	k := h.key()
	for _, o := range t {
		if o.key() == k {
			return true
		}
	}
	return false
}
