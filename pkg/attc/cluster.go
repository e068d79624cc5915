// Package attc holds the attC site clustering and the adaptive-window
// exhaustive re-search controller.
package attc

import (
	"sort"

	"github.com/yumyai/intfinder/pkg/model"
)

// modSize is the circular modulo: the result is always in [0, size).
func modSize(a, size int) int {
	m := a % size
	if m < 0 {
		m += size
	}
	return m
}

// byStrand filters the table keeping row order.
func byStrand(hits model.HitTable, s model.Strand) model.HitTable {
	var out model.HitTable
	for _, h := range hits {
		if h.Strand == s {
			out = append(out, h)
		}
	}
	return out
}

// dropPalindromes removes duplicate rows sharing a pos_beg, keeping the one
// with the lowest e-value. The sort is stable, so e-value ties are resolved
// in favour of the earliest-inserted row.
func dropPalindromes(hits model.HitTable) model.HitTable {
	sorted := make(model.HitTable, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PosBeg != sorted[j].PosBeg {
			return sorted[i].PosBeg < sorted[j].PosBeg
		}
		return sorted[i].Evalue < sorted[j].Evalue
	})
	out := make(model.HitTable, 0, len(sorted))
	for _, h := range sorted {
		if n := len(out); n > 0 && out[n-1].PosBeg == h.PosBeg {
			continue
		}
		out = append(out, h)
	}
	return out
}

// breakpoints returns the indices where the gap to the previous row exceeds
// the distance threshold. Splitting at those indices yields the contiguous
// sub-tables of one strand.
func breakpoints(hits model.HitTable, distThreshold int) []int {
	var bkp []int
	for i := 1; i < len(hits); i++ {
		if hits[i].PosBeg-hits[i-1].PosBeg > distThreshold {
			bkp = append(bkp, i)
		}
	}
	return bkp
}

// splitAt cuts the table at the given ascending indices. Each part is a
// fresh table so clusters never alias the caller's rows.
func splitAt(hits model.HitTable, bkp []int) []model.HitTable {
	var parts []model.HitTable
	prev := 0
	for _, i := range bkp {
		parts = append(parts, append(model.HitTable(nil), hits[prev:i]...))
		prev = i
	}
	parts = append(parts, append(model.HitTable(nil), hits[prev:]...))
	return parts
}

// mergeWraparound reconnects a cluster that straddles the circular origin:
// when the circular gap between the first position of the first sub-table
// and the last position of the last sub-table is below the threshold, the
// last sub-table is concatenated in front of the first one.
func mergeWraparound(parts []model.HitTable, distThreshold, repliconSize int) []model.HitTable {
	if len(parts) < 2 {
		return parts
	}
	first := parts[0]
	last := parts[len(parts)-1]
	firstPosBeg := first[0].PosBeg
	lastPosBeg := last[len(last)-1].PosBeg
	if modSize(firstPosBeg-lastPosBeg, repliconSize) >= distThreshold {
		return parts
	}
	merged := make(model.HitTable, 0, len(last)+len(first))
	merged = append(merged, last...)
	merged = append(merged, first...)
	parts[0] = merged
	return parts[:len(parts)-1]
}

// Cluster partitions a replicon's attC hit table, sorted by pos_beg, into
// spatially coherent clusters: one cluster per strand-consistent run of hits
// with no internal gap above distThreshold. On circular replicons clusters
// split by the origin are stitched back together. When keepPalindromes is
// false, hits matching the same genomic start on both strands are collapsed
// to the better-scoring orientation first.
func Cluster(hits model.HitTable, keepPalindromes bool, distThreshold, repliconSize int) []model.HitTable {
	all := hits
	if !keepPalindromes {
		all = dropPalindromes(hits)
	}
	plus := byStrand(all, model.StrandPlus)
	minus := byStrand(all, model.StrandMinus)

	bkpPlus := breakpoints(plus, distThreshold)
	bkpMinus := breakpoints(minus, distThreshold)

	split := len(bkpPlus) > 0 || len(bkpMinus) > 0 ||
		(len(plus) > 0 && len(minus) > 0)

	if !split {
		if len(all) == 0 {
			return nil
		}
		return []model.HitTable{all}
	}

	var clusters []model.HitTable
	if len(plus) > 0 {
		clusters = append(clusters, mergeWraparound(splitAt(plus, bkpPlus), distThreshold, repliconSize)...)
	}
	if len(minus) > 0 {
		clusters = append(clusters, mergeWraparound(splitAt(minus, bkpMinus), distThreshold, repliconSize)...)
	}
	return clusters
}
