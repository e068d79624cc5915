package attc

import "github.com/yumyai/intfinder/pkg/model"

// StrandSearch restricts the exhaustive search to one strand of the window.
type StrandSearch string

const (
	SearchTop    StrandSearch = "top"
	SearchBottom StrandSearch = "bottom"
	SearchBoth   StrandSearch = "both"
)

// SearchWindow is the derived genomic interval handed to the exhaustive
// search. Transient, recomputed per integron.
type SearchWindow struct {
	Beg    int
	End    int
	Strand StrandSearch
}

// strandOf picks the search strand from the first attC row of a cluster.
func strandOf(attc []model.Element) StrandSearch {
	if attc[0].Strand == 1 {
		return SearchTop
	}
	return SearchBottom
}

// boundWindow extends [beg, end] by the two threshold extents and applies
// the replicon topology: circular coordinates wrap modulo the size, linear
// ones clamp to [0, size].
func boundWindow(beg, end, extLeft, extRight, size int, circular bool) (int, int) {
	if circular {
		return modSize(beg-extLeft, size), modSize(end+extRight, size)
	}
	beg -= extLeft
	if beg < 0 {
		beg = 0
	}
	end += extRight
	if end > size {
		end = size
	}
	return beg, end
}

// completeWindow derives the window for an integron carrying both an
// integrase and attC sites. The integrase side is decided by comparing the
// two circular distances between the elements; the search never extends over
// the integrase.
func completeWindow(d model.IntegronDescription, size, distThreshold int, circular bool) (SearchWindow, bool) {
	attc := d.AttC()
	intI := d.Integrase()

	integraseIsLeft := modSize(attc[0].PosBeg-intI[len(intI)-1].PosEnd, size) <
		modSize(intI[0].PosBeg-attc[len(attc)-1].PosEnd, size)

	var beg, end, extLeft, extRight int
	if integraseIsLeft {
		beg = intI[len(intI)-1].PosEnd
		extLeft = 0
		end = attc[len(attc)-1].PosEnd
		extRight = distThreshold
	} else {
		beg = attc[0].PosBeg
		extLeft = distThreshold
		end = intI[len(intI)-1].PosEnd
		extRight = 0
	}
	beg, end = boundWindow(beg, end, extLeft, extRight, size, circular)
	return SearchWindow{Beg: beg, End: end, Strand: strandOf(attc)}, integraseIsLeft
}

// calinWindow derives the symmetric window around an attC-only cluster.
func calinWindow(d model.IntegronDescription, size, distThreshold int, circular bool) SearchWindow {
	attc := d.AttC()
	beg, end := boundWindow(attc[0].PosBeg, attc[len(attc)-1].PosEnd,
		distThreshold, distThreshold, size, circular)
	return SearchWindow{Beg: beg, End: end, Strand: strandOf(attc)}
}

// in0Window derives the symmetric window around a lone integrase. Both
// strands are searched since no attC site fixes an orientation yet.
func in0Window(d model.IntegronDescription, size, distThreshold int, circular bool) SearchWindow {
	intI := d.Integrase()
	beg, end := boundWindow(intI[0].PosBeg, intI[len(intI)-1].PosEnd,
		distThreshold, distThreshold, size, circular)
	return SearchWindow{Beg: beg, End: end, Strand: SearchBoth}
}
