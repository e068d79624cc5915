package attc

import (
	"strings"
	"testing"

	"github.com/yumyai/intfinder/pkg/model"
	"github.com/yumyai/intfinder/pkg/replicon"
)

type searchCall struct {
	beg, end int
	strand   StrandSearch
}

type expandCall struct {
	left, right bool
}

// fakeSearcher records windows and hands back canned hits.
type fakeSearcher struct {
	hits    model.HitTable
	calls   []searchCall
	expands []expandCall
}

func (f *fakeSearcher) LocalMax(rep *replicon.Sequence, winBeg, winEnd int, modelPath string,
	strand StrandSearch, workers int) (model.HitTable, error) {
	f.calls = append(f.calls, searchCall{winBeg, winEnd, strand})
	return append(model.HitTable{}, f.hits...), nil
}

func (f *fakeSearcher) Expand(rep *replicon.Sequence, winBeg, winEnd int, accumulated, latest model.HitTable,
	circular bool, distThreshold, maxAttcSize int, modelPath string,
	searchLeft, searchRight bool, workers int) (model.HitTable, error) {
	f.expands = append(f.expands, expandCall{searchLeft, searchRight})
	return accumulated, nil
}

func testReplicon(size int, topo string) *replicon.Sequence {
	return &replicon.Sequence{ID: "ACBA.007.P01_13", Seq: strings.Repeat("A", size), Topology: topo}
}

func attcElt(beg, end, strand int) model.Element {
	return model.Element{
		PosBeg: beg, PosEnd: end, Strand: strand,
		TypeElt: model.EltAttC, Annotation: model.EltAttC,
		Model: "attc_4", Type: model.TypeComplete,
	}
}

func intIElt(beg, end int) model.Element {
	return model.Element{
		PosBeg: beg, PosEnd: end, Strand: 1,
		TypeElt: model.EltProtein, Annotation: model.AnnotationIntI,
		Model: "intersection_tyr_intI", Type: model.TypeComplete,
	}
}

func completeDesc(intIBeg, intIEnd, attcBeg, attcEnd int) model.IntegronDescription {
	return model.IntegronDescription{intIElt(intIBeg, intIEnd), attcElt(attcBeg, attcEnd, 1)}
}

func calinDesc(beg, end, strand int) model.IntegronDescription {
	e := attcElt(beg, end, strand)
	e.Type = model.TypeCALIN
	return model.IntegronDescription{e}
}

func TestFindMaxCompleteIntegraseLeft(t *testing.T) {
	// intI ends at 500, a single attC spans [600, 650] on a 10kb circular
	// replicon: the integrase is left, the window runs from its end to
	// 650 + 200.
	rep := testReplicon(10000, replicon.TopoCircular)
	desc := completeDesc(400, 500, 600, 650)

	// the exhaustive pass re-finds the known attC and one new site just
	// past it
	s := &fakeSearcher{hits: model.HitTable{
		{Accession: rep.ID, Model: "attc_4", PosBeg: 600, PosEnd: 650, Strand: model.StrandPlus, Evalue: 1e-8},
		{Accession: rep.ID, Model: "attc_4", PosBeg: 700, PosEnd: 760, Strand: model.StrandPlus, Evalue: 1e-5},
	}}
	got, err := FindMax([]model.IntegronDescription{desc}, rep, 200, "attc_4.cm", 200, true, 1, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.calls) != 1 {
		t.Fatalf("expected one local max call, got %d", len(s.calls))
	}
	if c := s.calls[0]; c.beg != 500 || c.end != 850 {
		t.Errorf("window = [%d, %d], want [500, 850]", c.beg, c.end)
	}
	if s.calls[0].strand != SearchTop {
		t.Errorf("strand = %s, want top", s.calls[0].strand)
	}
	if len(s.expands) != 1 {
		t.Fatalf("expected one expand call, got %d", len(s.expands))
	}
	// the integrase is left: expansion must never go back over it
	if s.expands[0].left {
		t.Error("expand must not search left of the integrase")
	}
	if !s.expands[0].right {
		t.Error("new hit adjacent to the last attC should trigger a right search")
	}
	if len(got) != 2 {
		t.Errorf("expected 2 accumulated hits, got %d", len(got))
	}
}

func TestFindMaxCompleteIntegraseRight(t *testing.T) {
	rep := testReplicon(10000, replicon.TopoCircular)
	desc := model.IntegronDescription{attcElt(600, 650, 1), intIElt(800, 900)}
	desc[0].Type = model.TypeComplete

	// one new site just before the first attC
	s := &fakeSearcher{hits: model.HitTable{
		{Accession: rep.ID, Model: "attc_4", PosBeg: 500, PosEnd: 580, Strand: model.StrandPlus, Evalue: 1e-5},
		{Accession: rep.ID, Model: "attc_4", PosBeg: 600, PosEnd: 650, Strand: model.StrandPlus, Evalue: 1e-8},
	}}
	if _, err := FindMax([]model.IntegronDescription{desc}, rep, 200, "attc_4.cm", 200, true, 1, s); err != nil {
		t.Fatal(err)
	}
	// window starts dist before the first attC and stops at the integrase end
	if c := s.calls[0]; c.beg != 400 || c.end != 900 {
		t.Errorf("window = [%d, %d], want [400, 900]", c.beg, c.end)
	}
	if s.expands[0].right {
		t.Error("expand must not search right over the integrase")
	}
	if !s.expands[0].left {
		t.Error("new hit adjacent to the first attC should trigger a left search")
	}
}

func TestFindMaxWindowClampedOnLinear(t *testing.T) {
	rep := testReplicon(1000, replicon.TopoLinear)
	desc := calinDesc(50, 110, 1)

	s := &fakeSearcher{}
	if _, err := FindMax([]model.IntegronDescription{desc}, rep, 4000, "attc_4.cm", 200, false, 1, s); err != nil {
		t.Fatal(err)
	}
	if len(s.calls) != 1 {
		t.Fatalf("expected one local max call, got %d", len(s.calls))
	}
	c := s.calls[0]
	if c.beg < 0 || c.end > rep.Len() {
		t.Errorf("linear window [%d, %d] escapes [0, %d]", c.beg, c.end, rep.Len())
	}
	if c.beg != 0 || c.end != 1000 {
		t.Errorf("window = [%d, %d], want clamped [0, 1000]", c.beg, c.end)
	}
}

func TestFindMaxCalinBottomStrand(t *testing.T) {
	rep := testReplicon(20000, replicon.TopoCircular)
	desc := calinDesc(3000, 3060, -1)

	s := &fakeSearcher{}
	if _, err := FindMax([]model.IntegronDescription{desc}, rep, 500, "attc_4.cm", 200, true, 1, s); err != nil {
		t.Fatal(err)
	}
	if s.calls[0].strand != SearchBottom {
		t.Errorf("strand = %s, want bottom", s.calls[0].strand)
	}
	if c := s.calls[0]; c.beg != 2500 || c.end != 3560 {
		t.Errorf("window = [%d, %d], want [2500, 3560]", c.beg, c.end)
	}
}

func TestFindMaxCalinSkipsCoveredCluster(t *testing.T) {
	rep := testReplicon(20000, replicon.TopoCircular)
	first := calinDesc(3000, 3060, 1)
	// second cluster starts at a position the first search already returned
	second := calinDesc(5000, 5060, 1)

	s := &fakeSearcher{hits: model.HitTable{
		{Accession: rep.ID, Model: "attc_4", PosBeg: 5000, PosEnd: 5060, Strand: model.StrandPlus, Evalue: 1e-6},
	}}
	got, err := FindMax([]model.IntegronDescription{first, second}, rep, 500, "attc_4.cm", 200, true, 1, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.calls) != 1 {
		t.Errorf("covered CALIN must not be re-scanned: %d local max calls", len(s.calls))
	}
	if len(got) != 1 {
		t.Errorf("expected 1 hit after dedup, got %d", len(got))
	}
}

func TestFindMaxIn0(t *testing.T) {
	rep := testReplicon(20000, replicon.TopoCircular)
	intI := intIElt(7000, 8000)
	intI.Type = model.TypeIn0
	desc := model.IntegronDescription{intI}

	s := &fakeSearcher{hits: model.HitTable{
		{Accession: rep.ID, Model: "attc_4", PosBeg: 8100, PosEnd: 8160, Strand: model.StrandPlus, Evalue: 1e-6},
	}}
	if _, err := FindMax([]model.IntegronDescription{desc}, rep, 500, "attc_4.cm", 200, true, 1, s); err != nil {
		t.Fatal(err)
	}
	if c := s.calls[0]; c.beg != 6500 || c.end != 8500 {
		t.Errorf("window = [%d, %d], want [6500, 8500]", c.beg, c.end)
	}
	if s.calls[0].strand != SearchBoth {
		t.Errorf("In0 has no attC orientation yet, want both strands, got %s", s.calls[0].strand)
	}
	if e := s.expands[0]; !e.left || !e.right {
		t.Errorf("In0 expands both directions, got left=%v right=%v", e.left, e.right)
	}
}

func TestFindMaxIn0SkipsPhageIntegrase(t *testing.T) {
	rep := testReplicon(20000, replicon.TopoCircular)
	intI := intIElt(7000, 8000)
	intI.Type = model.TypeIn0
	intI.Model = model.PhageIntegraseModel
	desc := model.IntegronDescription{intI}

	s := &fakeSearcher{}
	got, err := FindMax([]model.IntegronDescription{desc}, rep, 500, "attc_4.cm", 200, true, 1, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.calls) != 0 {
		t.Errorf("phage integrases are not re-searched, got %d calls", len(s.calls))
	}
	if len(got) != 0 {
		t.Errorf("expected empty table, got %d rows", len(got))
	}
}

func TestFindMaxDeduplicates(t *testing.T) {
	rep := testReplicon(20000, replicon.TopoCircular)
	a := calinDesc(3000, 3060, 1)
	b := calinDesc(9000, 9060, 1)

	// both searches return the same row with different e-values
	s := &fakeSearcher{hits: model.HitTable{
		{Accession: rep.ID, Model: "attc_4", PosBeg: 3000, PosEnd: 3060, Strand: model.StrandPlus, Evalue: 1e-6},
		{Accession: rep.ID, Model: "attc_4", PosBeg: 3000, PosEnd: 3060, Strand: model.StrandPlus, Evalue: 1e-4},
	}}
	got, err := FindMax([]model.IntegronDescription{a, b}, rep, 500, "attc_4.cm", 200, true, 1, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("rows identical apart from evalue must collapse, got %d", len(got))
	}
	if got[0].Evalue != 1e-6 {
		t.Errorf("dedup keeps the first row, got evalue %g", got[0].Evalue)
	}
}

func TestFindMaxEmptyInput(t *testing.T) {
	rep := testReplicon(20000, replicon.TopoCircular)
	got, err := FindMax(nil, rep, 500, "attc_4.cm", 200, true, 1, &fakeSearcher{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty table, got %d rows", len(got))
	}
}
