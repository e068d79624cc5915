package model

import (
	"errors"
	"testing"
)

func TestHitFromRecord(t *testing.T) {
	rec := []string{"ACBA.007.P01_13", "attc_4", "1", "47", "17825", "17884", "+", "1e-09"}
	h, err := HitFromRecord(1, rec)
	if err != nil {
		t.Fatal(err)
	}
	want := AttcHit{
		Accession: "ACBA.007.P01_13", Model: "attc_4",
		ModelStart: 1, ModelEnd: 47,
		PosBeg: 17825, PosEnd: 17884, Strand: StrandPlus, Evalue: 1e-9,
	}
	if h != want {
		t.Errorf("got %+v, want %+v", h, want)
	}
}

func TestHitFromRecordMalformed(t *testing.T) {
	cases := []struct {
		name  string
		rec   []string
		field string
	}{
		{"short record", []string{"rep", "attc_4", "1"}, "record"},
		{"bad pos_beg", []string{"rep", "attc_4", "1", "47", "17x25", "17884", "+", "1e-09"}, "pos_beg"},
		{"bad strand", []string{"rep", "attc_4", "1", "47", "17825", "17884", "?", "1e-09"}, "strand"},
		{"bad evalue", []string{"rep", "attc_4", "1", "47", "17825", "17884", "+", "low"}, "evalue"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := HitFromRecord(3, tc.rec)
			var merr *MalformedInputError
			if !errors.As(err, &merr) {
				t.Fatalf("expected MalformedInputError, got %v", err)
			}
			if merr.Field != tc.field || merr.Row != 3 {
				t.Errorf("error = %+v, want field %q row 3", merr, tc.field)
			}
		})
	}
}

func TestDedupIgnoresEvalue(t *testing.T) {
	a := AttcHit{Accession: "rep", Model: "attc_4", ModelStart: 1, ModelEnd: 47,
		PosBeg: 100, PosEnd: 160, Strand: StrandPlus, Evalue: 1e-9}
	b := a
	b.Evalue = 1e-2 // same hit, weaker score
	c := a
	c.Strand = StrandMinus

	got := HitTable{a, b, c}.Dedup()
	if len(got) != 2 {
		t.Fatalf("expected 2 rows after dedup, got %d", len(got))
	}
	if got[0].Evalue != 1e-9 {
		t.Errorf("dedup must keep the first occurrence, kept evalue %g", got[0].Evalue)
	}
	if got[1].Strand != StrandMinus {
		t.Errorf("distinct strand must survive dedup")
	}
}

func TestContains(t *testing.T) {
	a := AttcHit{Accession: "rep", Model: "attc_4", ModelStart: 1, ModelEnd: 47,
		PosBeg: 100, PosEnd: 160, Strand: StrandPlus, Evalue: 1e-9}
	tbl := HitTable{a}

	probe := a
	probe.Evalue = 0.5
	if !tbl.Contains(probe) {
		t.Error("evalue must not take part in identity")
	}
	probe = a
	probe.PosBeg = 101
	if tbl.Contains(probe) {
		t.Error("different position must not match")
	}
}

func TestSortByPosStable(t *testing.T) {
	tbl := HitTable{
		{Accession: "rep", PosBeg: 500, Evalue: 1e-3},
		{Accession: "rep", PosBeg: 100, Evalue: 1e-5},
		{Accession: "rep", PosBeg: 500, Evalue: 1e-9},
	}
	tbl.SortByPos()
	if tbl[0].PosBeg != 100 {
		t.Errorf("first row pos_beg = %d, want 100", tbl[0].PosBeg)
	}
	if tbl[1].Evalue != 1e-3 || tbl[2].Evalue != 1e-9 {
		t.Errorf("ties must keep insertion order: %g, %g", tbl[1].Evalue, tbl[2].Evalue)
	}
}

func TestStrandInt(t *testing.T) {
	if StrandPlus.Int() != 1 || StrandMinus.Int() != -1 {
		t.Errorf("strand ints = %d, %d", StrandPlus.Int(), StrandMinus.Int())
	}
}
