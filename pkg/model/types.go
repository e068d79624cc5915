package model

// Strand is the orientation of a feature on the replicon.
type Strand string

const (
	StrandPlus  Strand = "+"
	StrandMinus Strand = "-"
)

// Int returns the 1/-1 encoding used in the integron report tables.
func (s Strand) Int() int {
	if s == StrandMinus {
		return -1
	}
	return 1
}

// AttcHit is one candidate attC site reported by the covariance-model search.
type AttcHit struct {
	Accession  string  `json:"accession"`
	Model      string  `json:"model"`
	ModelStart int     `json:"model_start"`
	ModelEnd   int     `json:"model_end"`
	PosBeg     int     `json:"pos_beg"`
	PosEnd     int     `json:"pos_end"`
	Strand     Strand  `json:"strand"`
	Evalue     float64 `json:"evalue"`
}

// HitTable is an ordered collection of attC hits. Callers keep it sorted by
// PosBeg before clustering.
type HitTable []AttcHit

// Integron completeness classes.
const (
	TypeComplete = "complete"
	TypeCALIN    = "CALIN"
	TypeIn0      = "In0"
)

// type_elt values of report rows.
const (
	EltAttC    = "attC"
	EltProtein = "protein"
)

// AnnotationIntI tags integrase rows in an integron description.
const AnnotationIntI = "intI"

// PhageIntegraseModel is the unrelated tyrosine-recombinase family that
// disqualifies an In0 element from the exhaustive re-search.
const PhageIntegraseModel = "Phage_integrase"

// Element is one row of an integron description / report table.
type Element struct {
	IDIntegron         string
	IDReplicon         string
	Element            string
	PosBeg             int
	PosEnd             int
	Strand             int
	Evalue             float64
	TypeElt            string
	Annotation         string
	Model              string
	Type               string
	Default            string
	Distance2Attc      float64 // NaN when not applicable
	ConsideredTopology string
}

// IntegronDescription is the full set of rows describing one integron.
// Read-only input for the window expander.
type IntegronDescription []Element

// Type returns the completeness class shared by every row, or "" for an
// empty or mixed description.
func (d IntegronDescription) Type() string {
	if len(d) == 0 {
		return ""
	}
	t := d[0].Type
	for _, e := range d[1:] {
		if e.Type != t {
			return ""
		}
	}
	return t
}

// AttC returns the attC rows in table order.
func (d IntegronDescription) AttC() []Element {
	var out []Element
	for _, e := range d {
		if e.TypeElt == EltAttC {
			out = append(out, e)
		}
	}
	return out
}

// Integrase returns the rows annotated as intI in table order.
func (d IntegronDescription) Integrase() []Element {
	var out []Element
	for _, e := range d {
		if e.Annotation == AnnotationIntI {
			out = append(out, e)
		}
	}
	return out
}

// AnyModel reports whether any row carries the given model label.
func (d IntegronDescription) AnyModel(name string) bool {
	for _, e := range d {
		if e.Model == name {
			return true
		}
	}
	return false
}
