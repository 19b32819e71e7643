package docresult

// Category is a structural bucket a word belongs to within a crawled document: one of the
// six heading levels, strong/emphasized/regular/small text, or strikethrough ("s" in the
// original markup vocabulary).
type Category int

const (
	H1 Category = iota
	H2
	H3
	H4
	H5
	H6
	Strong
	Em
	Regular
	Small
	Strikethrough
)

// categoryWeight is part of the on-wire ranking semantics: changing any of these values is
// a protocol break, since peers compare term-frequency scores computed with them.
var categoryWeight = [...]float64{
	H1:            10,
	H2:            9,
	H3:            8,
	H4:            7,
	H5:            6,
	H6:            5.5,
	Strong:        4,
	Em:            1.1,
	Regular:       1.0,
	Small:         0.3,
	Strikethrough: 0.1,
}

// WordCount buckets eleven non-negative word counts by structural category.
type WordCount struct {
	H1, H2, H3, H4, H5, H6 int
	Strong, Em             int
	Regular                int
	Small                  int
	S                      int // strikethrough
}

// Add increments the bucket for category by one.
func (w *WordCount) Add(c Category) {
	switch c {
	case H1:
		w.H1++
	case H2:
		w.H2++
	case H3:
		w.H3++
	case H4:
		w.H4++
	case H5:
		w.H5++
	case H6:
		w.H6++
	case Strong:
		w.Strong++
	case Em:
		w.Em++
	case Regular:
		w.Regular++
	case Small:
		w.Small++
	case Strikethrough:
		w.S++
	}
}

// Sum is the total word count across every category.
func (w WordCount) Sum() int {
	return w.H1 + w.H2 + w.H3 + w.H4 + w.H5 + w.H6 + w.Strong + w.Em + w.Regular + w.Small + w.S
}

// WeightedSum applies the fixed category weights documented above. A change to any weight
// is a protocol break.
func (w WordCount) WeightedSum() float64 {
	return float64(w.H1)*categoryWeight[H1] +
		float64(w.H2)*categoryWeight[H2] +
		float64(w.H3)*categoryWeight[H3] +
		float64(w.H4)*categoryWeight[H4] +
		float64(w.H5)*categoryWeight[H5] +
		float64(w.H6)*categoryWeight[H6] +
		float64(w.Strong)*categoryWeight[Strong] +
		float64(w.Em)*categoryWeight[Em] +
		float64(w.Regular)*categoryWeight[Regular] +
		float64(w.Small)*categoryWeight[Small] +
		float64(w.S)*categoryWeight[Strikethrough]
}
