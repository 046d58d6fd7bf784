package indicator

// Column is a named numeric series aligned 1:1 with the bars that
// produced it. Values that could not be computed are NaN.
type Column struct {
	Name   string
	Values []float64
}

// LastDefined returns the most recent non-NaN value in the column.
// ok is false when the column is entirely undefined.
func (c Column) LastDefined() (float64, bool) {
	for i := len(c.Values) - 1; i >= 0; i-- {
		if IsDefined(c.Values[i]) {
			return c.Values[i], true
		}
	}
	return 0, false
}

// DefinedCount returns the number of computed positions
func (c Column) DefinedCount() int {
	n := 0
	for _, v := range c.Values {
		if IsDefined(v) {
			n++
		}
	}
	return n
}
