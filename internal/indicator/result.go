package indicator

import "time"

// Result is one symbol's output of a compute call: a single value column
// named after the config's user name.
type Result struct {
	Name       string
	Symbol     string
	Timestamps []time.Time
	Values     []float64
}

func (r *Result) SymbolName() string { return r.Symbol }
func (r *Result) Columns() []string  { return []string{r.Name} }
func (r *Result) Len() int           { return len(r.Values) }

func (r *Result) At(i int) (time.Time, []float64) {
	return r.Timestamps[i], []float64{r.Values[i]}
}
