package simulator

// fixedSource replays a fixed list of draws, then repeats the last one.
type fixedSource struct {
	values []float64
	calls  int
}

func newFixedSource(values ...float64) *fixedSource {
	return &fixedSource{values: values}
}

func (f *fixedSource) Float64() float64 {
	i := f.calls
	if i >= len(f.values) {
		i = len(f.values) - 1
	}
	f.calls++
	return f.values[i]
}
