package convert

// emissionPolicy decides which periodic samples become track points.
// The first periodic sample is always emitted. Later ones are held back
// until a cadence has been seen anywhere in the stream, after which every
// periodic sample is emitted.
type emissionPolicy struct {
	opened      bool // the output has been opened
	dumped      bool // a sample has been emitted, whether or not it converted
	cadenceSeen bool
}

// boundary is called at the end of every periodic sample. It reports
// whether the output must be opened first and whether to emit the sample.
func (p *emissionPolicy) boundary() (open, emit bool) {
	if !p.opened {
		p.opened = true
		open = true
	}
	if p.cadenceSeen || !p.dumped {
		p.dumped = true
		emit = true
	}
	return open, emit
}

// observe is called after every field update.
func (p *emissionPolicy) observe(hasCadence bool) {
	if hasCadence {
		p.cadenceSeen = true
	}
}
