package etalon

// Gate is the process-wide on/off switch for timing and recording.
type Gate struct {
	src ActivationSource
}

// NewGate returns a Gate reading from src. A nil src gets an in-memory flag
// that starts inactive.
func NewGate(src ActivationSource) *Gate {
	if src == nil {
		src = NewMemorySource(false)
	}
	return &Gate{src: src}
}

// IsActive reports whether timings are being recorded.
func (g *Gate) IsActive() bool { return g.src.Read() }

// Activate turns recording on and returns the resulting state.
func (g *Gate) Activate() bool {
	g.src.Write(true)
	return g.src.Read()
}

// Deactivate turns recording off and returns the resulting state.
func (g *Gate) Deactivate() bool {
	g.src.Write(false)
	return g.src.Read()
}
