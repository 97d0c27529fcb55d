package uart

// FakeLineReader is a test double that returns scripted lines.
type FakeLineReader struct {
	// Lines contains the lines still to be delivered.
	Lines []string

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeLineReader creates a FakeLineReader with the given lines.
func NewFakeLineReader(lines ...string) *FakeLineReader {
	return &FakeLineReader{Lines: lines}
}

// Push appends lines to deliver.
func (f *FakeLineReader) Push(lines ...string) {
	f.Lines = append(f.Lines, lines...)
}

// ReadLine returns the next scripted line, one per call.
func (f *FakeLineReader) ReadLine() (string, bool) {
	if len(f.Lines) == 0 {
		return "", false
	}
	line := f.Lines[0]
	f.Lines = f.Lines[1:]
	return line, true
}

// Close marks the reader as closed.
func (f *FakeLineReader) Close() error {
	f.Closed = true
	return nil
}
