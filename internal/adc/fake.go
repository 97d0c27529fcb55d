package adc

import "fmt"

// FakeReader is a test double that returns scripted conversions per channel.
type FakeReader struct {
	// Values contains scripted values for each channel. Each ReadChannel
	// call consumes the next value; the last value repeats once exhausted.
	Values map[int][]int

	// Errors, if set for a channel, is returned by ReadChannel for that channel.
	Errors map[int]error

	// Reads counts ReadChannel calls per channel.
	Reads map[int]int

	// Closed tracks if Close was called.
	Closed bool

	index map[int]int
}

// NewFakeReader creates a FakeReader with no scripted values.
func NewFakeReader() *FakeReader {
	return &FakeReader{
		Values: make(map[int][]int),
		Errors: make(map[int]error),
		Reads:  make(map[int]int),
		index:  make(map[int]int),
	}
}

// Set scripts the values returned for ch, restarting from the first.
func (f *FakeReader) Set(ch int, values ...int) {
	f.Values[ch] = values
	f.index[ch] = 0
}

// ReadChannel returns the next scripted value for ch.
func (f *FakeReader) ReadChannel(ch int) (int, error) {
	f.Reads[ch]++
	if err := f.Errors[ch]; err != nil {
		return 0, err
	}

	values := f.Values[ch]
	if len(values) == 0 {
		return 0, fmt.Errorf("no values configured for channel %d", ch)
	}

	i := f.index[ch]
	v := values[i]
	if i < len(values)-1 {
		f.index[ch] = i + 1
	}
	return v, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
