package gpio

import (
	"errors"
	"testing"
)

func TestFakeButtonPressed(t *testing.T) {
	f := NewFakeButton(false, true, true)

	want := []bool{false, true, true, true}
	for i, w := range want {
		got, err := f.Pressed()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("sample %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestFakeButtonNoSamples(t *testing.T) {
	f := NewFakeButton()

	_, err := f.Pressed()
	if err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeButtonError(t *testing.T) {
	f := NewFakeButton(true)
	f.ReadError = errors.New("simulated error")

	_, err := f.Pressed()
	if err == nil {
		t.Error("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeButtonClose(t *testing.T) {
	f := NewFakeButton(true)

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeButtonReset(t *testing.T) {
	f := NewFakeButton(true, false)

	f.Pressed()
	f.Reset()

	got, _ := f.Pressed()
	if got != true {
		t.Errorf("after reset: expected true, got %v", got)
	}
}

func TestFakeButtonImplementsButton(t *testing.T) {
	var _ Button = NewFakeButton()
}
