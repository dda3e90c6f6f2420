package psd

import (
	"fmt"

	"github.com/cwbudde/algo-tweezer/dsp/window"
)

// Window selects the taper applied to every block.
type Window int

const (
	WindowRectangular Window = iota
	WindowHann
	WindowHamming
	WindowBlackman
)

func (w Window) String() string {
	switch w {
	case WindowRectangular:
		return "rectangular"
	case WindowHann:
		return "hann"
	case WindowHamming:
		return "hamming"
	case WindowBlackman:
		return "blackman"
	default:
		return fmt.Sprintf("Window(%d)", int(w))
	}
}

// ParseWindow parses a window name as returned by String.
func ParseWindow(name string) (Window, error) {
	switch name {
	case "", "rectangular", "rect", "none":
		return WindowRectangular, nil
	case "hann", "hanning":
		return WindowHann, nil
	case "hamming":
		return WindowHamming, nil
	case "blackman":
		return WindowBlackman, nil
	default:
		return 0, fmt.Errorf("psd: unknown window %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (w Window) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Window) UnmarshalText(text []byte) error {
	v, err := ParseWindow(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Type returns the window function generating w.
func (w Window) Type() window.Type {
	switch w {
	case WindowHann:
		return window.TypeHann
	case WindowHamming:
		return window.TypeHamming
	case WindowBlackman:
		return window.TypeBlackman
	default:
		return window.TypeRectangular
	}
}

// coefficients returns the periodic form of w with n samples.
func (w Window) coefficients(n int) []float64 {
	return window.Generate(w.Type(), n, window.WithPeriodic())
}
