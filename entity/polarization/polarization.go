package polarization

import "fmt"

// Polarization selects how the two reflectance spectra are combined.
// Free-form input is resolved here once, never inside the solver loop.
type Polarization uint8

const (
	S Polarization = iota
	P
	Mixed
)

func UnmarshalText(text string) (Polarization, error) {
	switch text {
	case "s":
		return S, nil
	case "p":
		return P, nil
	case "mixed", "":
		return Mixed, nil
	default:
		return 0, fmt.Errorf("invalid polarization: %q", text)
	}
}

func (p Polarization) String() string {
	switch p {
	case S:
		return "s"
	case P:
		return "p"
	case Mixed:
		return "mixed"
	default:
		return fmt.Sprintf("polarization(%d)", uint8(p))
	}
}

// Combine merges aligned s- and p-polarized reflectance values.
// Mixed is the unpolarized average (Rs+Rp)/2.
func (p Polarization) Combine(rs, rp []float64) []float64 {
	switch p {
	case S:
		return rs
	case P:
		return rp
	default:
		out := make([]float64, len(rs))
		for i := range rs {
			out[i] = (rs[i] + rp[i]) / 2
		}
		return out
	}
}
