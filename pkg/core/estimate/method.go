package estimate

import "fmt"

// Method tells which strategy produced an estimate.
type Method int

const (
	// Interpolation: the rank lies between two observed points.
	Interpolation Method = iota
	// Extrapolation: power law below the lowest observed rank.
	Extrapolation
	// PowerLaw: power-law regression above the highest observed rank.
	PowerLaw
)

func (m Method) String() string {
	switch m {
	case Interpolation:
		return "interpolation"
	case Extrapolation:
		return "extrapolation"
	case PowerLaw:
		return "power_law"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod is the inverse of String.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "interpolation":
		return Interpolation, nil
	case "extrapolation":
		return Extrapolation, nil
	case "power_law":
		return PowerLaw, nil
	}
	return 0, fmt.Errorf("unknown estimation method %q", s)
}

func (m Method) MarshalText() ([]byte, error) {
	switch m {
	case Interpolation, Extrapolation, PowerLaw:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("invalid estimation method %d", int(m))
}

func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
