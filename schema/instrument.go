package schema

import "strings"

// InstrumentModel identifies the mass photometer series that produced a
// file.
type InstrumentModel uint8

const (
	ModelUnknown InstrumentModel = iota
	ModelOneMP
	ModelTwoMP
)

func (m InstrumentModel) String() string {
	switch m {
	case ModelOneMP:
		return "OneMP"
	case ModelTwoMP:
		return "TwoMP"
	default:
		return "unknown"
	}
}

// PixelSize returns the calibrated object-plane pixel size in micrometers,
// or 0 when the model is unknown. The instrument never stores this value;
// it is fixed per camera series.
func (m InstrumentModel) PixelSize() float64 {
	switch m {
	case ModelOneMP:
		return 0.0193
	case ModelTwoMP:
		return 0.0118
	default:
		return 0
	}
}

// ModelFromInstrument classifies a reported instrument name. Matching is
// case-insensitive and ignores spacing, so "Refeyn OneMP", "ONEMP" and
// "Refeyn One MP (S/N 42)" all map to ModelOneMP.
func ModelFromInstrument(name string) InstrumentModel {
	folded := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	switch {
	case strings.Contains(folded, "onemp"):
		return ModelOneMP
	case strings.Contains(folded, "twomp"):
		return ModelTwoMP
	default:
		return ModelUnknown
	}
}
