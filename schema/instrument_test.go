package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModelFromInstrument(t *testing.T) {
	tests := []struct {
		name string
		want InstrumentModel
	}{
		{"Refeyn OneMP", ModelOneMP},
		{"Refeyn TwoMP", ModelTwoMP},
		{"ONEMP", ModelOneMP},
		{"Refeyn One MP (S/N 42)", ModelOneMP},
		{"refeyn twomp auto", ModelTwoMP},
		{"unknown", ModelUnknown},
		{"", ModelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ModelFromInstrument(tt.name))
		})
	}
}

func TestInstrumentPixelSize(t *testing.T) {
	require.Equal(t, 0.0193, ModelOneMP.PixelSize())
	require.Equal(t, 0.0118, ModelTwoMP.PixelSize())
	require.Equal(t, 0.0, ModelUnknown.PixelSize())
}

func TestInstrumentModelString(t *testing.T) {
	require.Equal(t, "OneMP", ModelOneMP.String())
	require.Equal(t, "TwoMP", ModelTwoMP.String())
	require.Equal(t, "unknown", ModelUnknown.String())
}
