package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mpfile/container"
	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/format"
)

func scalarAttr(typ format.DataType, value any) container.RawAttribute {
	return container.RawAttribute{Path: "group/key", Type: typ, Value: value}
}

func arrayAttr(typ format.DataType, value any) container.RawAttribute {
	return container.RawAttribute{Path: "group/key", Type: typ, IsArray: true, Value: value}
}

func requireSchemaErr(t *testing.T, err error, field string) *errs.SchemaError {
	t.Helper()

	require.ErrorIs(t, err, errs.ErrSchema)

	var schemaErr *errs.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, "probe.mp", schemaErr.Path)
	require.Equal(t, field, schemaErr.Field)
	require.Equal(t, "group/key", schemaErr.Key)

	return schemaErr
}

func TestAsFloat64(t *testing.T) {
	t.Run("float passes through", func(t *testing.T) {
		v, err := AsFloat64("probe.mp", FieldFrameRate, scalarAttr(format.TypeFloat64, 993.93))
		require.NoError(t, err)
		require.Equal(t, 993.93, v)
	})

	t.Run("int widens", func(t *testing.T) {
		v, err := AsFloat64("probe.mp", FieldFrameRate, scalarAttr(format.TypeInt64, int64(100)))
		require.NoError(t, err)
		require.Equal(t, 100.0, v)
	})

	t.Run("string rejected", func(t *testing.T) {
		_, err := AsFloat64("probe.mp", FieldFrameRate, scalarAttr(format.TypeString, "fast"))
		schemaErr := requireSchemaErr(t, err, FieldFrameRate)
		require.Contains(t, schemaErr.Reason, "String")
	})

	t.Run("array rejected", func(t *testing.T) {
		_, err := AsFloat64("probe.mp", FieldFrameRate, arrayAttr(format.TypeFloat64, []float64{1, 2}))
		schemaErr := requireSchemaErr(t, err, FieldFrameRate)
		require.Contains(t, schemaErr.Reason, "array")
	})
}

func TestAsInt64(t *testing.T) {
	t.Run("int passes through", func(t *testing.T) {
		v, err := AsInt64("probe.mp", FieldFrameBinning, scalarAttr(format.TypeInt64, int64(5)))
		require.NoError(t, err)
		require.Equal(t, int64(5), v)
	})

	t.Run("float never narrows", func(t *testing.T) {
		_, err := AsInt64("probe.mp", FieldFrameBinning, scalarAttr(format.TypeFloat64, 5.0))
		requireSchemaErr(t, err, FieldFrameBinning)
	})

	t.Run("array rejected", func(t *testing.T) {
		_, err := AsInt64("probe.mp", FieldFrameBinning, arrayAttr(format.TypeInt64, []int64{5}))
		requireSchemaErr(t, err, FieldFrameBinning)
	})
}

func TestAsString(t *testing.T) {
	t.Run("string passes through", func(t *testing.T) {
		v, err := AsString("probe.mp", FieldCamera, scalarAttr(format.TypeString, "MARS_CMOS"))
		require.NoError(t, err)
		require.Equal(t, "MARS_CMOS", v)
	})

	t.Run("int rejected", func(t *testing.T) {
		_, err := AsString("probe.mp", FieldCamera, scalarAttr(format.TypeInt64, int64(1)))
		schemaErr := requireSchemaErr(t, err, FieldCamera)
		require.Contains(t, schemaErr.Reason, "Int64")
	})
}

func TestAsTime(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			name:  "rfc3339 utc",
			value: "2023-06-21T14:03:11Z",
			want:  time.Date(2023, 6, 21, 14, 3, 11, 0, time.UTC),
		},
		{
			name:  "rfc3339 with offset",
			value: "2023-06-21T16:03:11+02:00",
			want:  time.Date(2023, 6, 21, 16, 3, 11, 0, time.FixedZone("", 2*3600)),
		},
		{
			name:  "zoneless isoformat",
			value: "2023-06-21T14:03:11",
			want:  time.Date(2023, 6, 21, 14, 3, 11, 0, time.UTC),
		},
		{
			name:  "space separated",
			value: "2023-06-21 14:03:11",
			want:  time.Date(2023, 6, 21, 14, 3, 11, 0, time.UTC),
		},
		{
			name:  "fractional seconds",
			value: "2023-06-21 14:03:11.174545",
			want:  time.Date(2023, 6, 21, 14, 3, 11, 174545000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AsTime("probe.mp", FieldAcquiredAt, scalarAttr(format.TypeString, tt.value))
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}

	t.Run("unparseable stamp", func(t *testing.T) {
		_, err := AsTime("probe.mp", FieldAcquiredAt, scalarAttr(format.TypeString, "yesterday"))
		schemaErr := requireSchemaErr(t, err, FieldAcquiredAt)
		require.Contains(t, schemaErr.Reason, "yesterday")
	})

	t.Run("non-string stamp", func(t *testing.T) {
		_, err := AsTime("probe.mp", FieldAcquiredAt, scalarAttr(format.TypeInt64, int64(1687356191)))
		requireSchemaErr(t, err, FieldAcquiredAt)
	})
}
