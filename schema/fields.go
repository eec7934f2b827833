package schema

// Canonical metadata field names. SchemaError.Field and record origin
// tracking use these names.
const (
	FieldFormatVersion   = "format_version"
	FieldFrameRate       = "framerate"
	FieldFrameBinning    = "framebinning"
	FieldPixelSize       = "pixelsize"
	FieldPixelBinning    = "pixelbinning"
	FieldExposureTime    = "exposuretime"
	FieldInstrument      = "instrument"
	FieldCamera          = "camera"
	FieldImageShape      = "image_shape"
	FieldSoftwareVersion = "software_version"
	FieldAcquiredAt      = "acquired_at"
)

// Units reported for measured field values.
const (
	UnitFrameRate    = "Hz"
	UnitPixelSize    = "µm"
	UnitExposureTime = "ms"
)

// Documented defaults applied when a canonical field is absent from the
// file. Dimensioned defaults carry their own fallback unit.
const (
	DefaultFrameRate        = 1.0
	DefaultFrameRateUnit    = "1/frame"
	DefaultFrameBinning     = int64(1)
	DefaultPixelSize        = 1.0
	DefaultPixelSizeUnit    = "px"
	DefaultPixelBinning     = int64(1)
	DefaultExposureTime     = 1.0
	DefaultExposureTimeUnit = "frame"
	DefaultName             = "unknown"
)
