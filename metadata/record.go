package metadata

import (
	"time"

	"github.com/arloliu/mpfile/container"
	"github.com/arloliu/mpfile/schema"
)

// Origin tells where a canonical field's value came from.
type Origin uint8

const (
	// OriginMeasured marks a value read from the file.
	OriginMeasured Origin = iota + 1
	// OriginDefaulted marks a documented fallback for an absent key.
	OriginDefaulted
	// OriginDerived marks a value computed from other fields, such as the
	// pixel size looked up from the instrument model.
	OriginDerived
)

func (o Origin) String() string {
	switch o {
	case OriginMeasured:
		return "measured"
	case OriginDefaulted:
		return "defaulted"
	case OriginDerived:
		return "derived"
	default:
		return "unknown"
	}
}

// canonicalFields fixes the reporting order of DefaultedFields.
var canonicalFields = []string{
	schema.FieldFrameRate,
	schema.FieldFrameBinning,
	schema.FieldPixelSize,
	schema.FieldPixelBinning,
	schema.FieldExposureTime,
	schema.FieldInstrument,
	schema.FieldCamera,
	schema.FieldImageShape,
	schema.FieldSoftwareVersion,
	schema.FieldAcquiredAt,
}

// Record holds the canonical acquisition metadata of one file. It is a
// plain value with no ties to the reader that produced it, so it stays
// valid after the reader closes. Treat it as read-only.
type Record struct {
	// Version is the schema the file was read under.
	Version schema.Version

	FrameRate     float64
	FrameRateUnit string
	FrameBinning  int64

	PixelSize     float64
	PixelSizeUnit string
	PixelBinning  int64

	ExposureTime     float64
	ExposureTimeUnit string

	Instrument string
	Model      schema.InstrumentModel
	Camera     string

	// ImageHeight and ImageWidth are the stored frame shape in pixels.
	ImageHeight int64
	ImageWidth  int64

	// FieldOfView is the imaged area as (height, width) in units of
	// FieldOfViewUnit, computed from the image shape and the effective
	// pixel size.
	FieldOfView     [2]float64
	FieldOfViewUnit string

	SoftwareVersion string
	AcquiredAt      time.Time

	// Extras holds every attribute the schema did not consume, keyed by
	// attribute path. Nothing stored in the file is dropped.
	Extras map[string]container.RawAttribute

	origins map[string]Origin
}

// EffectiveFrameRate returns the frame rate after frame binning. Binning
// factors below one count as one.
func (r *Record) EffectiveFrameRate() float64 {
	return r.FrameRate / float64(clampBinning(r.FrameBinning))
}

// EffectivePixelSize returns the object-plane pixel pitch after pixel
// binning.
func (r *Record) EffectivePixelSize() float64 {
	return r.PixelSize * float64(clampBinning(r.PixelBinning))
}

// EffectiveExposureTime returns the light accumulated per stored frame,
// which grows with frame binning.
func (r *Record) EffectiveExposureTime() float64 {
	return r.ExposureTime * float64(clampBinning(r.FrameBinning))
}

func clampBinning(b int64) int64 {
	if b < 1 {
		return 1
	}

	return b
}

// Origin reports the provenance of a canonical field value. Names outside
// the canonical set report zero.
func (r *Record) Origin(field string) Origin {
	return r.origins[field]
}

// DefaultedFields lists the canonical fields that carry documented defaults
// instead of stored values, in canonical field order.
func (r *Record) DefaultedFields() []string {
	var fields []string
	for _, name := range canonicalFields {
		if r.origins[name] == OriginDefaulted {
			fields = append(fields, name)
		}
	}

	return fields
}
