package metadata

import (
	"fmt"

	"github.com/arloliu/mpfile/container"
	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/schema"
)

// Extract reads the canonical acquisition metadata of an open container.
//
// The schema version is detected once; each canonical field is then read
// through the version's key table. A present attribute that cannot coerce
// to the field's canonical type aborts extraction with a *errs.SchemaError
// and no partial record. An absent key falls back to its documented
// default and the field is marked OriginDefaulted. Every attribute the
// schema does not claim is preserved verbatim in Record.Extras.
//
// Extract does not mutate the reader, and the returned record outlives it.
// Extracting twice from an unchanged handle returns equal records.
//
// Parameters:
//   - r: open container to extract from
//
// Returns:
//   - *Record: complete canonical metadata
//   - error: SchemaError for an unusable discriminator or field value
func Extract(r *container.Reader) (*Record, error) {
	version, err := schema.Detect(r)
	if err != nil {
		return nil, err
	}

	e := &extractor{
		r:      r,
		origin: r.Origin(),
		ks:     version.Keys(),
		rec: &Record{
			Version: version,
			origins: make(map[string]Origin, len(canonicalFields)),
		},
	}

	if err := e.run(); err != nil {
		return nil, err
	}

	return e.rec, nil
}

type extractor struct {
	r      *container.Reader
	origin string
	ks     schema.KeySet
	rec    *Record
}

func (e *extractor) run() error {
	rec := e.rec

	rate, measured, err := e.float(e.ks.FrameRate, schema.FieldFrameRate, schema.DefaultFrameRate)
	if err != nil {
		return err
	}

	rec.FrameRate = rate
	rec.FrameRateUnit = schema.DefaultFrameRateUnit
	if measured {
		rec.FrameRateUnit = schema.UnitFrameRate
	}

	if rec.FrameBinning, err = e.integer(e.ks.FrameBinning, schema.FieldFrameBinning, schema.DefaultFrameBinning); err != nil {
		return err
	}

	if rec.PixelBinning, err = e.integer(e.ks.PixelBinning, schema.FieldPixelBinning, schema.DefaultPixelBinning); err != nil {
		return err
	}

	expo, measured, err := e.float(e.ks.ExposureTime, schema.FieldExposureTime, schema.DefaultExposureTime)
	if err != nil {
		return err
	}

	rec.ExposureTime = expo
	rec.ExposureTimeUnit = schema.DefaultExposureTimeUnit
	if measured {
		rec.ExposureTimeUnit = schema.UnitExposureTime
	}

	if rec.Instrument, err = e.text(e.ks.Instrument, schema.FieldInstrument); err != nil {
		return err
	}

	if rec.Camera, err = e.text(e.ks.Camera, schema.FieldCamera); err != nil {
		return err
	}

	if rec.SoftwareVersion, err = e.text(e.ks.SoftwareVersion, schema.FieldSoftwareVersion); err != nil {
		return err
	}

	if err := e.stamp(); err != nil {
		return err
	}

	if err := e.shape(); err != nil {
		return err
	}

	e.derive()
	e.sweep()

	return nil
}

// float reads one Float64 canonical field. The bool result reports whether
// the value was stored in the file; a missing key falls back to def.
func (e *extractor) float(key, field string, def float64) (float64, bool, error) {
	attr, err := e.r.Attr(key)
	if err != nil {
		e.rec.origins[field] = OriginDefaulted
		return def, false, nil
	}

	v, err := schema.AsFloat64(e.origin, field, attr)
	if err != nil {
		return 0, false, err
	}

	e.rec.origins[field] = OriginMeasured

	return v, true, nil
}

func (e *extractor) integer(key, field string, def int64) (int64, error) {
	attr, err := e.r.Attr(key)
	if err != nil {
		e.rec.origins[field] = OriginDefaulted
		return def, nil
	}

	v, err := schema.AsInt64(e.origin, field, attr)
	if err != nil {
		return 0, err
	}

	e.rec.origins[field] = OriginMeasured

	return v, nil
}

func (e *extractor) text(key, field string) (string, error) {
	attr, err := e.r.Attr(key)
	if err != nil {
		e.rec.origins[field] = OriginDefaulted
		return schema.DefaultName, nil
	}

	v, err := schema.AsString(e.origin, field, attr)
	if err != nil {
		return "", err
	}

	e.rec.origins[field] = OriginMeasured

	return v, nil
}

func (e *extractor) stamp() error {
	attr, err := e.r.Attr(e.ks.AcquiredAt)
	if err != nil {
		e.rec.origins[schema.FieldAcquiredAt] = OriginDefaulted
		return nil
	}

	t, err := schema.AsTime(e.origin, schema.FieldAcquiredAt, attr)
	if err != nil {
		return err
	}

	e.rec.AcquiredAt = t
	e.rec.origins[schema.FieldAcquiredAt] = OriginMeasured

	return nil
}

// shape fills the image dimensions, from the Height/Width attributes when
// the version stores them and from the keyframe dataset dims otherwise.
// The shape is atomic: unless a full (height, width) pair is available it
// falls back to (0, 0).
func (e *extractor) shape() error {
	rec := e.rec

	if e.ks.ImageHeight == "" {
		return e.shapeFromKeyframe()
	}

	hAttr, hErr := e.r.Attr(e.ks.ImageHeight)
	wAttr, wErr := e.r.Attr(e.ks.ImageWidth)

	// A present attribute must coerce even when its partner is missing.
	var height, width int64
	if hErr == nil {
		var err error
		if height, err = schema.AsInt64(e.origin, schema.FieldImageShape, hAttr); err != nil {
			return err
		}
	}

	if wErr == nil {
		var err error
		if width, err = schema.AsInt64(e.origin, schema.FieldImageShape, wAttr); err != nil {
			return err
		}
	}

	if hErr != nil || wErr != nil {
		rec.origins[schema.FieldImageShape] = OriginDefaulted
		return nil
	}

	rec.ImageHeight, rec.ImageWidth = height, width
	rec.origins[schema.FieldImageShape] = OriginMeasured

	return nil
}

func (e *extractor) shapeFromKeyframe() error {
	ds, err := e.r.Dataset(e.ks.KeyframeDataset)
	if err != nil {
		e.rec.origins[schema.FieldImageShape] = OriginDefaulted
		return nil
	}

	dims := ds.Dims()
	if len(dims) < 2 {
		return &errs.SchemaError{
			Path:   e.origin,
			Field:  schema.FieldImageShape,
			Key:    e.ks.KeyframeDataset,
			Reason: fmt.Sprintf("keyframe dataset has %d dim(s), want at least 2", len(dims)),
		}
	}

	e.rec.ImageHeight = int64(dims[len(dims)-2]) //nolint: gosec
	e.rec.ImageWidth = int64(dims[len(dims)-1])  //nolint: gosec
	e.rec.origins[schema.FieldImageShape] = OriginMeasured

	return nil
}

// derive fills the fields that are computed rather than stored: the
// instrument model, the calibrated pixel size and the field of view.
func (e *extractor) derive() {
	rec := e.rec
	rec.Model = schema.ModelFromInstrument(rec.Instrument)

	if size := rec.Model.PixelSize(); size > 0 {
		rec.PixelSize = size
		rec.PixelSizeUnit = schema.UnitPixelSize
		rec.origins[schema.FieldPixelSize] = OriginDerived
	} else {
		rec.PixelSize = schema.DefaultPixelSize
		rec.PixelSizeUnit = schema.DefaultPixelSizeUnit
		rec.origins[schema.FieldPixelSize] = OriginDefaulted
	}

	eff := rec.EffectivePixelSize()
	rec.FieldOfView = [2]float64{float64(rec.ImageHeight) * eff, float64(rec.ImageWidth) * eff}
	rec.FieldOfViewUnit = rec.PixelSizeUnit
}

// sweep copies every attribute the schema did not claim into Extras.
func (e *extractor) sweep() {
	consumed := e.rec.Version.ConsumedKeys()

	extras := make(map[string]container.RawAttribute)
	for attr := range e.r.Attrs() {
		if _, ok := consumed[attr.Path]; ok {
			continue
		}
		extras[attr.Path] = attr
	}

	e.rec.Extras = extras
}
