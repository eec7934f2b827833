package schema

import (
	"errors"
	"fmt"

	"github.com/arloliu/mpfile/container"
	"github.com/arloliu/mpfile/errs"
)

// VersionKey is the attribute that discriminates schema versions. Legacy
// files omit it entirely.
const VersionKey = "format_version_number"

// Version tags one canonical-field mapping table.
type Version uint8

const (
	VersionUnknown Version = iota

	// VersionV2 is the first-generation layout: no movie/ prefix, binning
	// factors stored under the acquisition engine tree.
	VersionV2

	// VersionV3Devices is the third-generation layout with the CamelCase
	// Devices/AcqCam configuration tree and explicit Height/Width
	// attributes.
	VersionV3Devices

	// VersionV3AcqCamera is the third-generation layout with the
	// snake_case acq_camera configuration tree; the image shape comes from
	// the keyframe dataset instead of attributes.
	VersionV3AcqCamera
)

func (v Version) String() string {
	switch v {
	case VersionV2:
		return "v2"
	case VersionV3Devices:
		return "v3-devices"
	case VersionV3AcqCamera:
		return "v3-acq-camera"
	default:
		return "unknown"
	}
}

// KeySet maps canonical metadata fields to the attribute paths that carry
// them in one schema version.
type KeySet struct {
	FrameRate       string
	FrameBinning    string
	PixelBinning    string
	ExposureTime    string
	Camera          string
	Instrument      string
	SoftwareVersion string
	AcquiredAt      string

	// ImageHeight and ImageWidth are empty when the image shape comes from
	// the trailing dims of KeyframeDataset.
	ImageHeight string
	ImageWidth  string

	FrameDataset    string
	KeyframeDataset string
}

var v2Keys = KeySet{
	FrameRate:       "configuration/Devices/AcqCam/FrameRate",
	FrameBinning:    "configuration/Engines/AcqMovieEngine/FrameBinning",
	PixelBinning:    "configuration/Engines/AcqMovieEngine/PixelBinning",
	ExposureTime:    "configuration/Devices/AcqCam/ExposureTime",
	Camera:          "configuration/Devices/AcqCam/CameraName",
	Instrument:      "device_info/InstrumentName",
	SoftwareVersion: "device_info/SoftwareVersion",
	AcquiredAt:      "time_created",
	ImageHeight:     "configuration/Devices/AcqCam/Height",
	ImageWidth:      "configuration/Devices/AcqCam/Width",
	FrameDataset:    "frame",
	KeyframeDataset: "keyframe",
}

var v3DevicesKeys = KeySet{
	FrameRate:       "movie/configuration/Devices/AcqCam/FrameRate",
	FrameBinning:    "movie/configuration/Devices/AcqCam/SoftwareFrameBinning",
	PixelBinning:    "movie/configuration/Devices/AcqCam/SoftwarePixelBinning",
	ExposureTime:    "movie/configuration/Devices/AcqCam/ExposureTime",
	Camera:          "movie/configuration/Devices/AcqCam/CameraName",
	Instrument:      "movie/device_info/InstrumentName",
	SoftwareVersion: "movie/device_info/SoftwareVersion",
	AcquiredAt:      "movie/time_created",
	ImageHeight:     "movie/configuration/Devices/AcqCam/Height",
	ImageWidth:      "movie/configuration/Devices/AcqCam/Width",
	FrameDataset:    "movie/frame",
	KeyframeDataset: "movie/keyframe",
}

var v3AcqCameraKeys = KeySet{
	FrameRate:       "movie/configuration/acq_camera/frame_rate",
	FrameBinning:    "movie/configuration/acq_camera/frame_binning",
	PixelBinning:    "movie/configuration/acq_camera/pixel_binning",
	ExposureTime:    "movie/configuration/acq_camera/exposure_time",
	Camera:          "movie/configuration/acq_camera/model",
	Instrument:      "movie/device_serials/InstrumentName",
	SoftwareVersion: "movie/device_info/SoftwareVersion",
	AcquiredAt:      "movie/time_created",
	FrameDataset:    "movie/frame",
	KeyframeDataset: "movie/keyframe",
}

// Keys returns the mapping table for the version. The zero Version returns
// an empty set.
func (v Version) Keys() KeySet {
	switch v {
	case VersionV2:
		return v2Keys
	case VersionV3Devices:
		return v3DevicesKeys
	case VersionV3AcqCamera:
		return v3AcqCameraKeys
	default:
		return KeySet{}
	}
}

// ConsumedKeys reports every attribute path the version's mapping table
// claims, including the version discriminator. Attributes outside this set
// pass through metadata extraction untouched.
func (v Version) ConsumedKeys() map[string]struct{} {
	ks := v.Keys()
	keys := []string{
		ks.FrameRate, ks.FrameBinning, ks.PixelBinning, ks.ExposureTime,
		ks.Camera, ks.Instrument, ks.SoftwareVersion, ks.AcquiredAt,
		ks.ImageHeight, ks.ImageWidth,
	}

	consumed := make(map[string]struct{}, len(keys)+1)
	consumed[VersionKey] = struct{}{}
	for _, key := range keys {
		if key != "" {
			consumed[key] = struct{}{}
		}
	}

	return consumed
}

// Detect determines the schema version of an open container.
//
// The format_version_number attribute selects the generation: 3 splits on
// the presence of the Devices/AcqCam Height attribute into VersionV3Devices
// or VersionV3AcqCamera, 2 selects VersionV2, and a missing marker also
// selects VersionV2 because files predating the marker are still readable.
// Any other value, or a marker that is not a scalar Int64, yields a
// *errs.SchemaError.
//
// Parameters:
//   - r: open container to inspect
//
// Returns:
//   - Version: detected schema version
//   - error: SchemaError for an unusable discriminator
func Detect(r *container.Reader) (Version, error) {
	attr, err := r.Attr(VersionKey)
	if err != nil {
		var missing *errs.MissingKeyError
		if errors.As(err, &missing) {
			return VersionV2, nil
		}

		return VersionUnknown, err
	}

	num, err := AsInt64(r.Origin(), FieldFormatVersion, attr)
	if err != nil {
		return VersionUnknown, err
	}

	switch num {
	case 2:
		return VersionV2, nil
	case 3:
		if _, err := r.Attr(v3DevicesKeys.ImageHeight); err == nil {
			return VersionV3Devices, nil
		}

		return VersionV3AcqCamera, nil
	default:
		return VersionUnknown, &errs.SchemaError{
			Path:   r.Origin(),
			Field:  FieldFormatVersion,
			Key:    VersionKey,
			Reason: fmt.Sprintf("unsupported schema version %d", num),
		}
	}
}
