package schema

import (
	"fmt"
	"time"

	"github.com/arloliu/mpfile/container"
	"github.com/arloliu/mpfile/errs"
)

// Timestamp layouts accepted by AsTime. time.Parse tolerates fractional
// seconds after the seconds field for all of them, so each layout also
// covers its sub-second variants.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// AsFloat64 coerces a scalar attribute to float64. Int64 values widen;
// any other stored type is a SchemaError.
func AsFloat64(origin, field string, attr container.RawAttribute) (float64, error) {
	if attr.IsArray {
		return 0, coerceErr(origin, field, attr, "Float64")
	}

	switch v := attr.Value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, coerceErr(origin, field, attr, "Float64")
	}
}

// AsInt64 coerces a scalar Int64 attribute. Floats never narrow to
// integers.
func AsInt64(origin, field string, attr container.RawAttribute) (int64, error) {
	if attr.IsArray {
		return 0, coerceErr(origin, field, attr, "Int64")
	}

	v, ok := attr.Value.(int64)
	if !ok {
		return 0, coerceErr(origin, field, attr, "Int64")
	}

	return v, nil
}

// AsString coerces a String attribute.
func AsString(origin, field string, attr container.RawAttribute) (string, error) {
	if attr.IsArray {
		return "", coerceErr(origin, field, attr, "String")
	}

	v, ok := attr.Value.(string)
	if !ok {
		return "", coerceErr(origin, field, attr, "String")
	}

	return v, nil
}

// AsTime parses a timestamp attribute stored as a String. Accepted layouts
// are RFC 3339 and the zoneless isoformat variants older writers produce;
// zoneless stamps read as UTC.
func AsTime(origin, field string, attr container.RawAttribute) (time.Time, error) {
	s, err := AsString(origin, field, attr)
	if err != nil {
		return time.Time{}, err
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &errs.SchemaError{
		Path:   origin,
		Field:  field,
		Key:    attr.Path,
		Reason: fmt.Sprintf("unparseable timestamp %q", s),
	}
}

func coerceErr(origin, field string, attr container.RawAttribute, want string) *errs.SchemaError {
	stored := attr.Type.String()
	if attr.IsArray {
		stored += " array"
	}

	return &errs.SchemaError{
		Path:   origin,
		Field:  field,
		Key:    attr.Path,
		Reason: fmt.Sprintf("stored as %s, want %s", stored, want),
	}
}
