package errs

import (
	"fmt"
)

// NotFoundError reports a file path that could not be opened for reading.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Is matches the ErrNotFound kind sentinel.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// FormatError reports a file whose signature, version, or structure is not a
// valid container. Offset is the byte position of the violation when known,
// -1 otherwise.
type FormatError struct {
	Path   string
	Reason string
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	path := e.Path
	if path == "" {
		path = "container"
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s at offset %d", path, e.Reason, e.Offset)
	}

	return fmt.Sprintf("%s: %s", path, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is matches the ErrFormat kind sentinel.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// CorruptDataError reports stored data that failed decompression or checksum
// verification. Dataset and Chunk identify the failing chunk when the failure
// happened inside a dataset read; Chunk is -1 otherwise.
type CorruptDataError struct {
	Path    string
	Dataset string
	Chunk   int
	Reason  string
	Err     error
}

func (e *CorruptDataError) Error() string {
	path := e.Path
	if path == "" {
		path = "container"
	}
	if e.Dataset != "" && e.Chunk >= 0 {
		return fmt.Sprintf("%s: dataset %q chunk %d: %s", path, e.Dataset, e.Chunk, e.Reason)
	}
	if e.Dataset != "" {
		return fmt.Sprintf("%s: dataset %q: %s", path, e.Dataset, e.Reason)
	}

	return fmt.Sprintf("%s: %s", path, e.Reason)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }

// Is matches the ErrCorruptData kind sentinel.
func (e *CorruptDataError) Is(target error) bool { return target == ErrCorruptData }

// MissingKeyError reports an attribute or dataset path that is not present in
// the container.
type MissingKeyError struct {
	Path string
	Key  string
}

func (e *MissingKeyError) Error() string {
	path := e.Path
	if path == "" {
		path = "container"
	}

	return fmt.Sprintf("%s: key %q not found", path, e.Key)
}

// Is matches the ErrMissingKey kind sentinel.
func (e *MissingKeyError) Is(target error) bool { return target == ErrMissingKey }

// SchemaError reports a canonical metadata field whose stored attribute value
// is incompatible with the field's canonical type. Field names the canonical
// field; Key names the attribute path it maps to.
type SchemaError struct {
	Path   string
	Field  string
	Key    string
	Reason string
}

func (e *SchemaError) Error() string {
	path := e.Path
	if path == "" {
		path = "container"
	}
	if e.Key != "" {
		return fmt.Sprintf("%s: field %q (key %q): %s", path, e.Field, e.Key, e.Reason)
	}

	return fmt.Sprintf("%s: field %q: %s", path, e.Field, e.Reason)
}

// Is matches the ErrSchema kind sentinel.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
