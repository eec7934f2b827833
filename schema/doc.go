// Package schema names the canonical acquisition-metadata fields and maps
// them onto the attribute layouts the instrument software has produced over
// time.
//
// Three layouts exist in the wild. Files declare theirs through the
// format_version_number attribute; Detect resolves it, and legacy files
// that omit the marker read as v2. Each Version carries an explicit KeySet
// mapping table, so supporting a new layout means adding a table rather
// than probing attribute names at runtime.
//
// The coercion helpers (AsFloat64, AsInt64, AsString, AsTime) convert raw
// attribute values to canonical field types under fixed widening rules and
// report every violation as a *errs.SchemaError naming the field.
package schema
