// Package metadata extracts canonical acquisition metadata from mass
// photometry containers.
//
// Extract turns one open container into a Record: the schema version is
// detected, each canonical field is coerced from the attribute the
// version's mapping table names, absent fields take documented defaults,
// and every attribute the schema does not claim is preserved verbatim in
// Record.Extras. Each field carries its provenance (measured, defaulted or
// derived), so callers can tell a stored frame rate from a fallback.
//
// ExtractAll processes many files through a bounded worker pool and yields
// one Result per input path, in input order. A file that fails to open or
// extract becomes a Result carrying the error; the rest of the batch is
// unaffected.
package metadata
