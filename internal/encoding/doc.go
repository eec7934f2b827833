// Package encoding implements the path payload codec of the container
// format.
//
// Entry paths are stored once, in catalog order, as a length-prefixed
// binary payload between the header and the catalog. The codec here
// encodes and decodes that payload and validates paths and their catalog
// hashes; it is internal to the container reader and writer.
package encoding
