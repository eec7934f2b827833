// Package movie reads and writes the camera frame stack of mass
// photometry containers.
//
// Frames are stored as a Uint16 dataset with dims (frames, height, width),
// optionally delta encoded: frame 0 raw, every later frame the per-pixel
// difference to its predecessor modulo 65536. ReadFrom decodes eagerly
// into a Movie; StreamFrom yields frames one at a time straight off the
// chunk sequence with one frame of running state. Write is the producing
// counterpart.
//
// Delta encoding is detected through the codec attribute next to the frame
// dataset when present, falling back to a spread heuristic for files that
// predate the marker. Reconstructed movies are checked against the stored
// keyframe.
package movie
