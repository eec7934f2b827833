package movie

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/arloliu/mpfile/container"
	"github.com/arloliu/mpfile/errs"
	"github.com/arloliu/mpfile/schema"
)

// Stored movie layout. Current-generation files keep the movie group
// prefix; first-generation files store the frame dataset at the root.
const (
	framePath       = "movie/frame"
	legacyFramePath = "frame"

	keyframePath = "movie/keyframe"
	codecPath    = "movie/codec"

	// codecDelta marks delta-encoded frame data in the codec attribute.
	codecDelta = "delta"
)

// source locates the frame dataset and its sibling entries inside one open
// container.
type source struct {
	r  *container.Reader
	ds *container.Dataset

	frames, height, width int
	frameSize             int

	codecKey    string
	keyframeKey string
}

// openSource resolves the frame dataset. The schema version decides the
// primary location, with the other generation's path as fallback so movies
// stay readable even when the version marker is absent or wrong.
func openSource(r *container.Reader) (*source, error) {
	primary := framePath
	if version, err := schema.Detect(r); err == nil {
		if key := version.Keys().FrameDataset; key != "" {
			primary = key
		}
	}

	ds, err := r.Dataset(primary)
	if err != nil {
		alt := legacyFramePath
		if primary == legacyFramePath {
			alt = framePath
		}

		altDS, altErr := r.Dataset(alt)
		if altErr != nil {
			return nil, err
		}
		ds = altDS
	}

	dims := ds.Dims()
	if len(dims) != 3 {
		return nil, fmt.Errorf("%w: frame dataset %q has %d dims, want (frames, height, width)",
			errs.ErrInvalidDimensions, ds.Path(), len(dims))
	}

	s := &source{
		r:      r,
		ds:     ds,
		frames: int(dims[0]), //nolint: gosec
		height: int(dims[1]), //nolint: gosec
		width:  int(dims[2]), //nolint: gosec
	}
	s.frameSize = s.height * s.width
	s.codecKey = sibling(ds.Path(), "codec")
	s.keyframeKey = sibling(ds.Path(), "keyframe")

	return s, nil
}

// sibling replaces the last path segment, so the codec and keyframe
// entries are found next to wherever the frame dataset lives.
func sibling(path, name string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i+1] + name
	}

	return name
}

// explicitCodec reads the codec attribute next to the frame dataset. The
// bool result reports whether a usable marker exists.
func (s *source) explicitCodec() (string, bool) {
	attr, err := s.r.Attr(s.codecKey)
	if err != nil || attr.IsArray {
		return "", false
	}

	val, ok := attr.Value.(string)

	return val, ok
}

// detectDelta decides whether the stored frames are delta encoded.
//
// An explicit codec attribute settles it either way. Without one, the
// legacy spread heuristic applies: a raw first frame has far less spread
// than a wrapped difference frame, so a low std(f0)/std(f1) ratio reads as
// delta encoding.
func (s *source) detectDelta(f0, f1 []uint16) (delta, explicit bool) {
	if val, ok := s.explicitCodec(); ok {
		return val == codecDelta, true
	}

	if len(f0) == 0 || len(f1) == 0 {
		return false, false
	}

	s1 := std(f1)
	if s1 == 0 {
		return false, false
	}

	return std(f0)/s1 < deltaStdRatio, false
}

// lastKeyframe returns the final stored keyframe, or nil when no keyframe
// dataset with a compatible frame shape exists.
func (s *source) lastKeyframe() ([]uint16, error) {
	kf, err := s.r.Dataset(s.keyframeKey)
	if err != nil {
		return nil, nil
	}

	vals, err := kf.Uint16s()
	if err != nil {
		return nil, err
	}
	if len(vals) < s.frameSize || len(vals)%s.frameSize != 0 {
		return nil, nil
	}

	return vals[len(vals)-s.frameSize:], nil
}

func (s *source) corrupt(reason string, cause error) *errs.CorruptDataError {
	return &errs.CorruptDataError{
		Path:    s.r.Origin(),
		Dataset: s.ds.Path(),
		Chunk:   -1,
		Reason:  "movie decompression failed: " + reason,
		Err:     cause,
	}
}

// ReadFrom decodes the whole movie eagerly.
//
// Delta-encoded frames are reconstructed and the final frame is checked
// against the stored keyframe. With an explicit codec marker a missing or
// mismatching keyframe is corruption. When only the heuristic suggested
// delta encoding, the stored frames are returned unchanged instead, since
// a genuinely low-variance movie can trip it.
//
// Parameters:
//   - r: open container to read the movie from
//
// Returns:
//   - *Movie: the decoded frame stack
//   - error: MissingKeyError when no frame dataset exists, CorruptDataError
//     when the frame data cannot be decoded
func ReadFrom(r *container.Reader) (*Movie, error) {
	src, err := openSource(r)
	if err != nil {
		return nil, err
	}

	pix, err := src.ds.Uint16s()
	if err != nil {
		return nil, err
	}
	if len(pix) != src.frames*src.frameSize {
		return nil, src.corrupt(fmt.Sprintf("%d stored values, dims require %d",
			len(pix), src.frames*src.frameSize), nil)
	}

	m := &Movie{frames: src.frames, height: src.height, width: src.width, pix: pix}

	var f0, f1 []uint16
	if src.frames >= 2 {
		f0, f1 = pix[:src.frameSize], pix[src.frameSize:2*src.frameSize]
	}

	delta, explicit := src.detectDelta(f0, f1)
	if !delta {
		return m, nil
	}

	want, err := src.lastKeyframe()
	if err != nil || want == nil {
		if explicit {
			return nil, src.corrupt("keyframe dataset missing or unreadable", err)
		}

		return m, nil
	}

	decodeFrames(pix, src.frameSize)
	if !slices.Equal(pix[len(pix)-src.frameSize:], want) {
		if explicit {
			return nil, src.corrupt("reconstructed last frame does not match the keyframe", nil)
		}

		// Heuristic misfire: put the stored values back untouched.
		encodeFrames(pix, src.frameSize)
	}

	return m, nil
}

// StreamFrom iterates the movie lazily off the chunk sequence, holding one
// frame of state instead of the whole stack.
//
// Delta detection works as in ReadFrom. For delta-encoded streams the
// keyframe comparison can only run once the final frame is assembled, so a
// mismatch there surfaces as a CorruptDataError in place of the last frame
// even when the heuristic chose the encoding; ReadFrom is the fallback for
// consumers that want the forgiving behavior. Every range over the
// sequence restarts from the first chunk.
func StreamFrom(r *container.Reader) iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		src, err := openSource(r)
		if err != nil {
			yield(Frame{}, err)
			return
		}

		st := newStream(src)
		if err := st.prime(); err != nil {
			yield(Frame{}, err)
			return
		}

		cur := make([]uint16, src.frameSize)
		for idx := range src.frames {
			stored, err := st.next()
			if err != nil {
				yield(Frame{}, err)
				return
			}

			if st.delta && idx > 0 {
				for p, v := range stored {
					cur[p] += v
				}
			} else {
				copy(cur, stored)
			}

			if st.verify != nil && idx == src.frames-1 && !slices.Equal(cur, st.verify) {
				yield(Frame{}, src.corrupt("reconstructed last frame does not match the keyframe", nil))
				return
			}

			if !yield(Frame{Index: idx, Pix: slices.Clone(cur)}, nil) {
				return
			}
		}
	}
}

// stream assembles stored frames chunk by chunk, carrying leftover values
// across chunk boundaries.
type stream struct {
	src    *source
	delta  bool
	verify []uint16

	head     [][]uint16
	chunk    int
	leftover []uint16
	buf      []uint16
}

func newStream(src *source) *stream {
	return &stream{src: src}
}

// prime decides the codec before the first yield. The spread heuristic
// needs the first two stored frames, so those may be assembled ahead of
// time and replayed by next.
func (s *stream) prime() error {
	var f0, f1 []uint16
	if _, ok := s.src.explicitCodec(); !ok && s.src.frames >= 2 {
		first, err := s.assemble()
		if err != nil {
			return err
		}
		f0 = slices.Clone(first)

		second, err := s.assemble()
		if err != nil {
			return err
		}
		f1 = slices.Clone(second)

		s.head = [][]uint16{f0, f1}
	}

	delta, explicit := s.src.detectDelta(f0, f1)
	s.delta = delta
	if !delta {
		return nil
	}

	want, err := s.src.lastKeyframe()
	if err != nil || want == nil {
		if explicit {
			return s.src.corrupt("keyframe dataset missing or unreadable", err)
		}

		// Nothing to check a heuristic guess against, so stream the
		// stored values untouched.
		s.delta = false

		return nil
	}

	s.verify = want

	return nil
}

// next returns the next stored frame, replaying frames buffered by prime
// before touching further chunks. The returned slice is only valid until
// the following call.
func (s *stream) next() ([]uint16, error) {
	if len(s.head) > 0 {
		f := s.head[0]
		s.head = s.head[1:]

		return f, nil
	}

	return s.assemble()
}

func (s *stream) assemble() ([]uint16, error) {
	size := s.src.frameSize
	if cap(s.buf) < size {
		s.buf = make([]uint16, 0, size)
	}
	s.buf = s.buf[:0]

	for len(s.buf) < size {
		if len(s.leftover) == 0 {
			if s.chunk >= s.src.ds.NumChunks() {
				return nil, s.src.corrupt("frame data ends before the last frame", nil)
			}

			vals, err := s.src.ds.Uint16sAt(s.chunk)
			if err != nil {
				return nil, err
			}
			s.chunk++
			s.leftover = vals
		}

		n := min(size-len(s.buf), len(s.leftover))
		s.buf = append(s.buf, s.leftover[:n]...)
		s.leftover = s.leftover[n:]
	}

	return s.buf, nil
}
