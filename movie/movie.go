package movie

import "fmt"

// Movie is a fully decoded frame stack.
type Movie struct {
	frames, height, width int
	pix                   []uint16
}

// FrameCount returns the number of frames.
func (m *Movie) FrameCount() int { return m.frames }

// Height returns the frame height in pixels.
func (m *Movie) Height() int { return m.height }

// Width returns the frame width in pixels.
func (m *Movie) Width() int { return m.width }

// Frame returns frame i as a row-major pixel slice.
//
// The slice aliases the movie's backing store. It panics when i is out of
// range, matching slice indexing semantics.
func (m *Movie) Frame(i int) []uint16 {
	if i < 0 || i >= m.frames {
		panic(fmt.Sprintf("movie: frame index %d out of range [0, %d)", i, m.frames))
	}

	size := m.height * m.width

	return m.pix[i*size : (i+1)*size]
}

// At returns the pixel at row y, column x of the given frame.
func (m *Movie) At(frame, y, x int) uint16 {
	if frame < 0 || frame >= m.frames || y < 0 || y >= m.height || x < 0 || x >= m.width {
		panic(fmt.Sprintf("movie: index (%d, %d, %d) out of range (%d, %d, %d)",
			frame, y, x, m.frames, m.height, m.width))
	}

	return m.pix[(frame*m.height+y)*m.width+x]
}

// Pix returns the backing pixel store, frames x height x width values in
// row-major order.
func (m *Movie) Pix() []uint16 { return m.pix }

// Frame is one streamed image produced by StreamFrom.
type Frame struct {
	// Index is the frame's position in the movie.
	Index int

	// Pix holds height x width pixel values in row-major order. The slice
	// is freshly allocated for every frame.
	Pix []uint16
}
