package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSink writes every frame as a numbered PNG file in a directory. Useful
// for inspecting individual frames or feeding an external encoder.
type PNGSink struct {
	Dir     string
	Pattern string // fmt pattern with one %d verb; defaults to frame_%06d.png

	enc     png.Encoder
	index   int
	written []string
}

func (s *PNGSink) Open(w, h int, frameRate float64) error {
	if s.Pattern == "" {
		s.Pattern = "frame_%06d.png"
	}
	s.enc = png.Encoder{CompressionLevel: png.BestSpeed}
	s.index = 0
	s.written = s.written[:0]
	return os.MkdirAll(s.Dir, 0755)
}

func (s *PNGSink) WriteFrame(frame *image.RGBA) error {
	path := filepath.Join(s.Dir, fmt.Sprintf(s.Pattern, s.index))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.enc.Encode(f, frame); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.written = append(s.written, path)
	s.index++
	return nil
}

func (s *PNGSink) Close() error {
	return nil
}

// Abort removes every frame written so far.
func (s *PNGSink) Abort() error {
	var first error
	for _, p := range s.written {
		if err := os.Remove(p); err != nil && first == nil {
			first = err
		}
	}
	s.written = s.written[:0]
	return first
}
