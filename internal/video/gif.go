package video

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"math"
	"os"
)

// GIFSink collects frames into an animated GIF, quantizing each one to the
// Plan9 palette with Floyd-Steinberg dithering. Frames accumulate in memory
// and the file is written on Close, so keep sequences short.
type GIFSink struct {
	Path string

	g     gif.GIF
	delay int // per frame, 100ths of a second
	w, h  int
}

func (s *GIFSink) Open(w, h int, frameRate float64) error {
	s.w, s.h = w, h
	s.delay = int(math.Round(100 / frameRate))
	if s.delay < 1 {
		s.delay = 1
	}
	s.g = gif.GIF{LoopCount: 0}
	return nil
}

func (s *GIFSink) WriteFrame(frame *image.RGBA) error {
	if got := frame.Rect; got.Dx() != s.w || got.Dy() != s.h {
		return fmt.Errorf("frame is %dx%d, sink opened for %dx%d", got.Dx(), got.Dy(), s.w, s.h)
	}

	pimg := image.NewPaletted(image.Rect(0, 0, s.w, s.h), palette.Plan9)
	draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), frame, frame.Rect.Min)

	s.g.Image = append(s.g.Image, pimg)
	s.g.Delay = append(s.g.Delay, s.delay)
	return nil
}

func (s *GIFSink) Close() error {
	if len(s.g.Image) == 0 {
		return fmt.Errorf("no frames written")
	}
	f, err := os.Create(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &s.g)
}

// Abort drops the buffered frames; nothing has touched the disk yet.
func (s *GIFSink) Abort() error {
	s.g = gif.GIF{}
	return nil
}
