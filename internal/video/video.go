package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Sink consumes rendered frames in strict index order: Open once, then one
// WriteFrame per frame, then Close. Frame geometry must match the opened
// geometry exactly.
type Sink interface {
	Open(w, h int, frameRate float64) error
	WriteFrame(frame *image.RGBA) error
	Close() error
}

// Aborter is an optional Sink upgrade. Sinks that can discard partial
// output implement it; a failed render calls Abort instead of Close so no
// half-written artifact survives claiming success.
type Aborter interface {
	Abort() error
}

// FFmpegSink pipes raw RGBA frames into an ffmpeg process that encodes
// H.264. No intermediate files touch the disk.
type FFmpegSink struct {
	Path    string
	Encoder string // ffmpeg -c:v name; empty picks libx264
	Quality int    // CRF for libx264, scaled bitrate for hardware encoders

	ctx   context.Context
	cmd   *exec.Cmd
	stdin io.WriteCloser
	log   bytes.Buffer
	w, h  int
}

// NewFFmpegSink prepares an encoder sink for the given output file. The
// context kills the ffmpeg process when cancelled.
func NewFFmpegSink(ctx context.Context, path, encoder string, quality int) *FFmpegSink {
	if encoder == "" {
		encoder = "libx264"
	}
	if quality <= 0 {
		quality = 23
	}
	return &FFmpegSink{Path: path, Encoder: encoder, Quality: quality, ctx: ctx}
}

func (s *FFmpegSink) Open(w, h int, frameRate float64) error {
	if s.cmd != nil {
		return fmt.Errorf("sink already open")
	}
	s.w, s.h = w, h

	cmd := exec.CommandContext(s.ctx, "ffmpeg", s.buildArgs(w, h, frameRate)...)
	cmd.Stdout = &s.log
	cmd.Stderr = &s.log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	return nil
}

func (s *FFmpegSink) buildArgs(w, h int, frameRate float64) []string {
	fps := strconv.FormatFloat(frameRate, 'f', -1, 64)
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", w, h),
		"-framerate", fps,
		"-i", "-",
		"-r", fps,
		"-pix_fmt", "yuv420p",
		"-c:v", s.Encoder,
	}

	switch s.Encoder {
	case "h264_videotoolbox":
		// VideoToolbox does not take -q:v reliably, steer by bitrate.
		args = append(args, "-b:v", fmt.Sprintf("%dk", s.Quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", strconv.Itoa(s.Quality))
	default: // libx264
		args = append(args, "-crf", strconv.Itoa(s.Quality), "-preset", "medium")
	}

	return append(args, s.Path)
}

func (s *FFmpegSink) WriteFrame(frame *image.RGBA) error {
	if s.cmd == nil {
		return fmt.Errorf("sink not open")
	}
	if got := frame.Rect; got.Dx() != s.w || got.Dy() != s.h {
		return fmt.Errorf("frame is %dx%d, sink opened for %dx%d", got.Dx(), got.Dy(), s.w, s.h)
	}
	if err := writeRawRGBA(s.stdin, frame); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

func (s *FFmpegSink) Close() error {
	if s.cmd == nil {
		return nil
	}
	s.stdin.Close()
	err := s.cmd.Wait()
	s.cmd = nil
	if err != nil {
		return fmt.Errorf("ffmpeg wait error: %v, output: %s", err, s.log.String())
	}
	return nil
}

// Abort kills the encoder and removes the partial output file.
func (s *FFmpegSink) Abort() error {
	if s.cmd == nil {
		return nil
	}
	s.stdin.Close()
	s.cmd.Process.Kill()
	s.cmd.Wait()
	s.cmd = nil
	return os.Remove(s.Path)
}

// writeRawRGBA streams the pixel array as packed RGBA, re-laying it out
// only when the stride or origin does not match the packed format ffmpeg
// expects.
func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min.X != 0 || bounds.Min.Y != 0 {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}

// ForPath picks a sink from the output path: animated GIF for .gif, a PNG
// sequence for .png outputs, patterns containing a %d verb or bare
// directories, and the ffmpeg encoder for everything else.
func ForPath(ctx context.Context, path, encoder string, quality int) Sink {
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".gif":
		return &GIFSink{Path: path}
	case strings.Contains(path, "%"):
		return &PNGSink{Dir: filepath.Dir(path), Pattern: filepath.Base(path)}
	case ext == ".png":
		return &PNGSink{Dir: filepath.Dir(path), Pattern: numberedPattern(filepath.Base(path))}
	case ext == "":
		return &PNGSink{Dir: path}
	default:
		return NewFFmpegSink(ctx, path, encoder, quality)
	}
}

// numberedPattern turns "shot.png" into "shot_%06d.png".
func numberedPattern(base string) string {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_%06d" + filepath.Ext(base)
}
