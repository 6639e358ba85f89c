package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/kenburns/internal/config"
	"github.com/ivlev/kenburns/internal/director"
	"github.com/ivlev/kenburns/internal/engine"
	"github.com/ivlev/kenburns/internal/source"
	"github.com/ivlev/kenburns/internal/system"
	"github.com/ivlev/kenburns/internal/video"
)

func main() {
	inputPtr := flag.String("input", "", "image, PDF, directory, qr:<text> or gradient:<palette> (default: newest file in input/)")
	outPtr := flag.String("out", "", "output path: .mp4, .gif, .png pattern or directory (default: output/<name>_<timestamp>.mp4)")
	presetPtr := flag.String("preset", "", "frame preset: 16:9, 9:16 (Shorts/TikTok), 1:1")
	widthPtr := flag.Int("width", 1920, "frame width")
	heightPtr := flag.Int("height", 1080, "frame height")
	durationPtr := flag.Float64("duration", 5, "seconds per page")
	fpsPtr := flag.Float64("fps", 30, "frames per second")
	zoomPtr := flag.String("zoom", "center", "zoom mode: center, top-left, top-right, bottom-left, bottom-right, random, auto, or out-<mode>")
	depthPtr := flag.Float64("depth", 0.5, "viewport scale at the tight end of the move (0..1]")
	warpPtr := flag.String("warp", "sine", "time warp preset: linear, sine, quad, cubic, bounce, ...")
	strategyPtr := flag.String("strategy", string(config.StrategyGrid), "sampling strategy: grid, nearest-crop, translate")
	antialiasPtr := flag.Bool("antialias", true, "prefilter the canvas when zoomed out")
	kernelPtr := flag.Float64("kernel", 1, "prefilter kernel size multiplier")
	workersPtr := flag.Int("workers", 0, "sampling workers (0 = auto)")
	scenarioPtr := flag.String("scenario", "", "render from a scenario file (\"latest\" picks the newest)")
	writeScenarioPtr := flag.Bool("write-scenario", false, "plan shots and write a scenario file instead of rendering")
	scenarioDirPtr := flag.String("scenario-dir", "scenarios", "directory for scenario files")
	seedPtr := flag.Int64("seed", 0, "seed for random zoom modes (0 = time-based)")
	pagePtr := flag.Int("page", 0, "render a single page (1-based, 0 = all)")
	encoderPtr := flag.String("encoder", "", "h264 encoder (default: best available)")
	qualityPtr := flag.Int("quality", 0, "encoder quality (0 = auto per encoder)")
	previewPtr := flag.Int("preview", 0, "print N preview viewports for the first page and exit")
	verbosePtr := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbosePtr {
		log.SetLevel(logrus.DebugLevel)
	}

	system.InitResourceLimits()
	for _, d := range []string{"input", "output"} {
		os.MkdirAll(d, 0o755)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	width, height := *widthPtr, *heightPtr
	switch *presetPtr {
	case "":
	case "16:9":
		width, height = 1920, 1080
	case "9:16":
		width, height = 1080, 1920
	case "1:1":
		width, height = 1080, 1080
	default:
		log.Fatalf("unknown preset %q", *presetPtr)
	}

	inputPath := *inputPtr
	if inputPath == "" {
		latest, err := system.FindLatestSource("input")
		if err != nil {
			log.Fatalf("no input given and %v", err)
		}
		inputPath = latest
		log.Infof("using newest source: %s", inputPath)
	}

	// Rasterize with headroom for the deepest zoom, so minification
	// stays the common case.
	depth := *depthPtr
	if depth <= 0 || depth > 1 {
		log.Fatalf("depth must be in (0, 1], got %v", depth)
	}
	targetPx := int(float64(max(width, height)) / depth)

	src, err := source.ForSpec(inputPath, targetPx)
	if err != nil {
		log.Fatalf("source error: %v", err)
	}
	defer src.Close()

	pageCount := src.PageCount()
	if pageCount == 0 {
		log.Fatal("source has no pages")
	}
	if *pagePtr < 0 || *pagePtr > pageCount {
		log.Fatalf("page %d out of range (source has %d)", *pagePtr, pageCount)
	}

	dir := director.NewDirector(width, height)
	dir.ZoomDepth = depth
	if *seedPtr != 0 {
		dir.Seed(*seedPtr)
	}

	if *writeScenarioPtr {
		scenario, err := dir.Plan(src, *zoomPtr, *durationPtr, *warpPtr)
		if err != nil {
			log.Fatalf("planning failed: %v", err)
		}
		path := director.GenerateScenarioPath(*scenarioDirPtr)
		if err := director.WriteScenario(scenario, path); err != nil {
			log.Fatalf("writing scenario failed: %v", err)
		}
		log.Infof("scenario written: %s", path)
		return
	}

	shots, err := planShots(dir, src, *scenarioPtr, *scenarioDirPtr, *zoomPtr, *durationPtr, *warpPtr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	encoder := *encoderPtr
	if encoder == "" {
		encoder = system.BestH264Encoder()
		if encoder != "libx264" {
			log.Infof("hardware encoder detected: %s", encoder)
		}
	}
	quality := *qualityPtr
	if quality == 0 {
		switch encoder {
		case "h264_videotoolbox":
			quality = 75
		case "h264_nvenc":
			quality = 28
		default:
			quality = 23
		}
	}

	outPath := *outPtr
	if outPath == "" {
		name := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)), " ", "_")
		if i := strings.IndexByte(name, ':'); i >= 0 {
			name = name[:i] // qr:/gradient: specs keep the scheme only
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		outPath = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", name, timestamp))
	}

	rendered := 0
	for _, shot := range shots {
		if *pagePtr > 0 && shot.Page != *pagePtr-1 {
			continue
		}
		if shot.Page < 0 || shot.Page >= pageCount {
			log.Fatalf("scenario references page %d, source has %d", shot.Page, pageCount)
		}

		canvas, err := src.Canvas(shot.Page)
		if err != nil {
			log.Fatalf("page %d: %v", shot.Page, err)
		}

		cfg := config.NewDefault(canvas.Width(), canvas.Height())
		cfg.Width, cfg.Height = width, height
		cfg.Duration = shot.Duration
		cfg.FrameRate = *fpsPtr
		cfg.Start, cfg.End = shot.Start, shot.End
		cfg.WarpName = shot.Warp
		if cfg.WarpName == "" {
			cfg.WarpName = *warpPtr
		}
		cfg.Strategy = config.Strategy(*strategyPtr)
		cfg.Antialias = *antialiasPtr
		cfg.FilterKernelSize = *kernelPtr
		cfg.Workers = *workersPtr

		seq := engine.NewSequence(canvas, cfg, log.WithField("page", shot.Page+1))

		if *previewPtr > 0 {
			rects, err := seq.PreviewRects(*previewPtr)
			if err != nil {
				log.Fatalf("preview failed: %v", err)
			}
			for i, r := range rects {
				fmt.Printf("page %d preview %d/%d: x=%.2f y=%.2f scale=%.4f\n", shot.Page+1, i+1, len(rects), r.X, r.Y, r.Scale)
			}
			return
		}

		target := pageOutput(outPath, shot.Page, len(shots))
		sink := video.ForPath(ctx, target, encoder, quality)
		if err := seq.Render(ctx, sink); err != nil {
			log.Fatalf("page %d: %v", shot.Page+1, err)
		}
		log.Infof("page %d rendered: %s", shot.Page+1, target)
		rendered++
	}

	if rendered == 0 {
		log.Fatal("nothing rendered; check -page against the source")
	}
}

// planShots resolves the shot list: an explicit scenario wins, "latest"
// picks the newest file, and otherwise one shot per page is planned on
// the fly.
func planShots(dir *director.Director, src source.Source, scenarioArg, scenarioDir, zoom string, duration float64, warp string) ([]director.ShotSpec, error) {
	if scenarioArg == "" {
		scenario, err := dir.Plan(src, zoom, duration, warp)
		if err != nil {
			return nil, fmt.Errorf("planning failed: %w", err)
		}
		return scenario.Shots, nil
	}

	path := scenarioArg
	if scenarioArg == "latest" {
		latest, err := director.FindLatestScenario(scenarioDir)
		if err != nil {
			return nil, err
		}
		path = latest
	}
	scenario, err := director.ReadScenario(path)
	if err != nil {
		return nil, err
	}
	logrus.Infof("using scenario: %s", path)
	return scenario.Shots, nil
}

// pageOutput derives a per-page output path when a run produces more
// than one file.
func pageOutput(path string, page, total int) string {
	if total <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_p%02d%s", strings.TrimSuffix(path, ext), page+1, ext)
}
