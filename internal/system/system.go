package system

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// InitResourceLimits raises the soft open-file limit so long PNG sequences
// do not trip the conservative defaults on macOS.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logrus.Warnf("could not read file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logrus.Warnf("could not raise file limit: %v", err)
	}
}

// Workers picks the render worker count: one per logical CPU, capped so the
// frame buffers held in flight fit comfortably in available memory.
func Workers(frameW, frameH int) int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		n = runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}

	frameBytes := uint64(frameW) * uint64(frameH) * 4
	if frameBytes == 0 {
		return n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		// Each worker holds roughly four frame-sized buffers: its output,
		// scratch, and a share of the reorder window.
		maxByMem := (vm.Available / 2) / (frameBytes * 4)
		if maxByMem < 1 {
			maxByMem = 1
		}
		if uint64(n) > maxByMem {
			n = int(maxByMem)
		}
	}
	return n
}

// BestH264Encoder probes ffmpeg for a hardware H.264 encoder, preferring
// VideoToolbox, then NVENC, falling back to libx264.
func BestH264Encoder() string {
	probed := []string{"h264_videotoolbox", "h264_nvenc"}

	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err == nil {
		for _, enc := range probed {
			if strings.Contains(string(out), enc) {
				return enc
			}
		}
	}
	return "libx264"
}

// FindLatestImage returns the most recently modified image file in the
// directory (or in the directory of the given file).
func FindLatestImage(path string) (string, error) {
	return findLatest(path, []string{".jpg", ".jpeg", ".png"}, "images")
}

// FindLatestPDF returns the most recently modified PDF in the directory.
func FindLatestPDF(dir string) (string, error) {
	return findLatest(dir, []string{".pdf"}, "PDF files")
}

// FindLatestSource returns the most recently modified renderable input,
// image or PDF, in the directory.
func FindLatestSource(dir string) (string, error) {
	return findLatest(dir, []string{".jpg", ".jpeg", ".png", ".pdf"}, "source files")
}

func findLatest(path string, extensions []string, kind string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	searchDir := path
	if !fi.IsDir() {
		searchDir = filepath.Dir(path)
	}

	files, err := os.ReadDir(searchDir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := strings.ToLower(f.Name())
		matched := false
		for _, ext := range extensions {
			if strings.HasSuffix(name, ext) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(searchDir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s found in %s", kind, searchDir)
	}
	return latestFile, nil
}
