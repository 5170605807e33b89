package debug

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-advance/advance/video"
)

// TakeSnapshot handles the snapshot action for backends, writing into the
// working directory.
func TakeSnapshot(frame *video.FrameBuffer) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}
	if _, err := SaveFramePNGToDir(frame, "advance_snapshot", ""); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}

// SaveFramePNGToDir saves a framebuffer as PNG with timestamp to a specific
// directory and returns the file path.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.png", baseName, timestamp)

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	if err := SaveFramePNG(frame, filePath); err != nil {
		return "", err
	}

	slog.Info("Snapshot saved", "path", filePath,
		"size", fmt.Sprintf("%dx%d", video.ScreenWidth, video.ScreenHeight), "format", "PNG")
	return filePath, nil
}

// SaveFramePNG encodes the frame to path.
func SaveFramePNG(frame *video.FrameBuffer, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	if err := png.Encode(file, frame.Image()); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return file.Close()
}
