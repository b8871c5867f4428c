package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		slog.Error("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err)
	} else {
		slog.Debug("exec ok",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len())
	}

	return out.Bytes(), errb.Bytes(), err
}

// TesseractConfig configures the OCR binary invocation.
type TesseractConfig struct {
	Binary      string `json:"binary,omitempty"`       // default "tesseract"
	Language    string `json:"language,omitempty"`     // default "eng"
	TessdataDir string `json:"tessdata_dir,omitempty"` // optional
	PSM         int    `json:"psm,omitempty"`          // 0 = tesseract default
	OEM         int    `json:"oem,omitempty"`          // 0 = tesseract default
	WorkDir     string `json:"work_dir,omitempty"`     // default os.TempDir()
}

// TesseractRecognizer runs the tesseract binary over document captures.
// The binary availability check runs lazily exactly once, so concurrent
// sessions can share a single instance safely.
type TesseractRecognizer struct {
	cfg    TesseractConfig
	runner Runner

	warmupOnce sync.Once
	warmupErr  error
}

func NewTesseractRecognizer(cfg TesseractConfig) *TesseractRecognizer {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	return &TesseractRecognizer{cfg: cfg, runner: execRunner{}}
}

// warmup verifies the binary once per process. Failure is remembered and
// surfaced to every subsequent call.
func (r *TesseractRecognizer) warmup(ctx context.Context) error {
	r.warmupOnce.Do(func() {
		_, _, err := r.runner.Run(ctx, r.cfg.Binary, "--version")
		if err != nil {
			r.warmupErr = fmt.Errorf("tesseract unavailable: %w", err)
			return
		}
		slog.Info("Text recognizer initialized", "binary", r.cfg.Binary, "language", r.cfg.Language)
	})
	return r.warmupErr
}

// RecognizeText writes the capture to a scratch file and runs tesseract
// over it. The output is whatever the engine produced: accuracy and
// determinism are not guaranteed.
func (r *TesseractRecognizer) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if err := r.warmup(ctx); err != nil {
		return "", err
	}

	path := filepath.Join(r.cfg.WorkDir, fmt.Sprintf("capture-%s.img", uuid.NewString()))
	if err := os.WriteFile(path, image, 0o600); err != nil {
		return "", fmt.Errorf("write capture scratch file: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			slog.Warn("failed to remove scratch file", "path", path, "error", err)
		}
	}()

	args := []string{path, "stdout", "-l", r.cfg.Language}
	if r.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", r.cfg.PSM))
	}
	if r.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", r.cfg.OEM))
	}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}

	out, errb, err := r.runner.Run(ctx, r.cfg.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
