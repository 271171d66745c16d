package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// FFProbeDurationProber измеряет длительность аудио через ffprobe.
type FFProbeDurationProber struct {
	binPath string
}

func NewFFProbeDurationProber(binPath string) *FFProbeDurationProber {
	if binPath == "" {
		binPath = "ffprobe"
	}
	return &FFProbeDurationProber{binPath: binPath}
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *FFProbeDurationProber) Probe(ctx context.Context, path string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, p.binPath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	seconds, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned no duration for %s: %w", path, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
