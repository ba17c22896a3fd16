package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/reelcut/internal/ports"
	"github.com/forPelevin/reelcut/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// RenderClip re-encodes dur of inPath starting at start into a 1280x720 H.264/AAC file.
func (a *Adapter) RenderClip(ctx context.Context, inPath string, start, dur time.Duration, outMP4 string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg, clipArgs(inPath, start, dur, outMP4)...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return &ports.TranscodeError{Op: "ffmpeg render clip", Output: string(b), Err: err}
	}
	return nil
}

func clipArgs(inPath string, start, dur time.Duration, outMP4 string) []string {
	return []string{
		"-y",
		"-ss", fmtSeconds(start),
		"-i", inPath,
		"-t", fmtSeconds(dur),
		"-c:v", types.ClipVideoCodec,
		"-c:a", types.ClipAudioCodec,
		"-vf", fmt.Sprintf("scale=%d:%d", types.ClipWidth, types.ClipHeight),
		outMP4,
	}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func (a *Adapter) Probe(ctx context.Context, inPath string) (types.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inPath,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	b, err := cmd.Output()
	if err != nil {
		return types.VideoInfo{}, &ports.ProbeError{Path: inPath, Output: stderr.String(), Err: err}
	}
	info, err := parseProbe(b)
	if err != nil {
		return types.VideoInfo{}, &ports.ProbeError{Path: inPath, Output: string(b), Err: err}
	}
	return info, nil
}

func parseProbe(b []byte) (types.VideoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return types.VideoInfo{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	s := strings.TrimSpace(out.Format.Duration)
	if s == "" {
		return types.VideoInfo{}, errors.New("ffprobe reported no duration")
	}
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return types.VideoInfo{}, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if sec < 0 {
		sec = 0
	}
	var w, h int
	for _, st := range out.Streams {
		if st.CodecType == "video" {
			w, h = st.Width, st.Height
			break
		}
	}
	return types.NewVideoInfo(time.Duration(sec*float64(time.Second)), w, h), nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
