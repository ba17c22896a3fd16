//go:build integration

package itest

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func probeDurationSeconds(mp4Path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mp4Path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func probeVideoSize(mp4Path string) (int, int, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0:s=x",
		mp4Path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	var w, h int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(b)), "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("parse size %q: %w", string(b), err)
	}
	return w, h, nil
}

// makeFixture renders a test pattern with a tone of the given length.
func makeFixture(t *testing.T, path string, seconds int) {
	t.Helper()
	d := strconv.Itoa(seconds)
	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi", "-i", "testsrc=size=640x360:rate=25:duration="+d,
		"-f", "lavfi", "-i", "sine=frequency=440:duration="+d,
		"-shortest",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		path,
	)
	b, err := ff.CombinedOutput()
	require.NoError(t, err, "ffmpeg fixture failed\n%s", b)
}
