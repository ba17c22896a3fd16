package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/forPelevin/reelcut/internal/config"
	"github.com/forPelevin/reelcut/internal/content"
	"github.com/forPelevin/reelcut/internal/domain/highlights"
	"github.com/forPelevin/reelcut/internal/httpapi"
	"github.com/forPelevin/reelcut/internal/jobs"
	"github.com/forPelevin/reelcut/internal/ports"
	"github.com/forPelevin/reelcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/reelcut/internal/ports/adapters/filestore"
	"github.com/forPelevin/reelcut/internal/ports/adapters/gemini"
	"github.com/forPelevin/reelcut/internal/ports/adapters/openrouter"
	"github.com/forPelevin/reelcut/internal/types"
	"github.com/forPelevin/reelcut/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

// Components is the wired object graph shared by the CLI commands.
type Components struct {
	Store   *filestore.Store
	Content *content.Generator
	Usecase usecase.Usecase
}

// Build wires adapters and the orchestrator with outputs under outDir.
func Build(cfg config.Config, outDir string, log logrus.FieldLogger) (Components, error) {
	llm, err := buildTextGenerator(cfg)
	if err != nil {
		return Components{}, err
	}
	if llm == nil {
		log.Warn("remote text generator is not configured, using local fallback content")
	} else {
		log.WithField("provider", cfg.Generator.Provider).Info("remote text generator configured")
	}

	store := filestore.New(outDir)
	gen := content.New(llm, log)
	uc := usecase.New(usecase.Deps{
		Video:   ffmpeg.New(cfg.Tools.FFmpeg, cfg.Tools.FFprobe),
		Content: gen,
		Store:   store,
		Scorer:  highlights.NewTimeSeededScorer(),
		Log:     log,
		NewID:   NewJobID,
	})
	return Components{Store: store, Content: gen, Usecase: uc}, nil
}

// buildTextGenerator returns a nil interface when no remote generator is configured.
func buildTextGenerator(cfg config.Config) (ports.TextGenerator, error) {
	if !cfg.HasGenerator() {
		return nil, nil
	}
	g := cfg.Generator
	switch g.Provider {
	case config.ProviderGemini:
		a, err := gemini.New(g.APIKey, g.Model, g.BaseURL, g.Timeout)
		if err != nil {
			return nil, err
		}
		return a, nil
	case config.ProviderOpenRouter:
		if err := openrouter.ValidateBaseURL(g.BaseURL, g.AllowedHosts); err != nil {
			return nil, err
		}
		return openrouter.New(g.APIKey, g.Model, g.BaseURL, g.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", g.Provider)
	}
}

// Config describes one synchronous run of the process command.
type Config struct {
	InputMP4    string
	OutDir      string
	DurationSec int
	Hashtags    bool
	ContentPlan bool
	Title       string
	Description string
}

func (c Config) Validate() error {
	if c.InputMP4 == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputMP4); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.DurationSec <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	return nil
}

// Run processes one video in the foreground and writes manifest.json next to
// the job's clips. It returns the manifest path.
func Run(ctx context.Context, app config.Config, cfg Config, log logrus.FieldLogger) (string, error) {
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = app.Storage.OutputDir
	}
	c, err := Build(app, outDir, log)
	if err != nil {
		return "", err
	}

	res, err := c.Usecase.Run(ctx, usecase.Input{
		InputMP4:    cfg.InputMP4,
		DurationSec: cfg.DurationSec,
		Hashtags:    cfg.Hashtags,
		ContentPlan: cfg.ContentPlan,
		Title:       cfg.Title,
		Description: cfg.Description,
	})
	if err != nil {
		return "", err
	}

	manifestPath := filepath.Join(outDir, res.Job.ID, "manifest.json")
	if err := writeManifest(manifestPath, res.Manifest); err != nil {
		return "", err
	}
	log.WithFields(logrus.Fields{"job_id": res.Job.ID, "clips": len(res.Manifest.Clips)}).
		Infof("manifest written: %s", manifestPath)
	return manifestPath, nil
}

func writeManifest(path string, m types.Manifest) error {
	if m.Clips == nil {
		m.Clips = []types.ManifestClip{}
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// Serve runs the HTTP server with background workers until ctx is done, then
// drains in-flight jobs.
func Serve(ctx context.Context, app config.Config, log logrus.FieldLogger) error {
	c, err := Build(app, app.Storage.OutputDir, log)
	if err != nil {
		return err
	}
	for _, dir := range []string{app.Storage.OutputDir, app.Server.UploadDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	d := jobs.NewDispatcher(c.Usecase, c.Store, log, app.Server.Workers, app.Server.QueueSize)
	d.Run()

	srv := httpapi.New(httpapi.Deps{
		Jobs:           d,
		Store:          c.Store,
		Content:        c.Content,
		Log:            log,
		UploadDir:      app.Server.UploadDir,
		MaxUploadBytes: app.MaxUploadBytes(),
		NewJobID:       NewJobID,
	})

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", app.Server.Addr).Info("http server listening")
		errCh <- srv.Listen(app.Server.Addr)
	}()

	select {
	case err := <-errCh:
		d.Stop()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	d.Stop()
	return nil
}

// NewJobID is the normalized upload base name plus 32 random hex characters.
func NewJobID(fileName string) string {
	name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	name = normalizePathSegment(name)
	if name == "" {
		name = "video"
	}
	return name + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ensure adapters implement ports
var (
	_ ports.VideoTool        = (*ffmpeg.Adapter)(nil)
	_ ports.TextGenerator    = (*gemini.Adapter)(nil)
	_ ports.TextGenerator    = (*openrouter.Adapter)(nil)
	_ ports.JobStore         = (*filestore.Store)(nil)
	_ ports.ContentGenerator = (*content.Generator)(nil)
	_ jobs.Runner            = usecase.Usecase{}
	_ httpapi.Jobs           = (*jobs.Dispatcher)(nil)
	_ httpapi.Store          = (*filestore.Store)(nil)
)
