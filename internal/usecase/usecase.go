package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/forPelevin/reelcut/internal/domain/highlights"
	"github.com/forPelevin/reelcut/internal/ports"
	"github.com/forPelevin/reelcut/internal/types"
)

var ErrInvalidInput = errors.New("invalid input")

const (
	progressScored  = 10
	progressTags    = 20
	progressPlan    = 30
	progressClipsTo = 70
	progressDone    = 100
)

type Deps struct {
	Video   ports.VideoTool
	Content ports.ContentGenerator
	Store   ports.JobStore
	Scorer  highlights.Scorer
	Log     logrus.FieldLogger

	// NewID derives a job ID from the input path. Defaults to a random UUID.
	NewID func(inputPath string) string
	Clock func() time.Time
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Scorer == nil {
		d.Scorer = highlights.NewTimeSeededScorer()
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.NewID == nil {
		d.NewID = func(string) string { return strings.ReplaceAll(uuid.NewString(), "-", "") }
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return Usecase{d: d}
}

type Input struct {
	// JobID is assigned by Start when empty.
	JobID       string
	InputMP4    string
	DurationSec int
	Hashtags    bool
	ContentPlan bool
	Title       string
	Description string

	// Pre-generated enrichment is used verbatim instead of calling the generator.
	PresetHashtags []string
	PresetPlan     []types.PlanEntry
}

func (in Input) Validate() error {
	if strings.TrimSpace(in.InputMP4) == "" {
		return fmt.Errorf("%w: input is empty", ErrInvalidInput)
	}
	if in.DurationSec <= 0 {
		return fmt.Errorf("%w: duration must be > 0, got %d", ErrInvalidInput, in.DurationSec)
	}
	fi, err := os.Stat(in.InputMP4)
	if err != nil {
		return fmt.Errorf("%w: stat input: %v", ErrInvalidInput, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%w: input %s is a directory", ErrInvalidInput, in.InputMP4)
	}
	return nil
}

type Result struct {
	Job         types.Job
	Clips       []types.Clip
	Hashtags    []string
	ContentPlan []types.PlanEntry
	Manifest    types.Manifest
}

// Start validates the input and persists the job's initial state. No job is
// created when validation fails.
func (u Usecase) Start(ctx context.Context, in Input) (types.Job, error) {
	if err := in.Validate(); err != nil {
		return types.Job{}, err
	}
	id := in.JobID
	if id == "" {
		id = u.d.NewID(in.InputMP4)
	}
	job := types.Job{ID: id}

	if err := u.d.Store.InitJob(ctx, id); err != nil {
		return types.Job{}, fmt.Errorf("init job: %w", err)
	}
	if err := u.d.Store.SaveStatus(ctx, id, types.JobStatus{Status: types.StatusProcessing}); err != nil {
		return types.Job{}, fmt.Errorf("save status: %w", err)
	}
	meta := types.Metadata{
		Title:       in.Title,
		Description: in.Description,
		UploadDate:  u.d.Clock().UTC(),
	}
	if err := u.d.Store.SaveMetadata(ctx, id, meta); err != nil {
		return types.Job{}, fmt.Errorf("save metadata: %w", err)
	}
	u.d.Log.WithField("job_id", id).Info("job accepted")
	return job, nil
}

// Process drives an accepted job to completed or error.
func (u Usecase) Process(ctx context.Context, job types.Job, in Input) (Result, error) {
	r := &run{u: u, job: job, log: u.d.Log.WithField("job_id", job.ID)}
	res, err := r.process(ctx, in)
	if err != nil {
		r.fail(ctx, err)
		return res, err
	}
	r.log.WithField("clips", len(res.Clips)).Info("job completed")
	return res, nil
}

// Run is Start followed by Process.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	job, err := u.Start(ctx, in)
	if err != nil {
		return Result{}, err
	}
	return u.Process(ctx, job, in)
}

type run struct {
	u        Usecase
	job      types.Job
	log      logrus.FieldLogger
	progress int
}

func (r *run) process(ctx context.Context, in Input) (Result, error) {
	d := r.u.d
	res := Result{Job: r.job, Manifest: types.Manifest{JobID: r.job.ID, Input: in.InputMP4}}

	info, err := d.Video.Probe(ctx, in.InputMP4)
	if err != nil {
		return res, err
	}
	r.log.WithFields(logrus.Fields{
		"duration": info.Duration.String(),
		"width":    info.Width,
		"height":   info.Height,
	}).Debug("probed input")

	hls := highlights.Select(info, in.DurationSec, d.Scorer)
	if err := r.step(ctx, progressScored); err != nil {
		return res, err
	}
	if len(hls) == 0 {
		r.log.Info("no highlights selected, finishing without clips")
	}

	if in.Hashtags {
		res.Hashtags = in.PresetHashtags
		if len(res.Hashtags) == 0 {
			res.Hashtags = d.Content.Hashtags(ctx, in.Title, in.Description)
		}
		if err := d.Store.SaveHashtags(ctx, r.job.ID, res.Hashtags); err != nil {
			return res, fmt.Errorf("save hashtags: %w", err)
		}
		res.Manifest.Hashtags = res.Hashtags
	}
	if err := r.step(ctx, progressTags); err != nil {
		return res, err
	}

	if in.ContentPlan {
		res.ContentPlan = in.PresetPlan
		if len(res.ContentPlan) == 0 {
			res.ContentPlan = d.Content.Plan(ctx, in.Title, in.Description)
		}
		if err := d.Store.SaveContentPlan(ctx, r.job.ID, res.ContentPlan); err != nil {
			return res, fmt.Errorf("save content plan: %w", err)
		}
		res.Manifest.ContentPlan = res.ContentPlan
	}
	if err := r.step(ctx, progressPlan); err != nil {
		return res, err
	}

	for i, h := range hls {
		ordinal := i + 1
		out := d.Store.ClipPath(r.job.ID, ordinal)
		r.log.WithFields(logrus.Fields{"clip": ordinal, "start": h.Start.String(), "score": h.Score}).Info("extracting clip")
		if err := d.Video.RenderClip(ctx, in.InputMP4, h.Start, h.Duration, out); err != nil {
			return res, fmt.Errorf("clip %d: %w", ordinal, err)
		}
		if in.Hashtags {
			if err := d.Store.SaveClipTags(ctx, r.job.ID, ordinal, res.Hashtags); err != nil {
				return res, fmt.Errorf("save clip %d hashtags: %w", ordinal, err)
			}
		}

		clip := types.Clip{
			Ordinal:    ordinal,
			Highlight:  h,
			Path:       out,
			Width:      types.ClipWidth,
			Height:     types.ClipHeight,
			VideoCodec: types.ClipVideoCodec,
			AudioCodec: types.ClipAudioCodec,
		}
		res.Clips = append(res.Clips, clip)
		res.Manifest.Clips = append(res.Manifest.Clips, manifestClip(clip))

		// the last clip reaches 100, which only the completed record reports
		if p := ClipProgress(ordinal); p < progressDone {
			if err := r.step(ctx, p); err != nil {
				return res, err
			}
		}
	}

	if err := d.Store.SaveStatus(ctx, r.job.ID, types.JobStatus{Status: types.StatusCompleted, Progress: progressDone}); err != nil {
		return res, fmt.Errorf("save status: %w", err)
	}
	r.progress = progressDone
	return res, nil
}

func (r *run) step(ctx context.Context, progress int) error {
	st := types.JobStatus{Status: types.StatusProcessing, Progress: progress}
	if err := r.u.d.Store.SaveStatus(ctx, r.job.ID, st); err != nil {
		return fmt.Errorf("save status: %w", err)
	}
	r.progress = progress
	return nil
}

// fail records the error state keeping the last reported progress.
func (r *run) fail(ctx context.Context, cause error) {
	r.log.WithError(cause).WithField("progress", r.progress).Error("job failed")
	st := types.JobStatus{Status: types.StatusError, Progress: r.progress, Error: cause.Error()}
	if err := r.u.d.Store.SaveStatus(context.WithoutCancel(ctx), r.job.ID, st); err != nil {
		r.log.WithError(err).Error("save error status")
	}
}

// ClipProgress is the progress after clip ordinal (1-based) is written.
func ClipProgress(ordinal int) int {
	return progressPlan + int(math.Round(float64(ordinal)/float64(highlights.MaxHighlights)*progressClipsTo))
}

func manifestClip(c types.Clip) types.ManifestClip {
	return types.ManifestClip{
		ID:       strconv.Itoa(c.Ordinal),
		StartSec: c.Highlight.Start.Seconds(),
		EndSec:   (c.Highlight.Start + c.Highlight.Duration).Seconds(),
		Score:    c.Highlight.Score,
		Label:    c.Highlight.Label,
		File:     filepath.Base(c.Path),
	}
}
