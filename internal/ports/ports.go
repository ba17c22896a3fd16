package ports

import (
	"context"
	"time"

	"github.com/forPelevin/reelcut/internal/types"
)

type VideoTool interface {
	Probe(ctx context.Context, inPath string) (types.VideoInfo, error)
	RenderClip(ctx context.Context, inPath string, start, dur time.Duration, outMP4 string) error
}

// TextGenerator sends a prompt to a remote language model and returns its raw text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ContentGenerator never fails: remote problems degrade to local generation.
type ContentGenerator interface {
	Hashtags(ctx context.Context, title, description string) []string
	Plan(ctx context.Context, title, description string) []types.PlanEntry
}

type JobStore interface {
	InitJob(ctx context.Context, jobID string) error
	SaveStatus(ctx context.Context, jobID string, st types.JobStatus) error
	SaveMetadata(ctx context.Context, jobID string, m types.Metadata) error
	SaveHashtags(ctx context.Context, jobID string, tags []string) error
	SaveContentPlan(ctx context.Context, jobID string, plan []types.PlanEntry) error
	SaveClipTags(ctx context.Context, jobID string, ordinal int, tags []string) error
	ClipPath(jobID string, ordinal int) string
}
