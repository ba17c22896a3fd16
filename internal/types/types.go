package types

import "time"

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

type Job struct {
	ID string
}

type JobStatus struct {
	Status   Status `json:"status"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

type VideoInfo struct {
	Duration    time.Duration
	Width       int
	Height      int
	AspectRatio float64
}

// NewVideoInfo derives the aspect ratio from width and height.
func NewVideoInfo(d time.Duration, width, height int) VideoInfo {
	info := VideoInfo{Duration: d, Width: width, Height: height}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	return info
}

type Segment struct {
	Start time.Duration
	Score float64
	Label string
}

type Highlight struct {
	Start    time.Duration
	Duration time.Duration
	Score    float64
	Label    string
}

const (
	ClipWidth      = 1280
	ClipHeight     = 720
	ClipVideoCodec = "libx264"
	ClipAudioCodec = "aac"
)

type Clip struct {
	Ordinal    int
	Highlight  Highlight
	Path       string
	Width      int
	Height     int
	VideoCodec string
	AudioCodec string
}

type PlanEntry struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

type Metadata struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UploadDate  time.Time `json:"uploadDate"`
}

// Bundle is the metadata record merged with the optional enrichment records.
type Bundle struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	UploadDate  time.Time   `json:"uploadDate"`
	Hashtags    []string    `json:"hashtags,omitempty"`
	ContentPlan []PlanEntry `json:"contentPlan,omitempty"`
}

type Manifest struct {
	JobID string         `json:"job_id"`
	Input string         `json:"input"`
	Clips []ManifestClip `json:"clips"`

	Hashtags    []string    `json:"hashtags,omitempty"`
	ContentPlan []PlanEntry `json:"content_plan,omitempty"`
}

type ManifestClip struct {
	ID       string  `json:"id"`
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Score    float64 `json:"score"`
	Label    string  `json:"label"`
	File     string  `json:"file"`
}
