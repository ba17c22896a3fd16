// Package filestore keeps job records and clip files under one directory per job.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/forPelevin/reelcut/internal/types"
)

const (
	statusFile   = "status.json"
	metadataFile = "metadata.json"
	hashtagsFile = "hashtags.json"
	planFile     = "content_plan.json"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidJobID = errors.New("invalid job id")

	reClipFile = regexp.MustCompile(`^clip_(\d+)\.mp4$`)
)

type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string { return s.root }

// ValidateJobID rejects IDs that could escape the job directory.
func ValidateJobID(jobID string) error {
	if jobID == "" || strings.ContainsAny(jobID, `/\.`) || strings.ContainsRune(jobID, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidJobID, jobID)
	}
	return nil
}

func (s *Store) dir(jobID string) (string, error) {
	if err := ValidateJobID(jobID); err != nil {
		return "", err
	}
	return filepath.Join(s.root, jobID), nil
}

func (s *Store) InitJob(ctx context.Context, jobID string) error {
	dir, err := s.dir(jobID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create job dir: %w", err)
	}
	return nil
}

func (s *Store) SaveStatus(ctx context.Context, jobID string, st types.JobStatus) error {
	return s.writeJSON(jobID, statusFile, st)
}

func (s *Store) SaveMetadata(ctx context.Context, jobID string, m types.Metadata) error {
	return s.writeJSON(jobID, metadataFile, m)
}

func (s *Store) SaveHashtags(ctx context.Context, jobID string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	return s.writeJSON(jobID, hashtagsFile, struct {
		Hashtags []string `json:"hashtags"`
	}{tags})
}

func (s *Store) SaveContentPlan(ctx context.Context, jobID string, plan []types.PlanEntry) error {
	if plan == nil {
		plan = []types.PlanEntry{}
	}
	return s.writeJSON(jobID, planFile, struct {
		ContentPlan []types.PlanEntry `json:"contentPlan"`
	}{plan})
}

// SaveClipTags writes the space-joined tags next to clip ordinal.
func (s *Store) SaveClipTags(ctx context.Context, jobID string, ordinal int, tags []string) error {
	return s.writeFile(jobID, fmt.Sprintf("clip_%d_hashtags.txt", ordinal), []byte(strings.Join(tags, " ")))
}

func (s *Store) ClipPath(jobID string, ordinal int) string {
	return filepath.Join(s.root, jobID, ClipName(ordinal))
}

func ClipName(ordinal int) string {
	return fmt.Sprintf("clip_%d.mp4", ordinal)
}

func (s *Store) LoadStatus(ctx context.Context, jobID string) (types.JobStatus, error) {
	var st types.JobStatus
	if err := s.readJSON(jobID, statusFile, &st); err != nil {
		return types.JobStatus{}, err
	}
	return st, nil
}

// LoadBundle merges the metadata record with whichever enrichment records exist.
func (s *Store) LoadBundle(ctx context.Context, jobID string) (types.Bundle, error) {
	var m types.Metadata
	if err := s.readJSON(jobID, metadataFile, &m); err != nil {
		return types.Bundle{}, err
	}
	b := types.Bundle{Title: m.Title, Description: m.Description, UploadDate: m.UploadDate}

	var tags struct {
		Hashtags []string `json:"hashtags"`
	}
	switch err := s.readJSON(jobID, hashtagsFile, &tags); {
	case err == nil:
		b.Hashtags = tags.Hashtags
	case !errors.Is(err, ErrNotFound):
		return types.Bundle{}, err
	}

	var plan struct {
		ContentPlan []types.PlanEntry `json:"contentPlan"`
	}
	switch err := s.readJSON(jobID, planFile, &plan); {
	case err == nil:
		b.ContentPlan = plan.ContentPlan
	case !errors.Is(err, ErrNotFound):
		return types.Bundle{}, err
	}
	return b, nil
}

// ListClips returns clip file names ordered by ordinal.
func (s *Store) ListClips(ctx context.Context, jobID string) ([]string, error) {
	dir, err := s.dir(jobID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return nil, fmt.Errorf("read job dir: %w", err)
	}
	type clip struct {
		name    string
		ordinal int
	}
	var clips []clip
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := reClipFile.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		clips = append(clips, clip{name: e.Name(), ordinal: n})
	}
	sort.Slice(clips, func(i, j int) bool { return clips[i].ordinal < clips[j].ordinal })

	out := make([]string, 0, len(clips))
	for _, c := range clips {
		out = append(out, c.name)
	}
	return out, nil
}

// FilePath resolves a plain file name inside the job directory.
func (s *Store) FilePath(jobID, name string) (string, error) {
	dir, err := s.dir(jobID)
	if err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("file %q: %w", name, ErrNotFound)
	}
	p := filepath.Join(dir, name)
	fi, err := os.Stat(p)
	if err != nil || fi.IsDir() {
		return "", fmt.Errorf("file %q: %w", name, ErrNotFound)
	}
	return p, nil
}

func (s *Store) writeJSON(jobID, name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return s.writeFile(jobID, name, b)
}

// writeFile replaces name atomically so readers never observe a partial record.
func (s *Store) writeFile(jobID, name string, b []byte) error {
	dir, err := s.dir(jobID)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *Store) readJSON(jobID, name string, v any) error {
	dir, err := s.dir(jobID)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s/%s: %w", jobID, name, ErrNotFound)
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
