package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/reelcut/internal/types"
)

func TestStatusRoundTripAndAtomicReplace(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())
	require.NoError(t, s.InitJob(ctx, "job-1"))

	require.NoError(t, s.SaveStatus(ctx, "job-1", types.JobStatus{Status: types.StatusProcessing}))
	require.NoError(t, s.SaveStatus(ctx, "job-1", types.JobStatus{Status: types.StatusError, Progress: 53, Error: "boom"}))

	st, err := s.LoadStatus(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, types.JobStatus{Status: types.StatusError, Progress: 53, Error: "boom"}, st)

	entries, err := os.ReadDir(filepath.Join(s.Root(), "job-1"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "status.json", entries[0].Name())

	raw, err := os.ReadFile(filepath.Join(s.Root(), "job-1", "status.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","progress":53,"error":"boom"}`, string(raw))
}

func TestLoadStatus_Unknown(t *testing.T) {
	_, err := New(t.TempDir()).LoadStatus(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidJobIDs(t *testing.T) {
	s := New(t.TempDir())
	for _, id := range []string{"", "..", "../x", `a\b`, "a/b", "clip.mp4"} {
		require.ErrorIs(t, s.InitJob(context.Background(), id), ErrInvalidJobID, id)
		_, err := s.LoadStatus(context.Background(), id)
		require.ErrorIs(t, err, ErrInvalidJobID, id)
	}
}

func TestBundle(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())
	require.NoError(t, s.InitJob(ctx, "j"))

	up := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveMetadata(ctx, "j", types.Metadata{Title: "T", Description: "D", UploadDate: up}))

	b, err := s.LoadBundle(ctx, "j")
	require.NoError(t, err)
	assert.Equal(t, types.Bundle{Title: "T", Description: "D", UploadDate: up}, b)

	plan := []types.PlanEntry{{Date: "14 октября 2026 г.", Content: "c"}}
	require.NoError(t, s.SaveHashtags(ctx, "j", []string{"#a", "#b"}))
	require.NoError(t, s.SaveContentPlan(ctx, "j", plan))

	b, err = s.LoadBundle(ctx, "j")
	require.NoError(t, err)
	assert.Equal(t, []string{"#a", "#b"}, b.Hashtags)
	assert.Equal(t, plan, b.ContentPlan)

	raw, err := os.ReadFile(filepath.Join(s.Root(), "j", "hashtags.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"hashtags":["#a","#b"]}`, string(raw))

	raw, err = os.ReadFile(filepath.Join(s.Root(), "j", "content_plan.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"contentPlan":[{"date":"14 октября 2026 г.","content":"c"}]}`, string(raw))
}

func TestLoadBundle_NoMetadata(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.InitJob(context.Background(), "j"))
	_, err := s.LoadBundle(context.Background(), "j")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClipsAndSidecars(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())
	require.NoError(t, s.InitJob(ctx, "j"))

	for _, n := range []int{10, 2, 1} {
		require.NoError(t, os.WriteFile(s.ClipPath("j", n), []byte("x"), 0o644))
	}
	require.NoError(t, s.SaveClipTags(ctx, "j", 1, []string{"#a", "#b"}))

	clips, err := s.ListClips(ctx, "j")
	require.NoError(t, err)
	assert.Equal(t, []string{"clip_1.mp4", "clip_2.mp4", "clip_10.mp4"}, clips)

	raw, err := os.ReadFile(filepath.Join(s.Root(), "j", "clip_1_hashtags.txt"))
	require.NoError(t, err)
	assert.Equal(t, "#a #b", string(raw))

	_, err = s.ListClips(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFilePath(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())
	require.NoError(t, s.InitJob(ctx, "j"))
	require.NoError(t, os.WriteFile(s.ClipPath("j", 1), []byte("x"), 0o644))

	p, err := s.FilePath("j", "clip_1.mp4")
	require.NoError(t, err)
	assert.Equal(t, s.ClipPath("j", 1), p)

	for _, name := range []string{"", "clip_2.mp4", "../j/clip_1.mp4", ".hidden", "a/b"} {
		_, err := s.FilePath("j", name)
		require.ErrorIs(t, err, ErrNotFound, name)
	}
	_, err = s.FilePath("..", "clip_1.mp4")
	require.ErrorIs(t, err, ErrInvalidJobID)
}
