package jobs

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/reelcut/internal/types"
	"github.com/forPelevin/reelcut/internal/usecase"
)

type fakeRunner struct {
	mu        sync.Mutex
	started   []string
	processed []string
	startErr  error
	block     chan struct{}
}

func (f *fakeRunner) Start(_ context.Context, in usecase.Input) (types.Job, error) {
	if f.startErr != nil {
		return types.Job{}, f.startErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, in.JobID)
	return types.Job{ID: in.JobID}, nil
}

func (f *fakeRunner) Process(_ context.Context, job types.Job, _ usecase.Input) (usecase.Result, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, job.ID)
	return usecase.Result{Job: job}, nil
}

type fakeStatus struct {
	mu   sync.Mutex
	last map[string]types.JobStatus
}

func (f *fakeStatus) SaveStatus(_ context.Context, id string, st types.JobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		f.last = map[string]types.JobStatus{}
	}
	f.last[id] = st
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDispatcher_ProcessesAllBeforeStopReturns(t *testing.T) {
	r := &fakeRunner{}
	d := NewDispatcher(r, &fakeStatus{}, quietLogger(), 3, 10)
	d.Run()

	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := d.Submit(context.Background(), usecase.Input{JobID: id})
		require.NoError(t, err)
	}
	d.Stop()

	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, r.processed)
}

func TestDispatcher_QueueFullMarksJobFailed(t *testing.T) {
	r := &fakeRunner{block: make(chan struct{})}
	st := &fakeStatus{}
	// No workers running yet, so the single slot fills up.
	d := NewDispatcher(r, st, quietLogger(), 1, 1)

	_, err := d.Submit(context.Background(), usecase.Input{JobID: "first"})
	require.NoError(t, err)

	job, err := d.Submit(context.Background(), usecase.Input{JobID: "second"})
	require.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, "second", job.ID)
	assert.Equal(t, types.JobStatus{Status: types.StatusError, Error: "job queue is full"}, st.last["second"])

	close(r.block)
	d.Run()
	d.Stop()
	assert.Equal(t, []string{"first"}, r.processed)
}

func TestDispatcher_StartErrorIsReturned(t *testing.T) {
	r := &fakeRunner{startErr: usecase.ErrInvalidInput}
	d := NewDispatcher(r, &fakeStatus{}, quietLogger(), 1, 1)
	d.Run()
	defer d.Stop()

	_, err := d.Submit(context.Background(), usecase.Input{JobID: "x"})
	require.True(t, errors.Is(err, usecase.ErrInvalidInput))
}

func TestDispatcher_SubmitAfterStop(t *testing.T) {
	d := NewDispatcher(&fakeRunner{}, &fakeStatus{}, quietLogger(), 1, 1)
	d.Run()
	d.Stop()
	d.Stop()

	_, err := d.Submit(context.Background(), usecase.Input{JobID: "x"})
	require.ErrorIs(t, err, ErrStopped)
}
