package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nyashahama/balance-cup-backend/internal/round"
	"github.com/nyashahama/balance-cup-backend/internal/worker"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// ─── STUBS ────────────────────────────────────────────────────────────────────

// stubSaver fails the first failN calls and reports every call on saved.
type stubSaver struct {
	failN int32
	calls atomic.Int32
	saved chan round.Batch
}

func newStubSaver(failN int32) *stubSaver {
	return &stubSaver{failN: failN, saved: make(chan round.Batch, 16)}
}

func (s *stubSaver) SaveBatch(_ context.Context, b round.Batch) (int, error) {
	n := s.calls.Add(1)
	s.saved <- b
	if n <= s.failN {
		return 0, errors.New("db down")
	}
	return len(b.Items), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func batch(topic string) round.Batch {
	return round.Batch{Topic: topic, Items: []round.ChoiceItem{{ID: "x", OptionText1: "a", OptionText2: "b"}}}
}

// startRunner runs r until the test ends.
func startRunner(t *testing.T, r *worker.Runner) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func receive(t *testing.T, ch <-chan round.Batch) round.Batch {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save")
		return round.Batch{}
	}
}

// ─── Runner ───────────────────────────────────────────────────────────────────

func TestRunner_SavesEnqueuedBatch(t *testing.T) {
	saver := newStubSaver(0)
	r := worker.NewRunner(worker.NewJob(saver, discardLogger()), worker.RunnerConfig{Workers: 2}, quartz.NewMock(t), discardLogger())
	startRunner(t, r)

	require.NoError(t, r.Enqueue(context.Background(), batch("love")))
	assert.Equal(t, "love", receive(t, saver.saved).Topic)
}

// releaseBackoff lets the runner create its next back-off timer, checks the
// delay and fires it.
func releaseBackoff(ctx context.Context, t *testing.T, mClock *quartz.Mock, trap *quartz.Trap, want time.Duration) {
	t.Helper()
	call := trap.MustWait(ctx)
	assert.Equal(t, want, call.Duration)
	call.MustRelease(ctx)

	d, w := mClock.AdvanceNext()
	assert.Equal(t, want, d)
	w.MustWait(ctx)
}

func TestRunner_RetriesWithBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	trap := mClock.Trap().NewTimer("runner", "backoff")
	defer trap.Close()

	saver := newStubSaver(1)
	r := worker.NewRunner(worker.NewJob(saver, discardLogger()), worker.RunnerConfig{
		Workers:     1,
		MaxRetries:  3,
		BaseBackoff: time.Second,
	}, mClock, discardLogger())
	startRunner(t, r)

	require.NoError(t, r.Enqueue(context.Background(), batch("food")))
	receive(t, saver.saved)
	releaseBackoff(ctx, t, mClock, trap, 2*time.Second)
	receive(t, saver.saved)

	// Succeeded on the second attempt, so no third call.
	select {
	case <-saver.saved:
		t.Fatal("unexpected third attempt")
	case <-time.After(50 * time.Millisecond):
	}
	assert.EqualValues(t, 2, saver.calls.Load())
}

func TestRunner_GivesUpAfterMaxRetries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	trap := mClock.Trap().NewTimer("runner", "backoff")
	defer trap.Close()

	saver := newStubSaver(100)
	r := worker.NewRunner(worker.NewJob(saver, discardLogger()), worker.RunnerConfig{
		Workers:     1,
		MaxRetries:  3,
		BaseBackoff: time.Second,
	}, mClock, discardLogger())
	startRunner(t, r)

	require.NoError(t, r.Enqueue(context.Background(), batch("work")))
	receive(t, saver.saved)
	releaseBackoff(ctx, t, mClock, trap, 2*time.Second)
	receive(t, saver.saved)
	releaseBackoff(ctx, t, mClock, trap, 4*time.Second)
	receive(t, saver.saved)

	// No back-off after the last attempt, and no fourth call.
	select {
	case <-saver.saved:
		t.Fatal("retried beyond MaxRetries")
	case <-time.After(50 * time.Millisecond):
	}
	_, pending := mClock.Peek()
	assert.False(t, pending)
}

func TestRunner_EnqueueDropsWhenFull(t *testing.T) {
	saver := newStubSaver(0)
	// Not started: nothing drains the queue.
	r := worker.NewRunner(worker.NewJob(saver, discardLogger()), worker.RunnerConfig{QueueSize: 1}, quartz.NewMock(t), discardLogger())

	require.NoError(t, r.Enqueue(context.Background(), batch("a")))
	assert.ErrorIs(t, r.Enqueue(context.Background(), batch("b")), worker.ErrQueueFull)
}

func TestJob_EmptyBatchIsNoop(t *testing.T) {
	saver := newStubSaver(0)
	job := worker.NewJob(saver, discardLogger())

	require.NoError(t, job.Run(context.Background(), round.Batch{Topic: "love"}))
	assert.Zero(t, saver.calls.Load())
}

func TestJob_WrapsSaveError(t *testing.T) {
	saver := newStubSaver(1)
	job := worker.NewJob(saver, discardLogger())

	err := job.Run(context.Background(), batch("love"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

// ─── Warmer ───────────────────────────────────────────────────────────────────

type stubRefiller struct {
	mu     sync.Mutex
	topics []string
	calls  chan string
}

func (s *stubRefiller) Refill(_ context.Context, topic string, n int) (int, error) {
	s.mu.Lock()
	s.topics = append(s.topics, topic)
	s.mu.Unlock()
	s.calls <- topic
	return n, nil
}

type stubCounter struct {
	counts map[string]int
	err    error
}

func (s stubCounter) TopicCounts(context.Context) (map[string]int, error) {
	return s.counts, s.err
}

func TestWarmer_RefillsTopicsBelowTarget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mClock := quartz.NewMock(t)
	refiller := &stubRefiller{calls: make(chan string, 8)}
	counter := stubCounter{counts: map[string]int{"love": 150, "food": 3}}
	w := worker.NewWarmer(refiller, counter, worker.WarmerConfig{
		Topics:   []string{"love", "food", "horror"},
		Interval: time.Minute,
		Batch:    4,
		Target:   100,
	}, mClock, discardLogger())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	waitTopic := func() string {
		select {
		case topic := <-refiller.calls:
			return topic
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for refill")
			return ""
		}
	}

	// Immediate pass: love is stocked, food and horror are not.
	assert.Equal(t, "food", waitTopic())
	assert.Equal(t, "horror", waitTopic())

	// Next tick repeats the pass.
	mClock.Advance(time.Minute).MustWait(ctx)
	assert.Equal(t, "food", waitTopic())
	assert.Equal(t, "horror", waitTopic())

	cancel()
	<-done
}

func TestWarmer_CountFailureSkipsPass(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	mClock := quartz.NewMock(t)
	refiller := &stubRefiller{calls: make(chan string, 8)}
	w := worker.NewWarmer(refiller, stubCounter{err: errors.New("db down")}, worker.WarmerConfig{
		Topics: []string{"food"},
	}, mClock, discardLogger())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	select {
	case <-refiller.calls:
		t.Fatal("refill should not run when counts are unavailable")
	case <-time.After(50 * time.Millisecond):
	}
	cancel()
	<-done
}

func TestWarmer_MatchesCountsCaseInsensitively(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	mClock := quartz.NewMock(t)
	refiller := &stubRefiller{calls: make(chan string, 8)}
	counter := stubCounter{counts: map[string]int{"food": 150}}
	w := worker.NewWarmer(refiller, counter, worker.WarmerConfig{
		Topics: []string{"Food", "Horror"},
		Target: 100,
	}, mClock, discardLogger())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	select {
	case topic := <-refiller.calls:
		assert.Equal(t, "Horror", topic)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refill")
	}
	select {
	case topic := <-refiller.calls:
		t.Fatalf("stocked topic refilled: %s", topic)
	case <-time.After(50 * time.Millisecond):
	}
	cancel()
	<-done
}

func TestWarmer_NoTopicsReturnsImmediately(t *testing.T) {
	w := worker.NewWarmer(&stubRefiller{}, stubCounter{}, worker.WarmerConfig{}, quartz.NewMock(t), discardLogger())

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start should return when no topics are configured")
	}
}
