package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/holymotion/holymotion/internal/profile"
	"github.com/holymotion/holymotion/internal/store"
)

type recordingSpy struct {
	mu      sync.Mutex
	offsets []float64
}

func (r *recordingSpy) RecordPlayback(_ context.Context, _, _ string, elapsed float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offsets = append(r.offsets, elapsed)
	return nil
}

func (r *recordingSpy) recorded() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.offsets...)
}

type fixedSource struct{ offset float64 }

func (f fixedSource) PlaybackPosition(context.Context, string, string) (float64, error) {
	return f.offset, nil
}

func TestOpenResumesAtRecordedOffset(t *testing.T) {
	ctx := context.Background()
	sess, err := Open(ctx, fixedSource{offset: 42.5}, &recordingSpy{}, "a@x.com", "m1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := sess.Elapsed(); got != 42.5 {
		t.Errorf("Elapsed = %v, want 42.5", got)
	}
	if sess.State() != StateStopped {
		t.Errorf("state = %v, want stopped", sess.State())
	}
}

func TestOpenDefaultsToZero(t *testing.T) {
	ctx := context.Background()
	sess, err := Open(ctx, fixedSource{}, &recordingSpy{}, "a@x.com", "m1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := sess.Elapsed(); got != 0 {
		t.Errorf("Elapsed = %v, want 0", got)
	}
}

func TestPlayPauseAccrual(t *testing.T) {
	ctx := context.Background()
	spy := &recordingSpy{}
	sess, _ := Open(ctx, fixedSource{offset: 10}, spy, "a@x.com", "m1")

	clock := time.Unix(1000, 0)
	sess.now = func() time.Time { return clock }

	sess.Play()
	if sess.State() != StatePlaying {
		t.Fatalf("state = %v, want playing", sess.State())
	}

	clock = clock.Add(5 * time.Second)
	if got := sess.Elapsed(); got != 15 {
		t.Errorf("Elapsed while playing = %v, want 15", got)
	}

	if err := sess.Pause(ctx); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if sess.State() != StatePaused {
		t.Errorf("state = %v, want paused", sess.State())
	}

	clock = clock.Add(30 * time.Second)
	if got := sess.Elapsed(); got != 15 {
		t.Errorf("Elapsed while paused = %v, want 15", got)
	}

	offsets := spy.recorded()
	if len(offsets) == 0 || offsets[len(offsets)-1] != 15 {
		t.Errorf("pause did not record offset 15, got %v", offsets)
	}

	_ = sess.Close(ctx)
}

func TestSeekRecordsImmediately(t *testing.T) {
	ctx := context.Background()
	spy := &recordingSpy{}
	sess, _ := Open(ctx, fixedSource{}, spy, "a@x.com", "m1")

	if err := sess.Seek(ctx, 300); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if got := sess.Elapsed(); got != 300 {
		t.Errorf("Elapsed after seek = %v, want 300", got)
	}

	offsets := spy.recorded()
	if len(offsets) != 1 || offsets[0] != 300 {
		t.Errorf("seek recorded %v, want [300]", offsets)
	}

	if err := sess.Seek(ctx, -5); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if got := sess.Elapsed(); got != 0 {
		t.Errorf("Elapsed after negative seek = %v, want 0", got)
	}
}

func TestCloseFlushesFinalSample(t *testing.T) {
	ctx := context.Background()
	spy := &recordingSpy{}
	sess, _ := Open(ctx, fixedSource{offset: 7}, spy, "a@x.com", "m1")

	if err := sess.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	offsets := spy.recorded()
	if len(offsets) != 1 || offsets[0] != 7 {
		t.Errorf("close recorded %v, want [7]", offsets)
	}
	if sess.State() != StateStopped {
		t.Errorf("state = %v, want stopped", sess.State())
	}

	// Second close must not record again.
	if err := sess.Close(ctx); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if got := spy.recorded(); len(got) != 1 {
		t.Errorf("second close recorded an extra sample: %v", got)
	}
}

func TestSamplerRecordsWhilePlaying(t *testing.T) {
	ctx := context.Background()
	spy := &recordingSpy{}
	sess, _ := Open(ctx, fixedSource{}, spy, "a@x.com", "m1")
	sess.interval = 10 * time.Millisecond

	sess.Play()
	time.Sleep(100 * time.Millisecond)
	if err := sess.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	offsets := spy.recorded()
	if len(offsets) < 2 {
		t.Fatalf("sampler recorded %d samples in 100ms, want at least 2", len(offsets))
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			t.Errorf("offsets not monotonic: %v", offsets)
			break
		}
	}
}

func TestResumeRoundTripThroughProfile(t *testing.T) {
	ctx := context.Background()
	profiles := profile.NewService(store.NewMemory())

	sess, err := Open(ctx, profiles, profiles, "a@x.com", "m1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := sess.Seek(ctx, 125); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if err := sess.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(ctx, profiles, profiles, "a@x.com", "m1")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Elapsed(); got != 125 {
		t.Errorf("resume offset = %v, want 125", got)
	}
}
