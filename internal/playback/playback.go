// Package playback ties one active movie to a resumable time offset. A
// session opens at the viewer's recorded offset, samples elapsed time while
// playing so a crash loses at most a few seconds, and flushes one final
// sample on close.
package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// Recorder persists playback progress; satisfied by profile.Service.
type Recorder interface {
	RecordPlayback(ctx context.Context, email, movieID string, elapsedSeconds float64) error
}

// PositionSource reads the recorded resume offset; satisfied by profile.Service.
type PositionSource interface {
	PlaybackPosition(ctx context.Context, email, movieID string) (float64, error)
}

const defaultSampleInterval = time.Second

type Session struct {
	recorder Recorder
	email    string
	movieID  string
	interval time.Duration
	now      func() time.Time

	mu           sync.Mutex
	state        State
	elapsed      float64
	playingSince time.Time
	closed       bool

	cancelSampler context.CancelFunc
	samplerDone   chan struct{}
}

// Open starts a session positioned at the movie's recorded offset (0 when
// the viewer has never played it).
func Open(ctx context.Context, src PositionSource, rec Recorder, email, movieID string) (*Session, error) {
	resume, err := src.PlaybackPosition(ctx, email, movieID)
	if err != nil {
		return nil, err
	}
	return &Session{
		recorder: rec,
		email:    email,
		movieID:  movieID,
		interval: defaultSampleInterval,
		now:      time.Now,
		state:    StateStopped,
		elapsed:  resume,
	}, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed reports the current offset, including time accrued since the last
// state change while playing.
func (s *Session) Elapsed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Session) elapsedLocked() float64 {
	if s.state == StatePlaying {
		return s.elapsed + s.now().Sub(s.playingSince).Seconds()
	}
	return s.elapsed
}

func (s *Session) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == StatePlaying {
		return
	}
	s.state = StatePlaying
	s.playingSince = s.now()

	if s.samplerDone == nil {
		samplerCtx, cancel := context.WithCancel(context.Background())
		s.cancelSampler = cancel
		s.samplerDone = make(chan struct{})
		go s.sample(samplerCtx)
	}
}

func (s *Session) Pause(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.state != StatePlaying {
		s.mu.Unlock()
		return nil
	}
	s.elapsed = s.elapsedLocked()
	s.state = StatePaused
	offset := s.elapsed
	s.mu.Unlock()

	return s.recorder.RecordPlayback(ctx, s.email, s.movieID, offset)
}

// Seek jumps to an absolute offset. A scrub is itself a playback sample, so
// it records immediately.
func (s *Session) Seek(ctx context.Context, seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.elapsed = seconds
	if s.state == StatePlaying {
		s.playingSince = s.now()
	}
	s.mu.Unlock()

	return s.recorder.RecordPlayback(ctx, s.email, s.movieID, seconds)
}

// Close flushes a final sample and stops the sampler. Safe to call twice.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.elapsed = s.elapsedLocked()
	s.state = StateStopped
	offset := s.elapsed
	cancel := s.cancelSampler
	done := s.samplerDone
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return s.recorder.RecordPlayback(ctx, s.email, s.movieID, offset)
}

func (s *Session) sample(ctx context.Context) {
	defer close(s.samplerDone)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			playing := s.state == StatePlaying
			offset := s.elapsedLocked()
			s.mu.Unlock()
			if !playing {
				continue
			}
			if err := s.recorder.RecordPlayback(ctx, s.email, s.movieID, offset); err != nil {
				slog.Warn("playback sample failed", "movie", s.movieID, "error", err)
			}
		}
	}
}
