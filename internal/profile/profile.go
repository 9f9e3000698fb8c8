// Package profile holds per-account state: favorites, watch history, resume
// positions and the interface language. Each account's aggregate is one
// document keyed by email; switching accounts always loads a fresh aggregate.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/holymotion/holymotion/internal/languages"
	"github.com/holymotion/holymotion/internal/store"
)

const (
	dataKeyPrefix = "hm_data_"
	historyLimit  = 20
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

type HistoryEntry struct {
	MovieID   string `json:"movieId"`
	Timestamp int64  `json:"timestamp"`
}

type Settings struct {
	Language string `json:"language"`
}

type Aggregate struct {
	Favorites []string           `json:"favorites"`
	History   []HistoryEntry     `json:"history"`
	Playback  map[string]float64 `json:"playback"`
	Settings  Settings           `json:"settings"`
}

func defaultAggregate() Aggregate {
	return Aggregate{
		Favorites: []string{},
		History:   []HistoryEntry{},
		Playback:  map[string]float64{},
		Settings:  Settings{Language: languages.Default},
	}
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

func (s *Service) Get(ctx context.Context, email string) (Aggregate, error) {
	var agg Aggregate
	err := store.GetJSON(ctx, s.store, dataKeyPrefix+email, &agg)
	if errors.Is(err, store.ErrNotFound) {
		return defaultAggregate(), nil
	}
	if err != nil {
		return Aggregate{}, err
	}
	if agg.Playback == nil {
		agg.Playback = map[string]float64{}
	}
	return agg, nil
}

// ToggleFavorite adds the movie to the favorite set, or removes it when
// already present.
func (s *Service) ToggleFavorite(ctx context.Context, email, movieID string) (Aggregate, error) {
	agg, err := s.Get(ctx, email)
	if err != nil {
		return Aggregate{}, err
	}

	removed := false
	kept := agg.Favorites[:0]
	for _, id := range agg.Favorites {
		if id == movieID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	agg.Favorites = kept
	if !removed {
		agg.Favorites = append(agg.Favorites, movieID)
	}

	if err := s.save(ctx, email, agg); err != nil {
		return Aggregate{}, err
	}
	return agg, nil
}

// RecordPlayback stores the resume offset and moves the movie to the head of
// the history, evicting beyond the cap. Called on every player tick, so it
// must stay cheap and idempotent for repeated offsets.
func (s *Service) RecordPlayback(ctx context.Context, email, movieID string, elapsedSeconds float64) error {
	agg, err := s.Get(ctx, email)
	if err != nil {
		return err
	}

	agg.Playback[movieID] = elapsedSeconds

	kept := agg.History[:0]
	for _, h := range agg.History {
		if h.MovieID != movieID {
			kept = append(kept, h)
		}
	}
	entry := HistoryEntry{MovieID: movieID, Timestamp: s.now().UnixMilli()}
	agg.History = append([]HistoryEntry{entry}, kept...)
	if len(agg.History) > historyLimit {
		agg.History = agg.History[:historyLimit]
	}

	return s.save(ctx, email, agg)
}

func (s *Service) PlaybackPosition(ctx context.Context, email, movieID string) (float64, error) {
	agg, err := s.Get(ctx, email)
	if err != nil {
		return 0, err
	}
	return agg.Playback[movieID], nil
}

func (s *Service) SetLanguage(ctx context.Context, email, lang string) error {
	if !languages.IsSupported(lang) {
		return ErrUnsupportedLanguage
	}

	agg, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	agg.Settings.Language = lang
	return s.save(ctx, email, agg)
}

func (s *Service) save(ctx context.Context, email string, agg Aggregate) error {
	return store.PutJSON(ctx, s.store, dataKeyPrefix+email, agg)
}
