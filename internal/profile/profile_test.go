package profile

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/holymotion/holymotion/internal/store"
)

func newTestService() *Service {
	svc := NewService(store.NewMemory())
	tick := int64(0)
	svc.now = func() time.Time {
		tick++
		return time.UnixMilli(tick)
	}
	return svc
}

func TestGetDefaultsForUnknownAccount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	agg, err := svc.Get(ctx, "fresh@x.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(agg.Favorites) != 0 || len(agg.History) != 0 || len(agg.Playback) != 0 {
		t.Errorf("fresh aggregate not empty: %+v", agg)
	}
	if agg.Settings.Language != "ru" {
		t.Errorf("default language = %q, want ru", agg.Settings.Language)
	}
}

func TestToggleFavoriteIsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	email := "a@x.com"

	if _, err := svc.ToggleFavorite(ctx, email, "m1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	agg, _ := svc.Get(ctx, email)
	before := append([]string(nil), agg.Favorites...)

	if _, err := svc.ToggleFavorite(ctx, email, "m2"); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if _, err := svc.ToggleFavorite(ctx, email, "m2"); err != nil {
		t.Fatalf("toggle off: %v", err)
	}

	agg, _ = svc.Get(ctx, email)
	if !reflect.DeepEqual(agg.Favorites, before) {
		t.Errorf("favorites = %v after double toggle, want %v", agg.Favorites, before)
	}
}

func TestRecordPlaybackStoresResumeOffset(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	email := "a@x.com"

	if err := svc.RecordPlayback(ctx, email, "m1", 12.5); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.RecordPlayback(ctx, email, "m1", 73.25); err != nil {
		t.Fatalf("record: %v", err)
	}

	pos, err := svc.PlaybackPosition(ctx, email, "m1")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos != 73.25 {
		t.Errorf("position = %v, want 73.25", pos)
	}

	if pos, _ := svc.PlaybackPosition(ctx, email, "never-played"); pos != 0 {
		t.Errorf("position for unplayed movie = %v, want 0", pos)
	}
}

func TestHistoryDeduplicatesByMovie(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	email := "a@x.com"

	_ = svc.RecordPlayback(ctx, email, "m1", 1)
	_ = svc.RecordPlayback(ctx, email, "m2", 1)
	_ = svc.RecordPlayback(ctx, email, "m1", 2)

	agg, _ := svc.Get(ctx, email)
	if len(agg.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(agg.History))
	}
	if agg.History[0].MovieID != "m1" || agg.History[1].MovieID != "m2" {
		t.Errorf("history order = [%s, %s], want [m1, m2]",
			agg.History[0].MovieID, agg.History[1].MovieID)
	}
}

func TestHistoryCappedAtTwenty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	email := "a@x.com"

	for i := 0; i < 21; i++ {
		if err := svc.RecordPlayback(ctx, email, fmt.Sprintf("m%d", i), 1); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	agg, _ := svc.Get(ctx, email)
	if len(agg.History) != 20 {
		t.Fatalf("history length = %d, want 20", len(agg.History))
	}
	if agg.History[0].MovieID != "m20" {
		t.Errorf("newest entry = %s, want m20", agg.History[0].MovieID)
	}
	for _, h := range agg.History {
		if h.MovieID == "m0" {
			t.Error("oldest entry m0 should have been evicted")
		}
	}
}

func TestSetLanguage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	email := "a@x.com"

	if err := svc.SetLanguage(ctx, email, "kk"); err != nil {
		t.Fatalf("set language: %v", err)
	}
	agg, _ := svc.Get(ctx, email)
	if agg.Settings.Language != "kk" {
		t.Errorf("language = %q, want kk", agg.Settings.Language)
	}

	if err := svc.SetLanguage(ctx, email, "de"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestAggregatesAreScopedPerAccount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.ToggleFavorite(ctx, "a@x.com", "m1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	other, err := svc.Get(ctx, "b@x.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(other.Favorites) != 0 {
		t.Errorf("b@x.com favorites = %v, want empty", other.Favorites)
	}
}
