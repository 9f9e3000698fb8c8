package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/holymotion/holymotion/internal/authz"
	"github.com/holymotion/holymotion/internal/store"
)

func newTestService() *Service {
	svc := NewService(store.NewMemory())
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc
}

func validDraft(title string) Draft {
	return Draft{
		Title:    title,
		Genre:    "Drama",
		Language: "English",
		CoverURL: "https://cdn.test/cover.jpg",
		VideoURL: "https://cdn.test/video.mp4",
	}
}

func TestAddRequiresPublishPermission(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Add(ctx, authz.PermissionSet{CanEdit: true, CanDelete: true}, validDraft("Nope"))
	if !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestAddIncompleteDraftLeavesCatalogUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	draft := validDraft("No Video")
	draft.VideoURL = ""
	if _, err := svc.Add(ctx, authz.Full, draft); !errors.Is(err, ErrIncompleteMovie) {
		t.Errorf("error = %v, want ErrIncompleteMovie", err)
	}

	movies, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("catalog length = %d after failed add, want 0", len(movies))
	}
}

func TestAddPrependsNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.Add(ctx, authz.Full, validDraft("First")); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if _, err := svc.Add(ctx, authz.Full, validDraft("Second")); err != nil {
		t.Fatalf("add second: %v", err)
	}

	movies, _ := svc.List(ctx)
	if len(movies) != 2 {
		t.Fatalf("catalog length = %d, want 2", len(movies))
	}
	if movies[0].Title != "Second" || movies[1].Title != "First" {
		t.Errorf("order = [%s, %s], want newest first", movies[0].Title, movies[1].Title)
	}
	if movies[0].ID == movies[1].ID {
		t.Error("movies share an id")
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	added, err := svc.Add(ctx, authz.Full, validDraft("Original"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	draft := validDraft("Renamed")
	if _, err := svc.Update(ctx, authz.PermissionSet{CanPublish: true}, added.ID, draft); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("update without canEdit: error = %v, want ErrForbidden", err)
	}

	if _, err := svc.Update(ctx, authz.Full, "missing", draft); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing id: error = %v, want ErrNotFound", err)
	}

	updated, err := svc.Update(ctx, authz.Full, added.ID, draft)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != added.ID {
		t.Errorf("update changed id from %s to %s", added.ID, updated.ID)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", updated.Title)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	added, err := svc.Add(ctx, authz.Full, validDraft("Doomed"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Delete(ctx, authz.PermissionSet{CanPublish: true, CanEdit: true}, added.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("delete without canDelete: error = %v, want ErrForbidden", err)
	}

	if err := svc.Delete(ctx, authz.Full, "missing"); err != nil {
		t.Errorf("delete of absent id should be a no-op, got %v", err)
	}

	if err := svc.Delete(ctx, authz.Full, added.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	movies, _ := svc.List(ctx)
	if len(movies) != 0 {
		t.Errorf("catalog length = %d after delete, want 0", len(movies))
	}
}

func TestSearch(t *testing.T) {
	movies := []Movie{
		{ID: "1", Title: "Spirited Away", Genre: "Fantasy"},
		{ID: "2", Title: "Heat", Genre: "Crime"},
		{ID: "3", Title: "Collateral", Genre: "crime thriller"},
	}

	if got := Search(movies, "spirit"); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("Search(spirit) = %v, want movie 1", got)
	}
	if got := Search(movies, "CRIME"); len(got) != 2 {
		t.Errorf("Search(CRIME) matched %d movies, want 2", len(got))
	}
	if got := Search(movies, "  "); len(got) != 3 {
		t.Errorf("blank query matched %d movies, want all 3", len(got))
	}
}

func TestTrendingAndGenres(t *testing.T) {
	movies := []Movie{
		{ID: "1", Genre: "Fantasy", IsTrending: true},
		{ID: "2", Genre: "Crime"},
		{ID: "3", Genre: "Fantasy"},
		{ID: "4"},
	}

	if got := Trending(movies); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("Trending = %v, want movie 1", got)
	}

	genres := Genres(movies)
	if len(genres) != 2 || genres[0] != "Fantasy" || genres[1] != "Crime" {
		t.Errorf("Genres = %v, want [Fantasy Crime]", genres)
	}
}
