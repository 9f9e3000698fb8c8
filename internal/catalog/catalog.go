// Package catalog owns the shared movie list. Reads are open to everyone;
// every mutation is gated on the caller's permission set and rewrites the
// whole persisted snapshot.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/holymotion/holymotion/internal/authz"
	"github.com/holymotion/holymotion/internal/store"
)

const moviesKey = "hm_movies"

var (
	ErrIncompleteMovie = errors.New("title, cover and video are required")
	ErrNotFound        = errors.New("movie not found")
)

type Service struct {
	store store.Store
	newID func() string
}

func NewService(st store.Store) *Service {
	return &Service{store: st, newID: uuid.NewString}
}

func (s *Service) List(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	err := store.GetJSON(ctx, s.store, moviesKey, &movies)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// Add publishes a new movie at the head of the catalog.
func (s *Service) Add(ctx context.Context, perms authz.PermissionSet, draft Draft) (Movie, error) {
	if !perms.CanPublish {
		return Movie{}, authz.ErrForbidden
	}
	if !draft.complete() {
		return Movie{}, ErrIncompleteMovie
	}

	movies, err := s.List(ctx)
	if err != nil {
		return Movie{}, err
	}

	movie := draft.movie(s.newID())
	movies = append([]Movie{movie}, movies...)
	if err := store.PutJSON(ctx, s.store, moviesKey, movies); err != nil {
		return Movie{}, err
	}
	return movie, nil
}

func (s *Service) Update(ctx context.Context, perms authz.PermissionSet, id string, draft Draft) (Movie, error) {
	if !perms.CanEdit {
		return Movie{}, authz.ErrForbidden
	}
	if !draft.complete() {
		return Movie{}, ErrIncompleteMovie
	}

	movies, err := s.List(ctx)
	if err != nil {
		return Movie{}, err
	}

	for i, m := range movies {
		if m.ID != id {
			continue
		}
		updated := draft.movie(id)
		movies[i] = updated
		if err := store.PutJSON(ctx, s.store, moviesKey, movies); err != nil {
			return Movie{}, err
		}
		return updated, nil
	}
	return Movie{}, ErrNotFound
}

// Delete removes a movie; deleting an absent id is not an error.
func (s *Service) Delete(ctx context.Context, perms authz.PermissionSet, id string) error {
	if !perms.CanDelete {
		return authz.ErrForbidden
	}

	movies, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := movies[:0]
	for _, m := range movies {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return store.PutJSON(ctx, s.store, moviesKey, kept)
}

func (s *Service) Get(ctx context.Context, id string) (Movie, error) {
	movies, err := s.List(ctx)
	if err != nil {
		return Movie{}, err
	}
	for _, m := range movies {
		if m.ID == id {
			return m, nil
		}
	}
	return Movie{}, ErrNotFound
}
