// Package analytics records who watched what, with coarse device and
// location info, as a capped per-movie event log in the store.
package analytics

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/holymotion/holymotion/internal/store"
	"github.com/mssola/useragent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	eventsKeyPrefix = "hm_watch_"
	eventLimit      = 200
)

var watchEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "holymotion_watch_events_total",
	Help: "Watch events recorded across all movies.",
})

type WatchEvent struct {
	MovieID   string    `json:"movieId"`
	At        time.Time `json:"at"`
	Browser   string    `json:"browser,omitempty"`
	OS        string    `json:"os,omitempty"`
	Mobile    bool      `json:"mobile,omitempty"`
	Country   string    `json:"country,omitempty"`
	City      string    `json:"city,omitempty"`
}

type Service struct {
	store store.Store
	geo   *GeoResolver
	now   func() time.Time
}

func NewService(st store.Store, geo *GeoResolver) *Service {
	return &Service{store: st, geo: geo, now: time.Now}
}

// Record appends a watch event for the movie, trimming the log to the most
// recent entries.
func (s *Service) Record(ctx context.Context, movieID, userAgentHeader, remoteAddr string) error {
	event := WatchEvent{MovieID: movieID, At: s.now().UTC()}

	if userAgentHeader != "" {
		ua := useragent.New(userAgentHeader)
		name, _ := ua.Browser()
		event.Browser = name
		event.OS = ua.OS()
		event.Mobile = ua.Mobile()
	}

	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		remoteAddr = host
	}
	event.Country, event.City = s.geo.Lookup(remoteAddr)

	events, err := s.List(ctx, movieID)
	if err != nil {
		return err
	}

	events = append([]WatchEvent{event}, events...)
	if len(events) > eventLimit {
		events = events[:eventLimit]
	}

	if err := store.PutJSON(ctx, s.store, eventsKeyPrefix+movieID, events); err != nil {
		return err
	}
	watchEventsTotal.Inc()
	return nil
}

func (s *Service) List(ctx context.Context, movieID string) ([]WatchEvent, error) {
	var events []WatchEvent
	err := store.GetJSON(ctx, s.store, eventsKeyPrefix+movieID, &events)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return events, nil
}
