package storage

import (
	"context"
	"strings"
	"testing"
	"time"
)

func newTestStorage(t *testing.T, maxBytes int64) *Storage {
	t.Helper()
	s, err := New(context.Background(), Config{
		Endpoint:       "http://localhost:3900",
		Bucket:         "holymotion-test",
		AccessKey:      "test",
		SecretKey:      "test",
		MaxUploadBytes: maxBytes,
	})
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	return s
}

func TestGenerateUploadURL(t *testing.T) {
	s := newTestStorage(t, 0)

	url, err := s.GenerateUploadURL(context.Background(), "covers/abc", "image/jpeg", 1024, time.Minute)
	if err != nil {
		t.Fatalf("presign upload: %v", err)
	}
	if !strings.Contains(url, "covers/abc") {
		t.Errorf("url %q missing object key", url)
	}
	if !strings.Contains(url, "X-Amz-Signature") {
		t.Errorf("url %q not signed", url)
	}
}

func TestGenerateUploadURLRejectsOversize(t *testing.T) {
	s := newTestStorage(t, 100)

	if _, err := s.GenerateUploadURL(context.Background(), "videos/big", "video/mp4", 101, time.Minute); err == nil {
		t.Error("expected error for upload above the size limit")
	}
}

func TestGenerateDownloadURL(t *testing.T) {
	s := newTestStorage(t, 0)

	url, err := s.GenerateDownloadURL(context.Background(), "videos/abc", time.Hour)
	if err != nil {
		t.Fatalf("presign download: %v", err)
	}
	if !strings.Contains(url, "videos/abc") {
		t.Errorf("url %q missing object key", url)
	}
}

func TestPublicEndpointUsedForPresigning(t *testing.T) {
	s, err := New(context.Background(), Config{
		Endpoint:       "http://internal:3900",
		PublicEndpoint: "https://media.example.com",
		Bucket:         "holymotion-test",
		AccessKey:      "test",
		SecretKey:      "test",
	})
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	url, err := s.GenerateDownloadURL(context.Background(), "covers/abc", time.Minute)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(url, "https://media.example.com") {
		t.Errorf("url %q should use the public endpoint", url)
	}
}
