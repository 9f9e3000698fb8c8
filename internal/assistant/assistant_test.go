package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/holymotion/holymotion/internal/catalog"
)

func completionServer(t *testing.T, reply string, capture *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, capture)
		}
		resp := chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: reply}}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestChat(t *testing.T) {
	var captured chatRequest
	server := completionServer(t, "Try Spirited Away, a magical pick!", &captured)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "mistral-small-latest")
	movies := []catalog.Movie{{Title: "Spirited Away", Genre: "Fantasy", Description: "A girl in a spirit world."}}

	reply, err := client.Chat(context.Background(), CatalogContext(movies), "what should I watch?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "Try Spirited Away, a magical pick!" {
		t.Errorf("reply = %q", reply)
	}

	if captured.Model != "mistral-small-latest" {
		t.Errorf("model = %q, want mistral-small-latest", captured.Model)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(captured.Messages))
	}
	if !strings.Contains(captured.Messages[0].Content, "Spirited Away (Fantasy)") {
		t.Errorf("system prompt missing catalog context: %q", captured.Messages[0].Content)
	}
	if captured.Messages[1].Content != "what should I watch?" {
		t.Errorf("user message = %q", captured.Messages[1].Content)
	}
}

func TestChatEmptyReplyFallsBack(t *testing.T) {
	server := completionServer(t, "   ", nil)
	defer server.Close()

	client := NewClient(server.URL, "", "m")
	reply, err := client.Chat(context.Background(), "", "hello")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != FallbackEmptyReply {
		t.Errorf("reply = %q, want fallback", reply)
	}
}

func TestChatServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "m")
	if _, err := client.Chat(context.Background(), "", "hello"); !errors.Is(err, ErrService) {
		t.Errorf("error = %v, want ErrService", err)
	}
}

func TestGenerateMovieDetails(t *testing.T) {
	detailsJSON := `{"description":"A heist goes wrong.","genre":"Crime","releaseDate":"1995-12-15","directors":["Michael Mann"],"producers":["Art Linson"]}`
	server := completionServer(t, detailsJSON, nil)
	defer server.Close()

	client := NewClient(server.URL, "k", "m")
	details, err := client.GenerateMovieDetails(context.Background(), "Heat")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if details.Genre != "Crime" || details.ReleaseDate != "1995-12-15" {
		t.Errorf("details = %+v", details)
	}
	if len(details.Directors) != 1 || details.Directors[0] != "Michael Mann" {
		t.Errorf("directors = %v", details.Directors)
	}
}

func TestGenerateMovieDetailsStripsFences(t *testing.T) {
	fenced := "```json\n{\"description\":\"d\",\"genre\":\"Drama\",\"releaseDate\":\"2001-01-01\",\"directors\":[],\"producers\":[]}\n```"
	server := completionServer(t, fenced, nil)
	defer server.Close()

	client := NewClient(server.URL, "k", "m")
	details, err := client.GenerateMovieDetails(context.Background(), "X")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if details.Genre != "Drama" {
		t.Errorf("genre = %q, want Drama", details.Genre)
	}
}

func TestGenerateMovieDetailsParseFailure(t *testing.T) {
	server := completionServer(t, "certainly! here are the details you asked for", nil)
	defer server.Close()

	client := NewClient(server.URL, "k", "m")
	if _, err := client.GenerateMovieDetails(context.Background(), "X"); !errors.Is(err, ErrService) {
		t.Errorf("error = %v, want ErrService", err)
	}
}
