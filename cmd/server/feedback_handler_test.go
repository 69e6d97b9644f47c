package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"oratoria.app/internal/feedback"
)

func newFeedbackHandler() http.HandlerFunc {
	gen := feedback.New("", time.Second, log.New(io.Discard, "", 0))
	return feedbackHandler(gen)
}

func TestFeedbackHandler_RequiresPost(t *testing.T) {
	ts := httptest.NewServer(newFeedbackHandler())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestFeedbackHandler_RequiresQuestTitle(t *testing.T) {
	ts := httptest.NewServer(newFeedbackHandler())
	defer ts.Close()

	resp, err := http.Post(ts.URL, "application/json", strings.NewReader(`{"submission":"x"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestFeedbackHandler_ReturnsFeedback(t *testing.T) {
	ts := httptest.NewServer(newFeedbackHandler())
	defer ts.Close()

	resp, err := http.Post(ts.URL, "application/json",
		strings.NewReader(`{"quest_title":"Breathing Drill","submission":"done"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d want 200", resp.StatusCode)
	}
	var out struct {
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Feedback == "" {
		t.Fatalf("empty feedback")
	}
}
