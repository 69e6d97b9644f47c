// Package feedback produces short coaching texts for completed quests. A
// remote generator service is optional; without one, or when the call
// fails, a deterministic canned response keyed by the quest topic is used.
// Feedback never touches progression state.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

type Generator struct {
	url    string
	client *http.Client
	log    *log.Logger
}

// New builds a generator. An empty url disables the remote service and
// every request is answered from the canned set.
func New(url string, timeout time.Duration, logger *log.Logger) *Generator {
	return &Generator{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    logger,
	}
}

type remoteRequest struct {
	QuestTitle string `json:"quest_title"`
	Submission string `json:"submission"`
}

type remoteResponse struct {
	Feedback string `json:"feedback"`
}

// QuestFeedback returns coaching text for a completed quest. It always
// returns something useful; remote failures degrade to the canned set.
func (g *Generator) QuestFeedback(ctx context.Context, questTitle, submission string) string {
	if g.url == "" {
		return canned(questTitle)
	}
	text, err := g.remote(ctx, questTitle, submission)
	if err != nil {
		g.log.Printf("feedback service: %v", err)
		return canned(questTitle)
	}
	return text
}

func (g *Generator) remote(ctx context.Context, questTitle, submission string) (string, error) {
	body, err := json.Marshal(remoteRequest{QuestTitle: questTitle, Submission: submission})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Feedback) == "" {
		return "", fmt.Errorf("empty feedback")
	}
	return out.Feedback, nil
}

// canned picks a response from the quest topic. Deterministic so offline
// behavior is testable.
func canned(questTitle string) string {
	title := strings.ToLower(questTitle)
	switch {
	case strings.Contains(title, "breath"):
		return "Great start! Your breathing sounded calm. Try making the exhale a little longer than the inhale for an even more relaxing effect."
	case strings.Contains(title, "presentation"):
		return "Excellent energy! You smiled and spoke clearly. Next time, try adding a hand gesture to emphasize one of your strengths."
	case strings.Contains(title, "tongue twister"):
		return "Well done! Your speed increased steadily. I noticed a slight hesitation on the last repetition. Practice once more for a perfect run!"
	default:
		return "Good work completing this quest! Keep practicing to sharpen your skills further. Consistency is the key to success."
	}
}
