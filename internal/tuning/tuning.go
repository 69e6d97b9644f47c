// Package tuning holds operational parameters. Rule constants (XP curve,
// coin awards, skill bumps) live with the engine; tuning is only the knobs
// an operator may turn without changing game semantics.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	// SaveDebounceMs is the quiet period before a mutated profile is
	// written back; rapid successive intents coalesce into one write.
	SaveDebounceMs int `yaml:"save_debounce_ms"`

	// SnapshotEverySaves exports a zstd profile snapshot after this many
	// store writes for a user (0 disables snapshots).
	SnapshotEverySaves int `yaml:"snapshot_every_saves"`

	WSReadTimeoutS  int `yaml:"ws_read_timeout_s"`
	WSWriteTimeoutS int `yaml:"ws_write_timeout_s"`

	// FeedbackURL is the external feedback generator endpoint; empty means
	// canned fallback only.
	FeedbackURL       string `yaml:"feedback_url"`
	FeedbackTimeoutMs int    `yaml:"feedback_timeout_ms"`
}

func Defaults() Tuning {
	return Tuning{
		SaveDebounceMs:     2000,
		SnapshotEverySaves: 50,
		WSReadTimeoutS:     60,
		WSWriteTimeoutS:    5,
		FeedbackTimeoutMs:  4000,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.SaveDebounceMs < 0 {
		return t, fmt.Errorf("tuning.yaml: save_debounce_ms must be >= 0")
	}
	return t, nil
}
