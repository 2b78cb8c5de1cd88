// Package report writes the per-session record files and the run summary
// consumed by downstream scoring and merging tools.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datadigshawn/aiSpeech-2026/internal/session"
	"github.com/datadigshawn/aiSpeech-2026/internal/timeline"
)

// Session terminal statuses.
const (
	StatusOK       = "ok"
	StatusNoSpeech = "no_speech"
)

// Summary reports what one session produced, so a partially degraded run
// is observable rather than silent.
type Summary struct {
	SessionID     string  `json:"session_id"`
	SourceName    string  `json:"source_name"`
	Status        string  `json:"status"`
	Segments      int     `json:"segments"`
	Recognized    int     `json:"recognized"`
	Degraded      int     `json:"degraded"`
	AlignmentGaps int     `json:"alignment_gaps"`
	ClampedTokens int     `json:"clamped_tokens"`
	SpeechRatio   float64 `json:"speech_ratio"`
}

// Write lays down the session's record files in dir:
// session_metadata.json, chunks_timeline.json, aligned_<model>.json (when
// events exist), and report.json.
func Write(dir string, sess *session.Session, tl *timeline.Timeline, events *timeline.Events, sum Summary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, "session_metadata.json"), sess.Record()); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "chunks_timeline.json"), tl.Record()); err != nil {
		return err
	}
	if events != nil {
		name := fmt.Sprintf("aligned_%s.json", events.Model)
		if err := writeJSON(filepath.Join(dir, name), events.Record()); err != nil {
			return err
		}
	}
	return writeJSON(filepath.Join(dir, "report.json"), sum)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
