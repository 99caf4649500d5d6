// Package flags persists the handful of boolean preferences the app keeps
// between runs, such as whether the Daily Talk tip has been shown.
package flags

import "fmt"

const (
	// TutorialCompleted is set once the Daily Talk tip has been shown.
	TutorialCompleted = "tutorialCompleted"
	// VoiceDisabled is set while the learner has muted the bot voice.
	VoiceDisabled = "voiceDisabled"
)

// Store is a persisted key-value set of booleans. A missing key reads as false.
type Store interface {
	Get(key string) (bool, error)
	Set(key string, value bool) error
	Delete(key string) error
	Close() error
}

// ProgressKeys are cleared by Reset.
var ProgressKeys = []string{TutorialCompleted}

// Reset clears the learner's progress flags.
func Reset(s Store) error {
	for _, key := range ProgressKeys {
		if err := s.Delete(key); err != nil {
			return fmt.Errorf("failed to reset flag %s: %w", key, err)
		}
	}
	return nil
}
