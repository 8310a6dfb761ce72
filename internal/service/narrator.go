package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/serendigo/serendigo-backend-go/internal/logger"
)

// LogNarrator records what a session announced and whether its guide audio
// is playing. Speech itself happens on the client.
type LogNarrator struct {
	sessionID string

	mu      sync.Mutex
	last    string
	playing bool
}

// NewLogNarrator creates a narrator for one session.
func NewLogNarrator(sessionID string) *LogNarrator {
	return &LogNarrator{sessionID: sessionID}
}

// Announce replaces the current utterance.
func (n *LogNarrator) Announce(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	n.last = text
	n.mu.Unlock()

	logger.Log.Debug("announce",
		zap.String("session_id", n.sessionID),
		zap.String("text", text),
	)
	return nil
}

// ToggleAudio flips guide audio between playing and paused.
func (n *LogNarrator) ToggleAudio(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n.mu.Lock()
	n.playing = !n.playing
	playing := n.playing
	n.mu.Unlock()

	logger.Log.Debug("toggle audio",
		zap.String("session_id", n.sessionID),
		zap.Bool("playing", playing),
	)
	return playing, nil
}

// Last returns the most recent announcement.
func (n *LogNarrator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// Playing reports the audio state.
func (n *LogNarrator) Playing() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.playing
}
