package detour

import (
	"context"
	"fmt"
)

// Narrator is the speech and audio capability the screens provide.
type Narrator interface {
	// Announce speaks text, replacing whatever is being spoken.
	Announce(ctx context.Context, text string) error
	// ToggleAudio flips guide audio between playing and paused and
	// reports whether it is now playing.
	ToggleAudio(ctx context.Context) (bool, error)
}

// SpotNarration is the sentence read out for a spot card.
func SpotNarration(s Spot, mode Mode) string {
	return fmt.Sprintf("%s。%s。%s。%sで約%d分、距離は約%dメートルです。",
		s.Name, s.Genre, s.Desc, modeLabel(mode), s.EtaMin, s.DistanceM)
}

// AnnounceSpot reads the spot out through n.
func AnnounceSpot(ctx context.Context, n Narrator, s Spot, mode Mode) (string, error) {
	text := SpotNarration(s, mode)
	if err := n.Announce(ctx, text); err != nil {
		return "", fmt.Errorf("failed to announce spot %s: %w", s.ID, err)
	}
	return text, nil
}
