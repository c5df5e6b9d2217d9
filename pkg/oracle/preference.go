package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const mergeSystem = "You maintain a short interest profile for a marketplace buyer. " +
	"Combine the current profile with the listing the buyer just asked about into one short phrase of keywords, at most 64 characters. " +
	"Reply with the phrase only."

// PreferenceMerger asks the oracle to fold an item summary into a buyer's
// preference string.
type PreferenceMerger struct {
	Completer Completer
	Timeout   time.Duration
}

func NewPreferenceMerger(c Completer, timeout time.Duration) *PreferenceMerger {
	return &PreferenceMerger{Completer: c, Timeout: timeout}
}

// Merge returns the oracle's combined preference, trimmed of whitespace and
// surrounding quotes. Length limits are the caller's business.
func (m *PreferenceMerger) Merge(ctx context.Context, current, summary string) (string, error) {
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}
	user := fmt.Sprintf("Current profile: %q\nListing: %q", current, summary)
	raw, err := m.Completer.Complete(ctx, Prompt{System: mergeSystem, User: user})
	if err != nil {
		return "", fmt.Errorf("merge preference: %w", err)
	}
	out := strings.Trim(strings.TrimSpace(raw), "\"'`")
	return strings.TrimSpace(out), nil
}
