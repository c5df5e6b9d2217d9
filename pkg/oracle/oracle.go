// Package oracle talks to the external ranking oracle, a chat model that is
// asked to order candidates and to fold item summaries into a buyer's
// preference string. Its answers are untrusted text; callers validate them.
package oracle

import (
	"context"
	"errors"
)

// Prompt is one oracle request.
type Prompt struct {
	System string
	User   string
	// JSON asks backends that support it to constrain output to JSON.
	JSON bool
}

// Completer is the transport to a chat model. Implementations return the raw
// text of the first answer.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Modeler is implemented by completers that know their model name. It is used
// to scope cache keys.
type Modeler interface {
	Model() string
}

var ErrEmptyResponse = errors.New("oracle returned no answer")

func modelOf(c Completer) string {
	if m, ok := c.(Modeler); ok {
		return m.Model()
	}
	return ""
}
