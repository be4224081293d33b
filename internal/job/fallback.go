package job

import (
	"context"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
)

// FallbackValidator is the boundary contract for the optional
// browser-automation collaborator. After the live pass, links the engine
// marked BLOCKED or TIMEOUT are offered to the collaborator; its verdicts
// use the same status vocabulary and replace the originals. The engine
// neither embeds nor depends on the collaborator's implementation.
type FallbackValidator interface {
	Validate(ctx context.Context, urls []string) ([]model.FallbackResult, error)
}

// fallbackEligible reports whether a result should be offered to the
// fallback collaborator
func fallbackEligible(result model.ValidationResult) bool {
	return result.Status == model.StatusBlocked || result.Status == model.StatusTimeout
}
