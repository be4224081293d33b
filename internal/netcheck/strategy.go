package netcheck

import (
	"context"
	"time"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/classify"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/exclude"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/transport"
)

// timeNow is injectable for tests
var timeNow = time.Now

// Strategy validates one classified link. The concrete strategy is chosen
// once per request, never re-dispatched per link.
type Strategy interface {
	Validate(ctx context.Context, candidate model.LinkCandidate, cls classify.Classification) model.ValidationResult
}

// Checker runs the per-link state machine: exclusion, format check, then
// the selected strategy. One Checker serves one validation request.
type Checker struct {
	excluder *exclude.Engine
	strategy Strategy
}

// NewChecker builds the per-request checker. For live requests the
// authenticated transport must already be composed; an offline request
// passes composed == nil.
func NewChecker(req *model.ValidationRequest, composed *transport.Composed, opts LiveOptions) *Checker {
	excluder := exclude.NewEngine(req.Exclusions)

	var strategy Strategy
	if req.Offline() || composed == nil {
		strategy = &OfflineStrategy{}
	} else {
		strategy = NewLiveStrategy(req, composed, opts)
	}

	return &Checker{excluder: excluder, strategy: strategy}
}

// Check produces the terminal result for one link candidate
func (c *Checker) Check(ctx context.Context, candidate model.LinkCandidate) model.ValidationResult {
	cls := classify.Classify(candidate.Target)

	// Exclusion short-circuits everything else, including classification-
	// driven network work
	if outcome := c.excluder.Evaluate(candidate.Target); outcome != nil {
		result := outcome.Result(candidate, cls.Type)
		result.CheckedAt = timeNow()
		return result
	}

	if !cls.FormatValid {
		return model.ValidationResult{
			URL:                candidate.Target,
			LinkType:           cls.Type,
			Status:             model.StatusInvalid,
			Message:            cls.ErrorDetail,
			DisplayText:        candidate.DisplayText,
			SourceLocationHint: candidate.SourceLocationHint,
			CheckedAt:          timeNow(),
		}
	}

	result := c.strategy.Validate(ctx, candidate, cls)
	result.DisplayText = candidate.DisplayText
	result.SourceLocationHint = candidate.SourceLocationHint
	result.CheckedAt = timeNow()
	return result
}

// OfflineStrategy validates by classification and format alone; it never
// touches the network and is a pure function of its input.
type OfflineStrategy struct{}

// Validate returns the offline verdict for a format-valid link
func (s *OfflineStrategy) Validate(_ context.Context, candidate model.LinkCandidate, cls classify.Classification) model.ValidationResult {
	return model.ValidationResult{
		URL:      candidate.Target,
		LinkType: cls.Type,
		Status:   model.StatusWorking,
		Message:  "format check only, no network validation",
	}
}
