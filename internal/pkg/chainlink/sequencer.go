package chainlink

import (
	"context"
	"fmt"

	"github.com/pwndao/loan-pricing/internal/domain/entity"
)

// checkSequencerUptime gates every conversion on L2 deployments: no price is
// trusted until the sequencer has been continuously up for longer than the
// grace period. Off L2 (no uptime feed configured) the guard does nothing.
// The state is read fresh on every call and never stored.
func (e *Engine) checkSequencerUptime(ctx context.Context) error {
	if e.sequencerFeed == nil {
		return nil
	}

	round, _, err := e.feeds.LatestRound(ctx, *e.sequencerFeed)
	if err != nil {
		return fmt.Errorf("reading sequencer uptime feed: %w", err)
	}

	state := entity.LivenessFromRound(round)
	if !state.IsUp {
		return ErrSequencerDown
	}
	if elapsed := e.now().Sub(state.StartedAt); elapsed <= e.gracePeriod {
		return &GracePeriodNotOverError{Elapsed: elapsed, GracePeriod: e.gracePeriod}
	}
	return nil
}
