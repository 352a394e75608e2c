package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/tuivocab/internal/model"
	"github.com/verte-zerg/tuivocab/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Rounds         []model.RoundAggregate
	WindowRoundIDs []int64
	TermsAll       []model.TermAggregate
	TermsWindow    []model.TermAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	rounds, err := st.ListRounds(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(rounds) > cfg.Last {
		rounds = rounds[len(rounds)-cfg.Last:]
	}

	windowIDs := lastRoundIDs(rounds, cfg.CurveWindow)
	termsAll, err := st.ListTermAggregates(ctx, roundIDs(rounds))
	if err != nil {
		return Report{}, err
	}
	termsWindow, err := st.ListTermAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Rounds:         rounds,
		WindowRoundIDs: windowIDs,
		TermsAll:       termsAll,
		TermsWindow:    termsWindow,
	}, nil
}

// Render writes the summary, accuracy curve, and hardest-term tables.
func (r Report) Render(w io.Writer, cfg model.StatsConfig, totalWidth int, useColor bool) error {
	if err := RenderSummary(w, r.Rounds); err != nil {
		return err
	}
	if len(r.Rounds) == 0 {
		return nil
	}
	if err := RenderCurve(w, r.Rounds, cfg.CurveWindow, totalWidth, 0, useColor); err != nil {
		return err
	}
	if err := RenderTermTable(w, "Hardest Terms (Recent)", r.TermsWindow, cfg.Top); err != nil {
		return err
	}
	return RenderTermTable(w, "Hardest Terms (All)", r.TermsAll, cfg.Top)
}

func roundIDs(rounds []model.RoundAggregate) []int64 {
	ids := make([]int64, len(rounds))
	for i, r := range rounds {
		ids[i] = r.RoundID
	}
	return ids
}

func lastRoundIDs(rounds []model.RoundAggregate, window int) []int64 {
	if window <= 0 || len(rounds) <= window {
		return roundIDs(rounds)
	}
	return roundIDs(rounds[len(rounds)-window:])
}
