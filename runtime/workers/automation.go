package workers

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	stderrors "errors"

	"radchat/errors"
)

// ITurnRunner is the slice of the coordinator this worker needs.
type ITurnRunner interface {
	RunAutomatedTurn(ctx context.Context) (string, error)
}

// AutomationWorker triggers automated turns on a randomized cadence so
// the room feels alive without sounding like a metronome. The actual
// interval is drawn uniformly between half and one and a half times the
// mean.
type AutomationWorker struct {
	log          *slog.Logger
	runner       ITurnRunner
	meanInterval time.Duration
}

func NewAutomationWorker(log *slog.Logger, runner ITurnRunner, meanInterval time.Duration) *AutomationWorker {
	return &AutomationWorker{log: log, runner: runner, meanInterval: meanInterval}
}

func (w *AutomationWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping automation")
			return nil
		case <-time.After(w.nextDelay()):
			if _, err := w.runner.RunAutomatedTurn(ctx); err != nil {
				w.report(err)
			}
		}
	}
}

// report logs quiet-room outcomes at debug level, they are expected
// during normal operation.
func (w *AutomationWorker) report(err error) {
	switch {
	case stderrors.Is(err, errors.ErrNoAudience),
		stderrors.Is(err, errors.ErrNoEnabledRobots),
		stderrors.Is(err, errors.ErrEmptyHistory),
		stderrors.Is(err, errors.ErrAlreadyRunning):
		w.log.Debug("Automated turn skipped", slog.Any("reason", err))
	default:
		w.log.Warn("Automated turn failed", slog.Any("error", err))
	}
}

func (w *AutomationWorker) nextDelay() time.Duration {
	half := w.meanInterval / 2
	return half + time.Duration(rand.Int63n(int64(w.meanInterval)))
}
