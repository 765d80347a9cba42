package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"radchat/contract"
	"radchat/domain"
	"radchat/domain/event"
	"radchat/errors"
)

const (
	generationAttempts = 3
	attemptBackoff     = 500 * time.Millisecond
	sleepNoticeText    = "The robots went to sleep. Enable one to wake the room up."
)

// TurnSettings drives one automated turn. WindowSize bounds the prompt
// context, Retention is the larger persisted cap applied after every
// automated append.
type TurnSettings struct {
	WindowSize        int
	Template          string
	Separator         string
	Retention         int
	GenerationTimeout time.Duration
}

// Coordinator runs the automated conversation turns. At most one turn
// is in flight at any time; a trigger arriving while a turn runs is
// rejected instead of queued.
type Coordinator struct {
	turnMu    sync.Mutex
	log       *slog.Logger
	registry  contract.IRegistry
	roster    contract.IRoster
	history   contract.IHistory
	generator contract.IGenerator
	bus       contract.IBus
	settings  TurnSettings

	rotationMu  sync.Mutex
	lastSpeaker string
}

func NewCoordinator(log *slog.Logger, registry contract.IRegistry, roster contract.IRoster,
	history contract.IHistory, generator contract.IGenerator, bus contract.IBus,
	settings TurnSettings) *Coordinator {
	return &Coordinator{
		log:       log,
		registry:  registry,
		roster:    roster,
		history:   history,
		generator: generator,
		bus:       bus,
		settings:  settings,
	}
}

// RunAutomatedTurn performs one complete turn: precondition checks,
// speaker rotation, prompt assembly, generation with retries, then
// persist, broadcast and trim. Every early exit reports why the room
// stayed silent. On success the generated text is returned to the
// trigger.
func (c *Coordinator) RunAutomatedTurn(ctx context.Context) (string, error) {
	if !c.turnMu.TryLock() {
		return "", errors.ErrAlreadyRunning
	}
	defer c.turnMu.Unlock()

	if c.registry.LiveCount() == 0 {
		return "", errors.ErrNoAudience
	}
	enabled := c.roster.Enabled()
	if len(enabled) == 0 {
		return "", errors.ErrNoEnabledRobots
	}
	if c.settings.WindowSize <= 0 {
		return "", errors.ErrConfigurationMissing
	}
	recent, err := c.history.Recent(c.settings.WindowSize)
	if err != nil {
		return "", err
	}
	if len(recent) == 0 {
		return "", errors.ErrEmptyHistory
	}
	if c.settings.Template == "" {
		return "", errors.ErrConfigurationMissing
	}

	robot := c.nextSpeaker(enabled)
	prompt := c.buildPrompt(robot, recent)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return "", c.putRobotsToSleep(err)
	}

	entry, err := c.history.Append(text, robot.Name)
	if err != nil {
		return "", err
	}
	c.bus.Publish(event.Message{
		Author:    robot.Name,
		Text:      entry.Text,
		Robot:     true,
		LiveCount: c.registry.LiveCount(),
		At:        entry.CreatedAt,
	})
	return entry.Text, c.history.Trim(c.settings.Retention)
}

// NotifyTyping broadcasts a transient composing indicator. The external
// trigger calls it ahead of a turn; the turn itself never emits one.
// Like a real turn it requires at least one awake robot, but it mutates
// nothing.
func (c *Coordinator) NotifyTyping(duration time.Duration) error {
	if len(c.roster.Enabled()) == 0 {
		return errors.ErrNoEnabledRobots
	}
	c.bus.Publish(event.Typing{Role: "robot", Duration: duration})
	return nil
}

// nextSpeaker draws a random enabled robot, excluding the previous
// speaker whenever at least one alternative exists. The rotation state
// is written before generation starts; a failed turn still counts as
// that robot's turn.
func (c *Coordinator) nextSpeaker(enabled []domain.RoboChatter) domain.RoboChatter {
	c.rotationMu.Lock()
	defer c.rotationMu.Unlock()

	candidates := enabled
	if len(enabled) > 1 {
		filtered := lo.Filter(enabled, func(robot domain.RoboChatter, _ int) bool {
			return robot.Name != c.lastSpeaker
		})
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	chosen := candidates[rand.Intn(len(candidates))]
	c.lastSpeaker = chosen.Name
	return chosen
}

// buildPrompt splits the window into the triggering post (the newest
// entry) and the preceding context rendered oldest first.
func (c *Coordinator) buildPrompt(robot domain.RoboChatter, recent []domain.ChatEntry) string {
	trigger := recent[0]
	older := recent[1:]

	lines := make([]string, 0, len(older))
	for i := len(older) - 1; i >= 0; i-- {
		lines = append(lines, renderEntry(older[i]))
	}

	replacer := strings.NewReplacer(
		"{name}", robot.Name,
		"{persona}", robot.Description,
		"{history}", strings.Join(lines, c.settings.Separator),
		"{last_message}", renderEntry(trigger),
	)
	return replacer.Replace(c.settings.Template)
}

func renderEntry(entry domain.ChatEntry) string {
	return fmt.Sprintf("%s: %s", entry.Author, entry.Text)
}

// generate tries the provider a few times with a fresh deadline per
// attempt. The parent context aborts the whole sequence.
func (c *Coordinator) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= generationAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.settings.GenerationTimeout)
		text, err := c.generator.Generate(attemptCtx, prompt)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		c.log.Warn("Generation attempt failed",
			slog.Int("attempt", attempt),
			slog.Any("error", err))

		if attempt == generationAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(attemptBackoff):
		}
	}
	return "", lastErr
}

// putRobotsToSleep disables the whole roster after the provider gave up.
// The sleep state is not persisted, the next arrival into an empty room
// wakes everyone again.
func (c *Coordinator) putRobotsToSleep(cause error) error {
	c.roster.SetAllEnabled(false)
	c.bus.Publish(event.SystemNotice{Text: sleepNoticeText})
	c.bus.Publish(event.RosterRefresh{})
	c.log.Warn("Provider exhausted, all robots disabled", slog.Any("error", cause))
	return errors.ErrProviderExhausted
}
