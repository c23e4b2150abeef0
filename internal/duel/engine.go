package duel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

type EngineConfig struct {
	RoundTimeout  time.Duration
	RematchWindow time.Duration
	// WordRetryDelay is how long to wait before retrying a round whose word
	// could not be fetched.
	WordRetryDelay time.Duration
	// LookupTimeout bounds each dictionary call. Zero means no bound.
	LookupTimeout time.Duration
}

// Engine drives games through their rounds. Every transition, whether caused
// by a player or by a timer, goes through the registry and then through the
// same continue-or-end step.
type Engine struct {
	registry *Registry
	words    WordSource
	sched    *Scheduler
	cfg      EngineConfig
	logger   *slog.Logger
}

func NewEngine(registry *Registry, words WordSource, cfg EngineConfig, logger *slog.Logger) *Engine {
	e := &Engine{
		registry: registry,
		words:    words,
		cfg:      cfg,
		logger:   logger,
	}
	e.sched = NewScheduler(cfg.RoundTimeout, cfg.RematchWindow, e.HandleTimeout, registry)
	return e
}

func (e *Engine) Registry() *Registry { return e.registry }

// Close stops all pending timers.
func (e *Engine) Close() { e.sched.Close() }

// StartFirstRound announces a freshly created game and opens round 1.
func (e *Engine) StartFirstRound(ctx context.Context, gameID string) {
	if !e.registry.AnnounceStart(gameID) {
		return
	}
	e.startRound(ctx, gameID, Ticket{Match: 1, Round: 1})
}

// HandleAnswer resolves the round if text is a correct reading. Answers that
// miss the prompt's readings are checked against the dictionary before being
// rejected with ErrWrongAnswer.
func (e *Engine) HandleAnswer(ctx context.Context, playerID, text string) error {
	res, err := e.registry.SubmitAnswer(playerID, text)
	if errors.Is(err, ErrWrongAnswer) {
		res, err = e.validate(ctx, playerID, text)
	}
	if err != nil {
		return err
	}
	e.advance(ctx, res)
	return nil
}

func (e *Engine) validate(ctx context.Context, playerID, text string) (Resolution, error) {
	if text == "" {
		return Resolution{}, ErrWrongAnswer
	}
	gameID, kanji, t, ok := e.registry.CurrentRound(playerID)
	if !ok {
		return Resolution{}, ErrNoActiveRound
	}

	ctx, cancel := e.lookupContext(ctx)
	defer cancel()

	valid, err := e.words.IsValidReading(ctx, kanji, text)
	if err != nil {
		e.logger.Warn("validate reading", "game_id", gameID, "kanji", kanji, "error", err)
		return Resolution{}, ErrWrongAnswer
	}
	if !valid {
		return Resolution{}, ErrWrongAnswer
	}
	return e.registry.AcceptAnswer(playerID, t)
}

// HandleSkip records a skip. The round resolves once both players skipped.
func (e *Engine) HandleSkip(ctx context.Context, playerID string) (SkipKind, error) {
	kind, res, err := e.registry.RecordSkip(playerID)
	if err != nil {
		return 0, err
	}
	if kind == BothSkipped {
		e.advance(ctx, res)
	}
	return kind, nil
}

// HandleRematch records a rematch request and starts the next match once both
// players asked for one.
func (e *Engine) HandleRematch(ctx context.Context, playerID string) (RematchKind, error) {
	kind, t, gameID, err := e.registry.RequestRematch(playerID)
	if err != nil {
		return 0, err
	}
	if kind == RematchStart {
		e.startRound(ctx, gameID, t)
	}
	return kind, nil
}

// HandleTimeout is the scheduler callback. A fire for a round that already
// resolved, or for a game that no longer exists, does nothing.
func (e *Engine) HandleTimeout(gameID string, t Ticket) {
	res, ok := e.registry.TimeoutRound(gameID, t)
	if !ok {
		e.logger.Debug("stale timeout", "game_id", gameID, "match", t.Match, "round", t.Round)
		return
	}
	e.advance(context.Background(), res)
}

// Disconnect removes playerID's game and tells the opponent. It reports
// whether a game was removed; repeated calls are no-ops.
func (e *Engine) Disconnect(playerID string) bool {
	rm, ok := e.registry.RemovePlayer(playerID)
	if !ok {
		return false
	}
	if rm.OpponentOutbox != nil {
		rm.OpponentOutbox.Send(OpponentDisconnectedMsg())
	}
	return true
}

// advance is the continue-or-end step run after every resolution.
func (e *Engine) advance(ctx context.Context, res Resolution) {
	if res.Verdict.Over {
		winner := ""
		if res.Verdict.Winner != nil {
			winner = res.Verdict.Winner.ID
		}
		e.logger.Info("game over", "game_id", res.GameID, "winner", winner, "scores", res.Scores)
		e.sched.ArmExpiry(res.GameID)
		return
	}
	e.startRound(ctx, res.GameID, res.Ticket.Next())
}

func (e *Engine) startRound(ctx context.Context, gameID string, t Ticket) {
	e.tryRound(ctx, gameID, t, 1)
}

// tryRound fetches a word and starts round t. Failures are logged at error
// level once per round; later attempts log at debug with a doubling delay.
func (e *Engine) tryRound(ctx context.Context, gameID string, t Ticket, attempt int) {
	word, err := e.nextWord(ctx)
	if err != nil {
		if attempt == 1 {
			e.logger.Error("fetch word", "game_id", gameID, "round", t.Round, "error", err)
		} else {
			e.logger.Debug("fetch word retry", "game_id", gameID, "round", t.Round, "attempt", attempt, "error", err)
		}
		e.retry(gameID, t, attempt)
		return
	}
	if attempt > 1 {
		e.logger.Info("word source recovered", "game_id", gameID, "round", t.Round, "attempts", attempt)
	}
	if err := e.registry.StartRound(gameID, t, word); err != nil {
		e.logger.Debug("round not started", "game_id", gameID, "round", t.Round, "error", err)
		return
	}
	e.sched.Arm(gameID, t)
}

// maxRetryBackoff caps the retry delay at this multiple of WordRetryDelay.
const maxRetryBackoff = 16

func (e *Engine) retry(gameID string, t Ticket, attempt int) {
	e.sched.After(retryDelay(e.cfg.WordRetryDelay, attempt), func() {
		if !e.registry.Contains(gameID) {
			return
		}
		e.tryRound(context.Background(), gameID, t, attempt+1)
	})
}

// retryDelay doubles base after every failed attempt, up to maxRetryBackoff.
func retryDelay(base time.Duration, attempt int) time.Duration {
	factor := 1
	for i := 1; i < attempt && factor < maxRetryBackoff; i++ {
		factor *= 2
	}
	return base * time.Duration(factor)
}

// nextWord draws a prompt with every accepted reading attached. It runs
// outside any game lock and survives cancellation of ctx, which may belong to
// a connection that is going away.
func (e *Engine) nextWord(ctx context.Context) (Word, error) {
	ctx, cancel := e.lookupContext(context.WithoutCancel(ctx))
	defer cancel()

	w, err := e.words.Random(ctx)
	if err != nil {
		return Word{}, fmt.Errorf("random word: %w", err)
	}
	readings, err := e.words.Readings(ctx, w.Kanji)
	if err != nil {
		e.logger.Warn("load readings", "kanji", w.Kanji, "error", err)
		return w, nil
	}
	w.Alternates = slices.Clone(w.Alternates)
	for _, r := range readings {
		if r != w.Reading && !slices.Contains(w.Alternates, r) {
			w.Alternates = append(w.Alternates, r)
		}
	}
	return w, nil
}

func (e *Engine) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.LookupTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.LookupTimeout)
}
