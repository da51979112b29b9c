package engine

import (
	"context"
	"fmt"
	"time"

	"regi/experiments/metrics"
	"regi/game"
	"regi/searcher"
	"regi/searcher/agent"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Value modes for the training target of an episode.
const (
	ValueHP       = "hp"       // Fraction of total enemy health removed
	ValueWin      = "win"      // 1 on victory, 0 otherwise
	ValueRelative = "relative" // Enemy health removed since the starting phase
)

type Config struct {
	Players     int
	Simulations int     // Simulations per real decision
	Cutoff      int     // Max decisions per simulation
	Temperature float64 // Zero plays greedily
	Value       string
	Seed        uint64
	Rules       game.Rules
}

// SelfPlay drives the rules engine through episodes, searching every real
// decision with simulations that restart from the current phase.
type SelfPlay struct {
	cfg      Config
	mcts     *searcher.MCTS
	rng      *rand.Rand
	selector agent.Selector
}

func NewSelfPlay(mcts *searcher.MCTS, cfg Config) *SelfPlay {
	if cfg.Simulations <= 0 {
		panic("Must specify a positive number of simulations")
	}
	if cfg.Rules == nil {
		cfg.Rules = game.NewStandardRules()
	}
	if cfg.Cutoff <= 0 {
		cfg.Cutoff = MaxMoves
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	selector := agent.NewGreedySelector()
	if cfg.Temperature > 0 {
		selector = agent.NewTrainingSelector(cfg.Temperature, rng)
	}
	return &SelfPlay{cfg: cfg, mcts: mcts, rng: rng, selector: selector}
}

// Evaluator returns the episode value function for mode.
func Evaluator(mode string, start *game.Phase) (game.Evaluate, error) {
	switch mode {
	case ValueHP, "":
		return game.EvaluateHP, nil
	case ValueWin:
		return game.EvaluateWin, nil
	case ValueRelative:
		return game.EvaluateRelativeHP(start), nil
	}
	return nil, fmt.Errorf("unknown value mode %q", mode)
}

// Outcome adapts a phase evaluation to terminal states met during search.
func Outcome(evaluate game.Evaluate) func(searcher.State) float64 {
	return func(s searcher.State) float64 {
		if phase, ok := s.(*game.Phase); ok {
			return evaluate(phase)
		}
		return float64(s.EndValue())
	}
}

func (e *SelfPlay) Play(ctx context.Context) (*Episode, error) {
	players := e.cfg.Players
	if players == 0 {
		players = e.cfg.Rules.MinPlayers() + e.rng.Intn(e.cfg.Rules.MaxPlayers()-e.cfg.Rules.MinPlayers()+1)
	}
	gs, err := game.NewGameState(players, e.cfg.Rules, e.rng)
	if err != nil {
		return nil, err
	}
	e.mcts.Reset()
	return e.run(ctx, gs)
}

func (e *SelfPlay) Resume(ctx context.Context, snapshot string) (*Episode, error) {
	phase, err := game.ParsePhase(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	gs, err := game.FromPhase(phase, e.cfg.Rules, e.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to import snapshot: %w", err)
	}
	e.mcts.Metrics().SetTreeReset(false)
	return e.run(ctx, gs)
}

func abandon(id string, err error) error {
	log.Warn().Err(err).Msgf("abandoning episode %s", id)
	metrics.AddEpisode("abandoned")
	return fmt.Errorf("%w: %w", ErrAbandoned, err)
}

func (e *SelfPlay) run(ctx context.Context, gs *game.GameState) (*Episode, error) {
	start := gs.ExportPhase()
	evaluate, err := Evaluator(e.cfg.Value, start)
	if err != nil {
		return nil, err
	}
	ep := &Episode{ID: uuid.NewString(), StartPhase: start.String()}
	ep.Game = metrics.GameMetric{ID: ep.ID, Players: gs.Players(), StartTime: time.Now()}
	log.Info().Msgf("episode %s starting with %d players", ep.ID, gs.Players())

	traj := searcher.NewTrajectory()
	for step := 1; !gs.Ended() && step <= MaxMoves; step++ {
		if err := ctx.Err(); err != nil {
			return nil, abandon(ep.ID, err)
		}
		root := gs.ExportPhase()
		e.mcts.Metrics().Start(e.mcts.Batched(), e.mcts.BatchSize())
		if err := e.simulate(root, traj); err != nil {
			return nil, abandon(ep.ID, err)
		}
		if err := e.mcts.Flush(); err != nil {
			return nil, abandon(ep.ID, err)
		}

		s, ok := e.mcts.Lookup(root)
		if !ok {
			panic("root was not searched")
		}
		example := e.mcts.Example(s)
		action := e.selector(example.Policy, e.mcts.Legal(s))
		ep.Moves = append(ep.Moves, metrics.MoveMetric{
			Step:         step,
			Player:       gs.Active,
			SearchMetric: e.mcts.Metrics().Complete(),
		})
		if err := gs.Apply(action); err != nil {
			return nil, abandon(ep.ID, fmt.Errorf("failed to play action %d: %w", action, err))
		}
		traj.Follow(s, action)
		ep.Examples = append(ep.Examples, example)
	}

	end := gs.ExportPhase()
	value := evaluate(end)
	for i := range ep.Examples {
		ep.Examples[i].Value = value
	}
	ep.EndPhase = end.String()
	ep.Game.EndValue = end.EndValue()
	ep.Game.Value = value
	ep.Game.EndTime = time.Now()
	ep.Game.Duration = ep.Game.EndTime.Sub(ep.Game.StartTime)
	ep.Game.TotalMoves = len(ep.Moves)
	ep.Game.Examples = len(ep.Examples)

	outcome := "defeat"
	switch end.EndValue() {
	case game.Victory:
		outcome = "victory"
	case game.Ongoing:
		outcome = "cutoff"
	}
	metrics.AddEpisode(outcome)
	log.Info().Msgf("episode %s ended in %s after %d moves, value %.3f", ep.ID, outcome, len(ep.Moves), value)
	return ep, nil
}

// simulate runs the configured simulations from root. Each one replays the
// game from a fresh import of root until it ends, reaches the cutoff, or
// touches a state for the first time.
func (e *SelfPlay) simulate(root *game.Phase, traj *searcher.Trajectory) error {
	for i := 0; i < e.cfg.Simulations; i++ {
		traj.Reset()
		scratch, err := game.FromPhase(root, e.cfg.Rules, e.rng)
		if err != nil {
			return err
		}
		a := agent.New(e.mcts, traj)
		for depth := 0; !scratch.Ended() && depth < e.cfg.Cutoff; depth++ {
			if err := scratch.Step(a); err != nil {
				return fmt.Errorf("simulation %d: %w", i, err)
			}
			if traj.Expanded() {
				break
			}
		}
		if scratch.Ended() {
			if err := a.Observe(scratch.ExportPhase()); err != nil {
				return fmt.Errorf("simulation %d: %w", i, err)
			}
		}
		e.mcts.Metrics().AddSimulation()
	}
	return nil
}
