package simulate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/underdog/pkg/logger"
	"golang.org/x/time/rate"
)

// ErrInvalidConfig reports unusable simulation settings.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Run creates a session on the service at config.BaseURL, plays
// config.Rounds random rounds and verifies every report it gets back.
// Verification failures stop the run; the stats gathered so far are
// returned alongside the error.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.Rounds < 0 {
		return nil, fmt.Errorf("%w: rounds must not be negative", ErrInvalidConfig)
	}
	log := logger.Named("simulate")
	stats := &Stats{
		Wins:        make(map[string]int),
		Recommended: make(map[string]int),
		StartTime:   time.Now(),
	}
	defer func() {
		stats.EndTime = time.Now()
		stats.Duration = stats.EndTime.Sub(stats.StartTime)
	}()

	client := NewClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Learn the roster and window sizes
	roster, err := client.Roster(ctx)
	if err != nil {
		return stats, fmt.Errorf("roster retrieval failed: %w", err)
	}
	if len(roster.Competitors) == 0 {
		return stats, fmt.Errorf("%w: empty roster", ErrVerification)
	}

	// Step 3: Create the session
	gen := NewGenerator(roster.Competitors, config.Seed)
	sess, err := client.CreateSession(ctx, gen.Inputs(roster.RecentSize, roster.WindowSize))
	if err != nil {
		return stats, fmt.Errorf("session creation failed: %w", err)
	}
	stats.SessionID = sess.ID
	if err := verifyInto(stats, roster, sess.Report); err != nil {
		return stats, err
	}
	log.Info(ctx, "session created",
		logger.String("session", sess.ID),
		logger.Int("rounds", config.Rounds),
		logger.Float64("rps", config.RPS))

	if !config.Keep {
		defer func() {
			if err := client.DeleteSession(context.WithoutCancel(ctx), sess.ID); err != nil {
				log.Warn(ctx, "failed to delete session", logger.String("session", sess.ID), logger.Error(err))
			}
		}()
	}

	// Step 4: Play rounds
	var limiter *rate.Limiter
	if config.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RPS), 1)
	}
	lastRoundID := ""
	for i := 1; i <= config.Rounds; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return stats, fmt.Errorf("round %d: %w", i, err)
			}
		}

		if config.ReplayEvery > 0 && lastRoundID != "" && i%config.ReplayEvery == 0 {
			if err := replay(ctx, client, sess.ID, gen.Winner(), lastRoundID, stats); err != nil {
				return stats, fmt.Errorf("round %d: %w", i, err)
			}
		}

		winner := gen.Winner()
		roundID := uuid.NewString()
		next, err := client.PlayRound(ctx, sess.ID, winner, roundID)
		if err != nil {
			stats.Failed++
			log.Warn(ctx, "round failed", logger.Int("round", i), logger.Error(err))
			continue
		}
		lastRoundID = roundID
		stats.RoundsPlayed++
		stats.Wins[winner]++

		if err := verifyInto(stats, roster, next.Report); err != nil {
			return stats, fmt.Errorf("round %d: %w", i, err)
		}
		if config.Verbose {
			log.Info(ctx, "round played",
				logger.Int("round", i),
				logger.String("winner", winner),
				logger.Strings("recommended", next.Report.Recommendation))
		}
	}

	// Step 5: The stored round count must match what was played
	final, err := client.Session(ctx, sess.ID)
	if err != nil {
		return stats, fmt.Errorf("final session retrieval failed: %w", err)
	}
	if final.Rounds != stats.RoundsPlayed {
		return stats, fmt.Errorf("%w: session reports %d rounds, played %d", ErrVerification, final.Rounds, stats.RoundsPlayed)
	}

	log.Info(ctx, "simulation completed",
		logger.Int("played", stats.RoundsPlayed),
		logger.Int("verified", stats.Verified),
		logger.Int("failed", stats.Failed))
	return stats, nil
}

// replay resends an applied round ID; the service must report it as a
// duplicate whatever winner it carries.
func replay(ctx context.Context, client *Client, id, winner, roundID string, stats *Stats) error {
	stats.Replays++
	again, err := client.PlayRound(ctx, id, winner, roundID)
	if err == nil && again.Duplicate {
		stats.Duplicates++
		return nil
	}
	if err != nil {
		return fmt.Errorf("replay of %s: %w", roundID, err)
	}
	return fmt.Errorf("%w: replay of %s was applied again", ErrVerification, roundID)
}

func verifyInto(stats *Stats, roster Roster, rep Report) error {
	if err := Verify(roster.Competitors, roster.WindowSize, rep); err != nil {
		return err
	}
	stats.Verified++
	if rep.AllExcluded {
		stats.AllExcluded++
	}
	for _, c := range rep.Recommendation {
		stats.Recommended[c]++
	}
	return nil
}
