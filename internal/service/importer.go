package service

import (
	"context"
	"database/sql"
	"elo-ladder/internal/constants"
	"elo-ladder/internal/domain"
	"elo-ladder/internal/metrics"
	"elo-ladder/internal/repository"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	outcomeProcessed        = "processed"
	outcomeUnfinished       = "unfinished"
	outcomeUnmapped         = "unmapped"
	outcomeAlreadyProcessed = "already_processed"
)

const stateComplete = "complete"

// ImportService applies externally sourced matches at most once per external
// match id. Batches are processed in order and are not atomic as a whole.
type ImportService struct {
	ledger     *repository.Ledger
	importRepo *repository.ImportRecordRepository
	matches    *MatchService
	metrics    *metrics.Metrics
	clock      Clock
	logger     zerolog.Logger
}

func NewImportService(
	ledger *repository.Ledger,
	importRepo *repository.ImportRecordRepository,
	matches *MatchService,
	m *metrics.Metrics,
	clock Clock,
	logger zerolog.Logger,
) *ImportService {
	return &ImportService{
		ledger:     ledger,
		importRepo: importRepo,
		matches:    matches,
		metrics:    m,
		clock:      clock,
		logger:     logger,
	}
}

// ImportBatch classifies and records every descriptor of the batch. On a
// storage failure it stops and returns the summary so far with the error.
func (s *ImportService) ImportBatch(ctx context.Context, batch domain.ImportBatch) (*domain.ImportSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ImportTimeout)
	defer cancel()

	summary := &domain.ImportSummary{SourceID: batch.SourceID, Lines: []string{}}
	log := s.logger.With().Str("source_id", batch.SourceID).Logger()

	for _, d := range batch.Matches {
		outcome, err := s.importOne(ctx, batch, d, summary)
		if err != nil {
			log.Error().Err(err).Str("external_match_id", d.ExternalMatchID).Msg("import aborted")
			return summary, fmt.Errorf("failed to import match %s: %w", d.ExternalMatchID, err)
		}
		s.metrics.ImportOutcomes.WithLabelValues(outcome).Inc()
		log.Debug().Str("external_match_id", d.ExternalMatchID).Str("outcome", outcome).Msg("descriptor classified")
	}

	if summary.Processed > 0 {
		err := s.ledger.RunInTx(ctx, "import snapshot", func(tx *sql.Tx) error {
			_, err := s.matches.appendSnapshot(ctx, tx, s.clock())
			return err
		})
		if err != nil {
			return summary, fmt.Errorf("failed to snapshot rankings after import: %w", err)
		}
	}

	log.Info().
		Int("processed", summary.Processed).
		Int("newly_registered", summary.NewlyRegistered).
		Int("unfinished", summary.SkippedUnfinished).
		Int("unmapped", summary.SkippedUnmapped).
		Int("already_processed", summary.SkippedAlreadyProcessed).
		Msg("import batch finished")

	return summary, nil
}

func (s *ImportService) importOne(ctx context.Context, batch domain.ImportBatch, d domain.MatchDescriptor, summary *domain.ImportSummary) (string, error) {
	if !isReportable(d) {
		summary.SkippedUnfinished++
		return outcomeUnfinished, nil
	}

	done, err := s.importRepo.Exists(ctx, d.ExternalMatchID)
	if err != nil {
		return "", err
	}
	if done {
		summary.SkippedAlreadyProcessed++
		return outcomeAlreadyProcessed, nil
	}

	playerA, okA := batch.Identities[d.ParticipantA]
	playerB, okB := batch.Identities[d.ParticipantB]
	if !okA || !okB || playerA == "" || playerB == "" || playerA == playerB {
		summary.SkippedUnmapped++
		return outcomeUnmapped, nil
	}

	aWon, ok := resolveWinner(d)
	if !ok {
		summary.SkippedUnfinished++
		return outcomeUnfinished, nil
	}

	winnerID, loserID := playerA, playerB
	winnerName, loserName := displayName(d.NameA, playerA), displayName(d.NameB, playerB)
	if !aWon {
		winnerID, loserID = loserID, winnerID
		winnerName, loserName = loserName, winnerName
	}

	at := s.clock()
	if d.CompletedAt != nil {
		at = *d.CompletedAt
	}

	var result *domain.MatchResult
	err = s.ledger.RunInTx(ctx, "import match", func(tx *sql.Tx) error {
		res, err := s.matches.apply(ctx, tx, winnerID, loserID, at, constants.SourceImport)
		if err != nil {
			return err
		}
		if err := s.importRepo.WithTx(tx).Mark(ctx, d.ExternalMatchID, batch.SourceID, s.clock()); err != nil {
			return err
		}
		result = res
		return nil
	})
	if errors.Is(err, domain.ErrDuplicateExternalMatch) {
		summary.SkippedAlreadyProcessed++
		return outcomeAlreadyProcessed, nil
	}
	if err != nil {
		return "", err
	}

	summary.Processed++
	if result.WinnerRegistered {
		summary.NewlyRegistered++
	}
	if result.LoserRegistered {
		summary.NewlyRegistered++
	}
	summary.Lines = append(summary.Lines, summaryLine(winnerName, loserName, result))
	s.metrics.MatchesRecorded.WithLabelValues(constants.SourceImport, strconv.Itoa(result.Match.Multiplier)).Inc()

	return outcomeProcessed, nil
}

// isReportable rejects descriptors that cannot describe a finished match.
func isReportable(d domain.MatchDescriptor) bool {
	if d.ExternalMatchID == "" || d.ParticipantA == "" || d.ParticipantB == "" {
		return false
	}
	if d.State != stateComplete && d.WinnerID == "" && strings.TrimSpace(d.Scores) == "" {
		return false
	}
	return true
}

// resolveWinner reports whether participant A won. The explicit winner
// indicator takes precedence over scores; ties and malformed scores are not
// decisive.
func resolveWinner(d domain.MatchDescriptor) (aWon bool, ok bool) {
	switch d.WinnerID {
	case "":
	case d.ParticipantA:
		return true, true
	case d.ParticipantB:
		return false, true
	default:
		return false, false
	}

	a, b, ok := sumScores(d.Scores)
	if !ok || a == b {
		return false, false
	}
	return a > b, true
}

// sumScores totals per-set scores written as "a-b,c-d".
func sumScores(scores string) (int, int, bool) {
	scores = strings.TrimSpace(scores)
	if scores == "" {
		return 0, 0, false
	}

	var totalA, totalB int
	for _, set := range strings.Split(scores, ",") {
		parts := strings.Split(strings.TrimSpace(set), "-")
		if len(parts) != 2 {
			return 0, 0, false
		}
		a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, 0, false
		}
		b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, false
		}
		totalA += a
		totalB += b
	}
	return totalA, totalB, true
}

func displayName(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}

func summaryLine(winner, loser string, r *domain.MatchResult) string {
	return fmt.Sprintf("%s - %s: +%d / -%d  (%d->%d | %d->%d)",
		winner, loser,
		r.WinnerNew-r.WinnerOld, r.LoserOld-r.LoserNew,
		r.WinnerOld, r.WinnerNew, r.LoserOld, r.LoserNew)
}
