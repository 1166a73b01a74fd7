package service

import (
	"context"
	"elo-ladder/internal/api"
	"elo-ladder/internal/constants"
	"elo-ladder/internal/domain"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// BracketSource is the tournament host the importer reads from.
type BracketSource interface {
	GetParticipants(ctx context.Context, tournamentID string) ([]api.Participant, error)
	GetMatches(ctx context.Context, tournamentID string) ([]api.Match, error)
}

type TournamentService struct {
	source   BracketSource
	importer *ImportService
	logger   zerolog.Logger
}

func NewTournamentService(source BracketSource, importer *ImportService, logger zerolog.Logger) *TournamentService {
	return &TournamentService{source: source, importer: importer, logger: logger}
}

// ImportTournament fetches a bracket and feeds its matches to the importer.
// Participants are mapped through the player id stored in their misc field.
func (s *TournamentService) ImportTournament(ctx context.Context, tournamentID string) (*domain.ImportSummary, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	var (
		participants []api.Participant
		matches      []api.Match
	)

	g, gctx := errgroup.WithContext(fetchCtx)

	g.Go(func() error {
		var err error
		participants, err = s.source.GetParticipants(gctx, tournamentID)
		return err
	})

	g.Go(func() error {
		var err error
		matches, err = s.source.GetMatches(gctx, tournamentID)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("tournament_id", tournamentID).Msg("failed to fetch tournament")
		return nil, err
	}

	batch := BuildBatch(tournamentID, participants, matches)

	s.logger.Info().
		Str("tournament_id", tournamentID).
		Int("participants", len(participants)).
		Int("mapped", len(batch.Identities)).
		Int("matches", len(batch.Matches)).
		Msg("tournament fetched")

	return s.importer.ImportBatch(ctx, batch)
}

// BuildBatch converts a fetched bracket into an import batch.
func BuildBatch(tournamentID string, participants []api.Participant, matches []api.Match) domain.ImportBatch {
	names := make(map[string]string, len(participants))
	identities := make(map[string]string, len(participants))
	for _, p := range participants {
		id := strconv.FormatInt(p.ID, 10)
		names[id] = p.Name
		if playerID := strings.TrimSpace(p.Misc); playerID != "" {
			identities[id] = playerID
		}
	}

	descriptors := make([]domain.MatchDescriptor, 0, len(matches))
	for _, m := range matches {
		d := domain.MatchDescriptor{
			ExternalMatchID: strconv.FormatInt(m.ID, 10),
			ParticipantA:    optionalID(m.Player1ID),
			ParticipantB:    optionalID(m.Player2ID),
			WinnerID:        optionalID(m.WinnerID),
			Scores:          m.ScoresCSV,
			CompletedAt:     m.CompletedAt,
			State:           m.State,
		}
		d.NameA = names[d.ParticipantA]
		d.NameB = names[d.ParticipantB]
		descriptors = append(descriptors, d)
	}

	return domain.ImportBatch{
		SourceID:   tournamentID,
		Matches:    descriptors,
		Identities: identities,
	}
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
