package server

import (
	"context"
	"elo-ladder/internal/api"
	"elo-ladder/internal/domain"
	"elo-ladder/internal/service"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const LadderServicePath = "/ladder.v1.LadderService/"

const (
	RecordMatchProcedure      = LadderServicePath + "RecordMatch"
	UndoMatchProcedure        = LadderServicePath + "UndoMatch"
	GetMatchProcedure         = LadderServicePath + "GetMatch"
	GetPlayerProcedure        = LadderServicePath + "GetPlayer"
	RegisterPlayerProcedure   = LadderServicePath + "RegisterPlayer"
	SetRatingProcedure        = LadderServicePath + "SetRating"
	SetActiveProcedure        = LadderServicePath + "SetActive"
	ListInactiveProcedure     = LadderServicePath + "ListInactive"
	ResetRatingsProcedure     = LadderServicePath + "ResetAllRatings"
	ToggleMultiplierProcedure = LadderServicePath + "ToggleMultiplier"
	ImportBatchProcedure      = LadderServicePath + "ImportBatch"
	ImportTournamentProcedure = LadderServicePath + "ImportTournament"
	GetLeaderboardProcedure   = LadderServicePath + "GetLeaderboard"
)

type LadderServer struct {
	matchSvc       *service.MatchService
	playerSvc      *service.PlayerService
	importSvc      *service.ImportService
	tournamentSvc  *service.TournamentService
	leaderboardSvc *service.LeaderboardService
	logger         zerolog.Logger
}

func NewLadderServer(
	matchSvc *service.MatchService,
	playerSvc *service.PlayerService,
	importSvc *service.ImportService,
	tournamentSvc *service.TournamentService,
	leaderboardSvc *service.LeaderboardService,
	logger zerolog.Logger,
) *LadderServer {
	return &LadderServer{
		matchSvc:       matchSvc,
		playerSvc:      playerSvc,
		importSvc:      importSvc,
		tournamentSvc:  tournamentSvc,
		leaderboardSvc: leaderboardSvc,
		logger:         logger,
	}
}

// Handler returns the service path prefix and the handler serving every
// procedure under it.
func (s *LadderServer) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(RecordMatchProcedure, connect.NewUnaryHandler(RecordMatchProcedure, s.RecordMatch, opts...))
	mux.Handle(UndoMatchProcedure, connect.NewUnaryHandler(UndoMatchProcedure, s.UndoMatch, opts...))
	mux.Handle(GetMatchProcedure, connect.NewUnaryHandler(GetMatchProcedure, s.GetMatch, opts...))
	mux.Handle(GetPlayerProcedure, connect.NewUnaryHandler(GetPlayerProcedure, s.GetPlayer, opts...))
	mux.Handle(RegisterPlayerProcedure, connect.NewUnaryHandler(RegisterPlayerProcedure, s.RegisterPlayer, opts...))
	mux.Handle(SetRatingProcedure, connect.NewUnaryHandler(SetRatingProcedure, s.SetRating, opts...))
	mux.Handle(SetActiveProcedure, connect.NewUnaryHandler(SetActiveProcedure, s.SetActive, opts...))
	mux.Handle(ListInactiveProcedure, connect.NewUnaryHandler(ListInactiveProcedure, s.ListInactive, opts...))
	mux.Handle(ResetRatingsProcedure, connect.NewUnaryHandler(ResetRatingsProcedure, s.ResetAllRatings, opts...))
	mux.Handle(ToggleMultiplierProcedure, connect.NewUnaryHandler(ToggleMultiplierProcedure, s.ToggleMultiplier, opts...))
	mux.Handle(ImportBatchProcedure, connect.NewUnaryHandler(ImportBatchProcedure, s.ImportBatch, opts...))
	mux.Handle(ImportTournamentProcedure, connect.NewUnaryHandler(ImportTournamentProcedure, s.ImportTournament, opts...))
	mux.Handle(GetLeaderboardProcedure, connect.NewUnaryHandler(GetLeaderboardProcedure, s.GetLeaderboard, opts...))

	return LadderServicePath, mux
}

func (s *LadderServer) RecordMatch(ctx context.Context, req *connect.Request[RecordMatchRequest]) (*connect.Response[RecordMatchResponse], error) {
	result, err := s.matchSvc.RecordMatch(ctx, req.Msg.WinnerID, req.Msg.LoserID, req.Msg.PlayedAt)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&RecordMatchResponse{
		MatchID:          result.Match.MatchID,
		WinnerOld:        result.WinnerOld,
		WinnerNew:        result.WinnerNew,
		LoserOld:         result.LoserOld,
		LoserNew:         result.LoserNew,
		RatingDelta:      result.Match.RatingDelta,
		Multiplier:       result.Match.Multiplier,
		WinnerRegistered: result.WinnerRegistered,
		LoserRegistered:  result.LoserRegistered,
	}), nil
}

func (s *LadderServer) UndoMatch(ctx context.Context, req *connect.Request[UndoMatchRequest]) (*connect.Response[UndoMatchResponse], error) {
	result, err := s.matchSvc.UndoMatch(ctx, req.Msg.MatchID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&UndoMatchResponse{
		Match:        toMatch(result.Match),
		WinnerRating: result.WinnerRating,
		LoserRating:  result.LoserRating,
	}), nil
}

func (s *LadderServer) GetMatch(ctx context.Context, req *connect.Request[GetMatchRequest]) (*connect.Response[Match], error) {
	match, err := s.matchSvc.GetMatch(ctx, req.Msg.MatchID)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := toMatch(*match)
	return connect.NewResponse(&resp), nil
}

func (s *LadderServer) GetPlayer(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[Player], error) {
	player, err := s.playerSvc.GetPlayer(ctx, req.Msg.PlayerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := toPlayer(*player)
	return connect.NewResponse(&resp), nil
}

func (s *LadderServer) RegisterPlayer(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[RegisterPlayerResponse], error) {
	player, created, err := s.playerSvc.RegisterPlayer(ctx, req.Msg.PlayerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&RegisterPlayerResponse{Player: toPlayer(*player), Created: created}), nil
}

func (s *LadderServer) SetRating(ctx context.Context, req *connect.Request[SetRatingRequest]) (*connect.Response[Player], error) {
	player, err := s.playerSvc.SetRating(ctx, req.Msg.PlayerID, req.Msg.Rating)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := toPlayer(*player)
	return connect.NewResponse(&resp), nil
}

func (s *LadderServer) SetActive(ctx context.Context, req *connect.Request[SetActiveRequest]) (*connect.Response[Player], error) {
	player, err := s.playerSvc.SetActive(ctx, req.Msg.PlayerID, req.Msg.Active)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := toPlayer(*player)
	return connect.NewResponse(&resp), nil
}

func (s *LadderServer) ListInactive(ctx context.Context, req *connect.Request[ListInactiveRequest]) (*connect.Response[ListInactiveResponse], error) {
	players, err := s.playerSvc.ListInactive(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &ListInactiveResponse{Players: make([]Player, len(players))}
	for i, p := range players {
		resp.Players[i] = toPlayer(p)
	}
	return connect.NewResponse(resp), nil
}

func (s *LadderServer) ResetAllRatings(ctx context.Context, req *connect.Request[ResetRatingsRequest]) (*connect.Response[ResetRatingsResponse], error) {
	n, err := s.playerSvc.ResetAllRatings(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&ResetRatingsResponse{Players: n}), nil
}

func (s *LadderServer) ToggleMultiplier(ctx context.Context, req *connect.Request[ToggleMultiplierRequest]) (*connect.Response[MultiplierResponse], error) {
	enabled, err := s.matchSvc.ToggleMultiplier(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&MultiplierResponse{Enabled: enabled}), nil
}

func (s *LadderServer) ImportBatch(ctx context.Context, req *connect.Request[ImportBatchRequest]) (*connect.Response[ImportSummaryResponse], error) {
	summary, err := s.importSvc.ImportBatch(ctx, req.Msg.Batch)
	if err != nil {
		s.logPartialImport(summary, err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(toSummary(summary)), nil
}

func (s *LadderServer) ImportTournament(ctx context.Context, req *connect.Request[ImportTournamentRequest]) (*connect.Response[ImportSummaryResponse], error) {
	if req.Msg.TournamentID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("tournament id is required"))
	}

	summary, err := s.tournamentSvc.ImportTournament(ctx, req.Msg.TournamentID)
	if err != nil {
		s.logPartialImport(summary, err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(toSummary(summary)), nil
}

func (s *LadderServer) GetLeaderboard(ctx context.Context, req *connect.Request[LeaderboardRequest]) (*connect.Response[LeaderboardResponse], error) {
	filter := domain.LeaderboardFilter{
		Mode:    domain.FilterMode(req.Msg.Mode),
		Days:    req.Msg.Days,
		MatchID: req.Msg.MatchID,
	}

	board, err := s.leaderboardSvc.GetLeaderboard(ctx, filter, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &LeaderboardResponse{
		GeneratedAt: board.GeneratedAt,
		Entries:     make([]LeaderboardEntry, len(board.Entries)),
	}
	for i, e := range board.Entries {
		resp.Entries[i] = LeaderboardEntry{
			Rank:     e.Rank,
			PlayerID: e.PlayerID,
			Rating:   e.Rating,
			Movement: string(e.Movement),
			Streak:   e.Streak,
			Badge:    string(e.Badge),
		}
	}
	return connect.NewResponse(resp), nil
}

func (s *LadderServer) logPartialImport(summary *domain.ImportSummary, err error) {
	if summary == nil {
		return
	}
	s.logger.Warn().
		Err(err).
		Str("source_id", summary.SourceID).
		Int("processed", summary.Processed).
		Msg("import stopped before the end of the batch")
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidMatch), errors.Is(err, domain.ErrInvalidFilter):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, domain.ErrUnknownPlayer), errors.Is(err, domain.ErrMatchNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, domain.ErrDuplicateExternalMatch):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, api.ErrMissingAPIToken):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
