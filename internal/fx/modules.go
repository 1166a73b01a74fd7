package fx

import (
	"database/sql"
	"elo-ladder/internal/api"
	"elo-ladder/internal/config"
	"elo-ladder/internal/database"
	"elo-ladder/internal/db"
	"elo-ladder/internal/logger"
	"elo-ladder/internal/metrics"
	"elo-ladder/internal/repository"
	"elo-ladder/internal/server"
	"elo-ladder/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

// Core wires storage and services without any transport.
var Core = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Provide(metrics.NewRegistry),
	fx.Provide(metrics.New),
	fx.Provide(service.NewClock),
	// repos
	fx.Provide(repository.NewLedger),
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewRankingRepository),
	fx.Provide(repository.NewImportRecordRepository),
	fx.Provide(repository.NewSettingsRepository),
	// api client
	fx.Provide(fx.Annotate(api.NewChallongeClient, fx.As(new(service.BracketSource)))),
	// svc
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewImportService),
	fx.Provide(service.NewTournamentService),
	fx.Provide(service.NewLeaderboardService),
)

var Module = fx.Options(
	Core,
	// server
	fx.Provide(server.NewLadderServer),
)
