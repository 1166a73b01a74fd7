package main

import (
	"context"
	"database/sql"
	"elo-ladder/internal/domain"
	fxmodules "elo-ladder/internal/fx"
	"elo-ladder/internal/importfile"
	"elo-ladder/internal/service"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

type deps struct {
	fx.In

	DB          *sql.DB
	Matches     *service.MatchService
	Players     *service.PlayerService
	Importer    *service.ImportService
	Tournaments *service.TournamentService
	Leaderboard *service.LeaderboardService
}

func main() {
	cliApp := &cli.App{
		Name:  "ladderctl",
		Usage: "operate the elo ladder ledger",
		Commands: []*cli.Command{
			recordCommand(),
			undoCommand(),
			importCommand(),
			leaderboardCommand(),
			toggleMultiplierCommand(),
			playerCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withDeps builds the service graph for one command and closes the database
// afterwards. Logs go to stderr at warn level so stdout stays readable.
func withDeps(fn func(c *cli.Context, d deps) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		var d deps
		app := fx.New(
			fxmodules.Core,
			fx.NopLogger,
			fx.Decorate(func(l zerolog.Logger) zerolog.Logger {
				return l.Output(os.Stderr).Level(zerolog.WarnLevel)
			}),
			fx.Invoke(func(in deps) { d = in }),
		)
		if err := app.Err(); err != nil {
			return fmt.Errorf("failed to initialise: %w", err)
		}
		defer d.DB.Close()

		return fn(c, d)
	}
}

func recordCommand() *cli.Command {
	return &cli.Command{
		Name:      "record",
		Usage:     "record a match result",
		ArgsUsage: "<winner-id> <loser-id>",
		Action: withDeps(func(c *cli.Context, d deps) error {
			if c.NArg() != 2 {
				return errors.New("expected <winner-id> <loser-id>")
			}
			res, err := d.Matches.RecordMatch(c.Context, c.Args().Get(0), c.Args().Get(1), nil)
			if err != nil {
				return err
			}
			fmt.Printf("match #%d: %s %d -> %d, %s %d -> %d\n",
				res.Match.MatchID,
				res.Match.WinnerID, res.WinnerOld, res.WinnerNew,
				res.Match.LoserID, res.LoserOld, res.LoserNew)
			return nil
		}),
	}
}

func undoCommand() *cli.Command {
	return &cli.Command{
		Name:      "undo",
		Usage:     "reverse a recorded match",
		ArgsUsage: "<match-id>",
		Action: withDeps(func(c *cli.Context, d deps) error {
			id, err := strconv.ParseInt(c.Args().First(), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid match id %q: %w", c.Args().First(), err)
			}
			res, err := d.Matches.UndoMatch(c.Context, id)
			if err != nil {
				return err
			}
			fmt.Printf("match #%d reversed: %s now %d, %s now %d\n",
				id, res.Match.WinnerID, res.WinnerRating, res.Match.LoserID, res.LoserRating)
			return nil
		}),
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "import matches from a batch file or a Challonge tournament",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "JSON or YAML batch file"},
			&cli.StringFlag{Name: "tournament", Usage: "Challonge tournament id or url slug"},
		},
		Action: withDeps(func(c *cli.Context, d deps) error {
			var (
				summary *domain.ImportSummary
				err     error
			)
			switch file, tournament := c.String("file"), c.String("tournament"); {
			case file != "" && tournament != "":
				return errors.New("use either --file or --tournament")
			case file != "":
				batch, loadErr := importfile.Load(file)
				if loadErr != nil {
					return loadErr
				}
				summary, err = d.Importer.ImportBatch(c.Context, *batch)
			case tournament != "":
				summary, err = d.Tournaments.ImportTournament(c.Context, tournament)
			default:
				return errors.New("one of --file or --tournament is required")
			}

			if summary != nil {
				printSummary(summary)
			}
			return err
		}),
	}
}

func printSummary(s *domain.ImportSummary) {
	for _, line := range s.Lines {
		fmt.Println(line)
	}
	fmt.Printf("source %s: %d processed, %d new players, skipped %d unfinished, %d unmapped, %d already processed\n",
		s.SourceID, s.Processed, s.NewlyRegistered, s.SkippedUnfinished, s.SkippedUnmapped, s.SkippedAlreadyProcessed)
}

func leaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "print the current standings",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Usage: "only players with a match in the last N days"},
			&cli.Int64Flag{Name: "since-match", Usage: "only players with a match after this match id"},
			&cli.IntFlag{Name: "limit", Value: 10},
		},
		Action: withDeps(func(c *cli.Context, d deps) error {
			filter := domain.LeaderboardFilter{Mode: domain.FilterAll}
			switch {
			case c.IsSet("days") && c.IsSet("since-match"):
				return errors.New("use either --days or --since-match")
			case c.IsSet("days"):
				filter = domain.LeaderboardFilter{Mode: domain.FilterActivityWindow, Days: c.Int("days")}
			case c.IsSet("since-match"):
				filter = domain.LeaderboardFilter{Mode: domain.FilterSinceMatchID, MatchID: c.Int64("since-match")}
			}

			board, err := d.Leaderboard.GetLeaderboard(c.Context, filter, c.Int("limit"))
			if err != nil {
				return err
			}
			for _, e := range board.Entries {
				fmt.Println(formatEntry(e))
			}
			return nil
		}),
	}
}

func formatEntry(e domain.LeaderboardEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%3d. %-24s %5d", e.Rank, e.PlayerID, e.Rating)
	switch e.Movement {
	case domain.MovementUp:
		b.WriteString(" ^")
	case domain.MovementDown:
		b.WriteString(" v")
	}
	if e.Badge != domain.BadgeNone {
		fmt.Fprintf(&b, " [%s x%d]", e.Badge, e.Streak)
	}
	return b.String()
}

func toggleMultiplierCommand() *cli.Command {
	return &cli.Command{
		Name:  "toggle-multiplier",
		Usage: "flip the double-gain multiplier",
		Action: withDeps(func(c *cli.Context, d deps) error {
			enabled, err := d.Matches.ToggleMultiplier(c.Context)
			if err != nil {
				return err
			}
			state := "off"
			if enabled {
				state = "on"
			}
			fmt.Printf("multiplier is now %s\n", state)
			return nil
		}),
	}
}

func playerCommand() *cli.Command {
	return &cli.Command{
		Name:      "player",
		Usage:     "show a player's rating and recent ranks",
		ArgsUsage: "<player-id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "history", Value: 5, Usage: "number of past ranks to show"},
		},
		Action: withDeps(func(c *cli.Context, d deps) error {
			return showPlayer(c.Context, d, c.Args().First(), c.Int("history"))
		}),
	}
}

func showPlayer(ctx context.Context, d deps, id string, history int) error {
	p, err := d.Players.GetPlayer(ctx, id)
	if err != nil {
		return err
	}

	peak := "-"
	if p.PeakRating != nil {
		peak = strconv.Itoa(*p.PeakRating)
	}
	fmt.Printf("%s: rating %d, peak %s, active %t\n", p.ID, p.Rating, peak, p.Active)

	ranks, err := d.Players.RankHistory(ctx, id, history)
	if err != nil {
		return err
	}
	for _, r := range ranks {
		fmt.Printf("  #%d at %s\n", r.Rank, r.Timestamp.Format("2006-01-02 15:04"))
	}
	return nil
}
