package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

// viewCmd builds a command that fetches one API resource and prints it
func viewCmd[T any](use, short string, args cobra.PositionalArgs, path func(args []string) string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result T

			if err := client.Get(cmd.Context(), path(args), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func fixed(path string) func([]string) string {
	return func([]string) string { return path }
}

func newHealthCmd() *cobra.Command {
	return viewCmd[HealthResult]("health", "Check server health", cobra.NoArgs, fixed("/api/v1/health"))
}

func newLobbyCmd() *cobra.Command {
	return viewCmd[Lobby]("lobby", "List players waiting for an opponent", cobra.NoArgs, fixed("/api/v1/lobby"))
}

func newLeaderboardCmd() *cobra.Command {
	return viewCmd[Leaderboard]("leaderboard", "Show the top balances", cobra.NoArgs, fixed("/api/v1/leaderboard"))
}

func newStatsCmd() *cobra.Command {
	return viewCmd[Stats]("stats", "Show live arena activity", cobra.NoArgs, fixed("/api/v1/stats"))
}

func newPlayerCmd() *cobra.Command {
	return viewCmd[Player]("player <id>", "Show a player's balance and status", cobra.ExactArgs(1),
		func(args []string) string {
			return "/api/v1/players/" + url.PathEscape(args[0])
		})
}
