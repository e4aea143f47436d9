package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/x/ticketwatch/internal/config"
	"github.com/x/ticketwatch/internal/runner"
)

var version = "dev"

var (
	flagVerbose    bool
	flagTicketType string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ticketwatch",
		Short: "Watch the Colosseum ticket calendar for newly available dates",
		Long: `ticketwatch periodically checks the coopculture ticket calendar,
solving the site's anti-bot challenge by static script analysis, and
reports newly available dates and time slots.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flagVerbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newCheckCmd creates the "check" subcommand: one watch cycle, snapshot
// JSON on stdout, non-zero exit when the run failed.
func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one watch cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner()
			if err != nil {
				return err
			}

			var res runner.Result
			if flagTicketType != "" {
				res = r.RunOne(cmd.Context(), flagTicketType)
			} else {
				res = r.Run(cmd.Context())
			}

			fmt.Println(string(res.Body))
			if res.StatusCode != 200 {
				return fmt.Errorf("run failed (status %d)", res.StatusCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagTicketType, "type", "t", "", "check a single ticket type")
	return cmd
}

// newServeCmd creates the "serve" subcommand: an HTTP trigger endpoint
// for scheduled invocation.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the watch cycle as an HTTP trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			r, err := runner.New(cfg)
			if err != nil {
				return err
			}

			slog.Info("listening", "addr", cfg.ListenAddr)
			return http.ListenAndServe(cfg.ListenAddr, r.Handler())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ticketwatch %s\n", version)
		},
	}
}

func newRunner() (*runner.Runner, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	return runner.New(cfg)
}
