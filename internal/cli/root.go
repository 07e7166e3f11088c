// Package cli implements the compassctl commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/compass/internal/store"
)

var (
	databaseURL string
	inputPath   string
	verbose     bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "compassctl",
	Short:         "Operator tools for the compass coaching service",
	Long:          "Run insight extraction and scoring locally (JSON in, JSON out) and manage the compass database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres DSN (default: $DATABASE_URL)")
	RootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "", "Read the JSON request from this file instead of stdin")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
}

// Execute runs the command tree and reports any error on stderr.
func Execute() int {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func logger() *slog.Logger {
	lvl := slog.LevelWarn
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func getDatabaseURL() (string, error) {
	if databaseURL != "" {
		return databaseURL, nil
	}
	if env := os.Getenv("DATABASE_URL"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no database: pass --database-url or set DATABASE_URL")
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dsn, err := getDatabaseURL()
	if err != nil {
		return nil, err
	}
	return store.New(cmd.Context(), dsn)
}

// readRequest decodes the JSON request from --input or stdin.
func readRequest(cmd *cobra.Command, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
