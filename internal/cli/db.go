package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/compass/internal/backfill"
	"github.com/MikeSquared-Agency/compass/internal/extractor"
)

func init() {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}

	bf := &cobra.Command{
		Use:   "backfill",
		Short: "Re-run extraction over stored chat sessions",
		Long:  "Re-extract insights from stored coach replies with the current pattern table and merge them into sessions and users. Progress is saved so an interrupted run resumes.",
		Args:  cobra.NoArgs,
		RunE:  runBackfill,
	}
	bf.Flags().String("user", "", "Only this user id")
	bf.Flags().String("since", "", "Only sessions updated on or after this date (YYYY-MM-DD)")
	bf.Flags().Bool("dry-run", false, "Report what would change without writing")
	bf.Flags().String("state", backfill.DefaultStatePath, "Progress file")

	RootCmd.AddCommand(migrate, bf)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Migrate(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
	return nil
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfg, err := backfillConfig(cmd)
	if err != nil {
		return err
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	log := logger()
	ext, err := extractor.New(log)
	if err != nil {
		return err
	}

	state, err := backfill.NewRunner(cfg, s, ext, log).Run(cmd.Context())
	if state != nil {
		if perr := printJSON(cmd, state); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

func backfillConfig(cmd *cobra.Command) (backfill.Config, error) {
	var cfg backfill.Config
	user, _ := cmd.Flags().GetString("user")
	since, _ := cmd.Flags().GetString("since")
	cfg.DryRun, _ = cmd.Flags().GetBool("dry-run")
	cfg.StatePath, _ = cmd.Flags().GetString("state")

	if user != "" {
		id, err := uuid.Parse(user)
		if err != nil {
			return cfg, fmt.Errorf("invalid --user: %w", err)
		}
		cfg.UserID = id
	}
	if since != "" {
		t, err := time.Parse(time.DateOnly, since)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since: %w", err)
		}
		cfg.Since = t
	}
	return cfg, nil
}
