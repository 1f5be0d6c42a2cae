package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blanksteg/freamon/internal/freamon/trainer"
)

var trainFormat string

var trainCmd = &cobra.Command{
	Use:   "train [files or directories...]",
	Short: "Teach the brain from chat logs and save a new snapshot",
	Long: `Train reads log files line by line, feeds their sentences (and, where
the format carries them, speaker names) into the brain, and stores the
result as a new snapshot.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		extract, err := trainer.ByFormat(trainFormat)
		if err != nil {
			return err
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		brain, err := openBrain(ctx, db, logger)
		if err != nil {
			return err
		}
		before := brain.Stats()

		tr := trainer.New(extract, logger)
		for _, path := range args {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("train: %w", err)
			}
			if info.IsDir() {
				err = tr.TrainDir(ctx, brain, path)
			} else {
				err = tr.TrainFile(ctx, brain, path)
			}
			if err != nil {
				return err
			}
		}

		snap, err := saveBrain(ctx, db, brain)
		if err != nil {
			return err
		}

		after := brain.Stats()
		fmt.Printf("Learned %d new quads (%d total), %d tokens, %d people names.\n",
			after.Quads-before.Quads, after.Quads, after.Tokens, after.PeopleNames)
		fmt.Printf("Saved snapshot %s.\n", snap.ID)
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVarP(&trainFormat, "format", "f", "plain",
		fmt.Sprintf("log format: one of %v", trainer.Formats()))
}
