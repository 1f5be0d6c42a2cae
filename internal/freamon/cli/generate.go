package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	generateCount int
	generateReply string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate messages from the stored brain",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		brain, err := openBrain(cmd.Context(), db, logger)
		if err != nil {
			return err
		}
		if brain.Stats().Quads == 0 {
			return fmt.Errorf("the brain is empty; train it first")
		}

		for i := 0; i < generateCount; i++ {
			var message string
			if generateReply != "" {
				message = brain.ReplyPrivate("cli", "operator", generateReply, "freamon")
			} else {
				message = brain.GenerateOriginal()
			}
			fmt.Println(message)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 1, "number of messages to generate")
	generateCmd.Flags().StringVarP(&generateReply, "reply", "r", "", "generate replies to this message instead of free text")
}
