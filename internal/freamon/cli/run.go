package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/blanksteg/freamon/internal/freamon/app"
	"github.com/blanksteg/freamon/internal/freamon/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Matrix and start chatting",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.AccessToken == "" {
			return fmt.Errorf("no access token: set accessToken in %s or the FREAMON_ACCESS_TOKEN environment variable", configPath)
		}

		bot, err := app.New(cfg, slog.Default())
		if err != nil {
			return err
		}
		defer bot.Stop()

		return bot.Run()
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database = dbPath
	}
	return cfg, nil
}
