package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Alias1177/StudioPredictor/internal/analyze"
	"github.com/Alias1177/StudioPredictor/internal/config"
	"github.com/Alias1177/StudioPredictor/internal/storage"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "predictor",
	Short: "Track Home/Away/Tie results and suggest the next one from known patterns.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if dataFile != "" {
			cfg.DataFile = dataFile
		}
		config.SetupLogger(cfg.LogLevel, os.Stderr)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var dataFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataFile, "file", "f", "", "snapshot file (default $DATA_FILE or analyzer_data.json)")
	rootCmd.AddCommand(addCmd, undoCmd, clearCmd, statusCmd, replCmd, backtestCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// openEngine loads the engine from the configured snapshot file and reports
// a reset caused by an unreadable file.
func openEngine(ctx context.Context, cmd *cobra.Command) (*analyze.Engine, error) {
	store := storage.NewFileStore(cfg.DataFile)
	engine, err := analyze.Open(ctx, store)
	if err != nil {
		return nil, err
	}
	if warn := engine.LoadWarning(); warn != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s could not be read and was reset: %v\n", store.Path(), warn)
	}
	return engine, nil
}
