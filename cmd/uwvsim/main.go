package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/uwvsim/internal/config"
	"github.com/san-kum/uwvsim/internal/logging"
)

var (
	settingsFile string
	settings     config.Settings
	logger       = zerolog.Nop()
	v            = viper.New()

	// run / live / tune scenario selection
	scenarioFile string
	vehicleName  string
	cycles       int
	integrator   string
	mode         string
	noSave       bool

	// plot / export-png share --states, so their defaults must match
	stateList string
	outPath   string

	// live
	themeName string
	perTick   int

	// verify
	skipSlow bool
	workers  int

	// tune
	kpGrid []float64
	kiGrid []float64
	kdGrid []float64
	metric string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "uwvsim",
		Short:        "6-DOF underwater vehicle simulator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.LoadSettings(v, settingsFile)
			if err != nil {
				return err
			}
			settings = s
			logger = logging.New(os.Stderr, s.LogLevel, s.LogFormat)
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&settingsFile, "settings", "", "settings file (default ./uwvsim.yaml)")
	pf.String("data", "runs", "run data directory")
	pf.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	pf.String("log-format", logging.FormatConsole, "log format (console, json)")
	_ = v.BindPFlag("data_dir", pf.Lookup("data"))
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log_format", pf.Lookup("log-format"))

	rootCmd.AddCommand(
		newRunCmd(),
		newListCmd(),
		newPlotCmd(),
		newSpectrumCmd(),
		newPhaseCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newExportPNGCmd(),
		newExportHTMLCmd(),
		newLiveCmd(),
		newPresetsCmd(),
		newParamsCmd(),
		newVerifyCmd(),
		newTuneCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
