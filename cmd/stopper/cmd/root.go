package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psantana5/stopper/internal/config"
	"github.com/psantana5/stopper/internal/logging"
)

var (
	cfgFile string

	v      = viper.New()
	cfg    *config.Config
	logger *logrus.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "stopper",
	Short: "Stopwatch with named laps",
	Long: `stopper is a stopwatch for the terminal. It starts a timer, records a named
lap for every line you enter and prints a lap report when you stop it.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.stopper/config.yaml)")
	flags.String("output", "table", "output format: table, json or yaml")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")

	_ = v.BindPFlag("output", flags.Lookup("output"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log_format", flags.Lookup("log-format"))
}

// initConfig merges config file, STOPPER_* environment and flags
func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	logger = logging.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, logging.ParseFormat(cfg.LogFormat))
	logger.WithField("config", v.ConfigFileUsed()).Debug("Configuration loaded")
	return nil
}

func mustConfig() (*config.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}
