package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/devpack-ai/devpack/pkg/logger"
	"github.com/devpack-ai/devpack/pkg/presenter"
)

var rootCmd = &cobra.Command{
	Use:   "devpack",
	Short: "Add agent skills to your repo",
	Long: `devpack detects a repository's technology stack and installs matching
agent skill bundles for Claude Code, Cursor, or VS Code Copilot.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			logger.L.WithError(err).Warn("Invalid log level, keeping the default")
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	// Environment variables
	viper.SetEnvPrefix("DEVPACK")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.devpack")
	viper.AddConfigPath(".devpack")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, text, json)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress non-error output")

	bindFlag("log_level", rootCmd.PersistentFlags(), "log-level")
	bindFlag("log_format", rootCmd.PersistentFlags(), "log-format")
	bindFlag("quiet", rootCmd.PersistentFlags(), "quiet")
}

func bindFlag(key string, flags *pflag.FlagSet, name string) {
	if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
		logger.L.WithError(err).WithField("flag", name).Warn("Failed to bind flag")
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
