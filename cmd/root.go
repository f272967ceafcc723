package cmd

import (
	"os"
	"strings"

	"github.com/chxlky/trello-report/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "trello-report",
	Short: "Generate plain text status reports from a Trello board",
	Long: `trello-report fetches a Trello board and writes an aggregate report
grouped by list and priority plus one report per board member.`,
	SilenceUsage: true,
	Annotations:  map[string]string{credentialsAnnotation: "required"},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return prepare(cmd.Annotations[credentialsAnnotation] == "required")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: runReport,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.toml)")
	rootCmd.AddCommand(reportCmd, serveCmd, summarizeCmd)
}

// credentialsAnnotation marks commands that talk to Trello.
const credentialsAnnotation = "credentials"

// prepare loads the configuration and installs the global logger. Missing
// credentials abort before the log file is opened.
func prepare(requireCredentials bool) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if requireCredentials {
		if err := loaded.Validate(); err != nil {
			console := loaded.Log
			console.File = ""
			zap.ReplaceGlobals(newLogger(console))
			zap.L().Error("ERROR: required configuration is missing. Aborting.", zap.Error(err))
			return err
		}
	}
	zap.ReplaceGlobals(newLogger(loaded.Log))
	cfg = loaded
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger logs to stdout with colored levels and, when configured, to a
// plain text file that mirrors the same entries.
func newLogger(lc config.LogConfig) *zap.Logger {
	levelStr := strings.ToLower(lc.Level)
	if levelStr == "" {
		levelStr = "debug"
	}
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stdout), level),
	}

	var fileErr error
	if lc.File != "" {
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fileErr = err
		} else {
			fileConfig := encoderConfig
			fileConfig.EncodeLevel = zapcore.CapitalLevelEncoder
			cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileConfig), zapcore.Lock(f), level))
		}
	}

	logger := zap.New(zapcore.NewTee(cores...),
		zap.Development(),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.WarnLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	)
	if fileErr != nil {
		logger.Warn("Failed to open log file; logging to stdout only", zap.String("file", lc.File), zap.Error(fileErr))
	}
	return logger
}
