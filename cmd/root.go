// Package cmd provides the entrypoint for the zadarma cli.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/isometry/zadarma-go/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultConfigPath = "config.yaml"

var (
	configFilePath string
	logger         *slog.Logger
)

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
	// Sensitive values are never shown as flag defaults.
	Sensitive bool
}

// New returns the root command for the zadarma cli. args are scanned for --config before the
// flags are bound, so that the file sits between the defaults and the environment.
func New(args []string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "zadarma",
		Short:        "Zadarma API client and webhook receiver",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			config.Global.Mode = strings.TrimSpace(config.Global.Mode)
			logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				AddSource: config.Global.Logging.CallerTrace,
				Level:     slog.LevelWarn - slog.Level(config.Global.Logging.Verbosity*4),
			}))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger = logger.With("mode", config.Global.Mode)
			switch config.Global.Mode {
			case config.ModeService:
				return runService(cmd)
			case config.ModeLambdaHTTP:
				return runLambdaHTTP(cmd)
			case config.ModeLambdaEvent:
				return runLambdaEvent(cmd)
			default:
				return fmt.Errorf("invalid mode: %s", config.Global.Mode)
			}
		},
	}

	// Root command flags
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", defaultConfigPath, "path to the configuration file")

	// Configuration loading & defaults
	_ = godotenv.Load()
	if err := errors.Join(
		config.LoadFromFile(scanConfigPath(args)),
		config.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdAPI(),
		cmdWebhook(),
		cmdLambda(),
		cmdService(),
	)

	cmd.SetArgs(args)
	return cmd
}

func setupDynamicFlags(cmd *cobra.Command) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapCount)
	bindEnvMap(cmd, envMapStringSlice)
	bindEnvMap(cmd, envMapDuration)
}

// scanConfigPath extracts --config from args, ignoring every other flag.
func scanConfigPath(args []string) string {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.StringP("config", "c", defaultConfigPath, "")
	_ = fs.Parse(args)
	return *path
}
