package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/terraconstructs/postboard/cmd/postctl/cmd/auth"
	"github.com/terraconstructs/postboard/cmd/postctl/cmd/posts"
	"github.com/terraconstructs/postboard/internal/client"
	"github.com/terraconstructs/postboard/internal/config"
	"github.com/terraconstructs/postboard/internal/logging"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "postctl",
	Short: "postctl - command-line client for postboard",
	Long: `postctl talks to a postboard API: log in once, and the session is kept
under ~/.postboard and validated with the server on every run. Post commands
only run with a valid session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(cfgFile); err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cfg.NonInteractive {
			pterm.DisableStyling()
		}

		logger := logging.New(logging.Options{Format: cfg.LogFormat, Debug: cfg.Debug})
		provider := client.NewProvider(client.Options{
			APIURL:     cfg.APIURL,
			SessionDir: cfg.SessionDir,
			Timeout:    cfg.Timeout,
			UserAgent:  "postctl/" + Version,
			Logger:     logger,
		})

		ctx := config.InjectConfig(cmd.Context(), &config.GlobalConfig{
			Config:         cfg,
			Logger:         logger,
			ClientProvider: provider,
		})
		cmd.SetContext(ctx)
		return nil
	},
}

// bindFlags binds each config key to the named flag in fs, so an explicit flag
// wins over env and file values.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if f := fs.Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Parent hooks run before child hooks, so the posts guard sees the config.
	cobra.EnableTraverseRunHooks = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ~/.postboard/config.yaml)")
	flags.String("api-url", "", "postboard API URL (env: POSTBOARD_API_URL)")
	flags.String("session-dir", "", "Directory holding saved sessions (env: POSTBOARD_SESSION_DIR)")
	flags.Duration("timeout", 0, "Per-request timeout (env: POSTBOARD_TIMEOUT)")
	flags.Bool("debug", false, "Enable debug logging (env: POSTBOARD_DEBUG)")
	flags.String("log-format", "", "Log format: text or json (env: POSTBOARD_LOG_FORMAT)")
	flags.Bool("non-interactive", false, "Disable prompts and spinners (env: POSTBOARD_NON_INTERACTIVE)")

	bindFlags(flags, map[string]string{
		"api_url":         "api-url",
		"session_dir":     "session-dir",
		"timeout":         "timeout",
		"debug":           "debug",
		"log_format":      "log-format",
		"non_interactive": "non-interactive",
	})

	rootCmd.Version = Version
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(posts.PostsCmd)
	rootCmd.AddCommand(serveCmd)
}
