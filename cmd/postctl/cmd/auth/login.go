package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/terraconstructs/postboard/cmd/postctl/cmd/cmdutil"
	"github.com/terraconstructs/postboard/internal/config"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to postboard",
	Long: `Logs in with email and password and saves the session for the configured API.

Missing values are prompted for. In non-interactive mode both --email and
--password (or POSTBOARD_PASSWORD) must be supplied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		email, err := cmdutil.Prompt(loginEmail, "Email", "email", false, cfg.NonInteractive)
		if err != nil {
			return err
		}
		password, err := cmdutil.Prompt(passwordFromEnv(loginPassword), "Password", "password", true, cfg.NonInteractive)
		if err != nil {
			return err
		}

		mgr, err := cfg.ClientProvider.Manager()
		if err != nil {
			return err
		}

		out := mgr.Login(cmd.Context(), email, password)
		if !out.Success() {
			return outcomeError(out)
		}

		pterm.Success.Printf("Logged in as %s\n", out.Data.User.Label())
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prefer POSTBOARD_PASSWORD or the prompt)")
}
