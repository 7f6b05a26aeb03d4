package auth

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/terraconstructs/postboard/cmd/postctl/cmd/cmdutil"
	"github.com/terraconstructs/postboard/internal/config"
)

var (
	signupEmail        string
	signupPassword     string
	signupConfirmation string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a postboard account",
	Long: `Registers a new account. Signing up does not log you in; run
'postctl auth login' afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		email, err := cmdutil.Prompt(signupEmail, "Email", "email", false, cfg.NonInteractive)
		if err != nil {
			return err
		}
		password, err := cmdutil.Prompt(passwordFromEnv(signupPassword), "Password", "password", true, cfg.NonInteractive)
		if err != nil {
			return err
		}
		confirmation, err := cmdutil.Prompt(signupConfirmation, "Confirm password", "password-confirmation", true, cfg.NonInteractive)
		if err != nil {
			return err
		}
		if password != confirmation {
			return errors.New("passwords do not match")
		}

		mgr, err := cfg.ClientProvider.Manager()
		if err != nil {
			return err
		}

		out := mgr.Signup(cmd.Context(), email, password, confirmation)
		if !out.Success() {
			return outcomeError(out)
		}

		pterm.Success.Println("Account created. Run 'postctl auth login' to sign in.")
		return nil
	},
}

func init() {
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "Account email")
	signupCmd.Flags().StringVar(&signupPassword, "password", "", "Account password")
	signupCmd.Flags().StringVar(&signupConfirmation, "password-confirmation", "", "Repeat the password")
}
