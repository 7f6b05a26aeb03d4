package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/terraconstructs/postboard/internal/config"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the saved session",
	Long: `Tells the server to end the session, then removes the local session.
The local session is removed even when the server cannot be reached.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		mgr, err := cfg.ClientProvider.Manager()
		if err != nil {
			return err
		}

		if err := mgr.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		pterm.Success.Println("Logged out successfully")
		return nil
	},
}
