package auth

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/terraconstructs/postboard/internal/authstate"
	"github.com/terraconstructs/postboard/internal/config"
	"github.com/terraconstructs/postboard/internal/guard"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	Long: `Validates the saved session with the server and shows who you are logged in as.
A session the server rejects is removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		_, state, err := cfg.ClientProvider.ResolvedManager(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to check session: %w", err)
		}

		authed, ok := state.(authstate.Authenticated)
		if !ok {
			pterm.Info.Printf("Not logged in to %s\n", cfg.APIURL)
			return guard.ErrLoginRequired
		}

		sess := authed.Session()
		pterm.DefaultSection.Println("Authentication Status")
		pterm.Info.Printf("API: %s\n", cfg.APIURL)
		pterm.Info.Printf("Logged in as: %s (id %d)\n", sess.User.Label(), sess.User.ID)

		if exp, ok := sess.ExpiresAt(); ok {
			if time.Until(exp) <= 0 {
				pterm.Warning.Printf("Token expiry claim passed at %s\n", exp.Format(time.RFC1123))
			} else {
				pterm.Info.Printf("Token expires at: %s\n", exp.Format(time.RFC1123))
			}
		}
		return nil
	},
}
