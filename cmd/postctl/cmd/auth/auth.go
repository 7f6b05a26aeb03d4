package auth

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/terraconstructs/postboard/cmd/postctl/cmd/cmdutil"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

// AuthCmd is the parent command for auth operations
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your postboard session",
	Long:  `Commands for logging in, creating an account, logging out and checking the saved session.`,
}

func init() {
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(signupCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
}

// outcomeError prints field messages for a failed outcome and returns the
// error cobra reports.
func outcomeError[T any](out sdk.Outcome[T]) error {
	if cmdutil.ReportValidation(out.Cause) {
		return cmdutil.ErrRejected
	}
	return out.Err()
}

// passwordFromEnv lets scripts pass the password without putting it on the
// command line.
func passwordFromEnv(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("POSTBOARD_PASSWORD")
}
