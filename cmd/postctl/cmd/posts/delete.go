package posts

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/terraconstructs/postboard/cmd/postctl/cmd/cmdutil"
	"github.com/terraconstructs/postboard/internal/config"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your posts",
	Long:  `Deletes a post you wrote. Asks for confirmation unless --yes is given or prompts are disabled.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, mgr, err := clients(cmd.Context())
		if err != nil {
			return err
		}

		post, err := c.GetPost(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := ensureOwner(post, mgr.CurrentUser(), "delete"); err != nil {
			return err
		}

		if !deleteYes && !cfg.NonInteractive {
			ok, err := cmdutil.Confirm(fmt.Sprintf("Delete post #%d %q?", post.ID, post.Title))
			if err != nil {
				return err
			}
			if !ok {
				pterm.Info.Println("Aborted")
				return nil
			}
		}

		if err := c.DeletePost(cmd.Context(), id); err != nil {
			return err
		}
		pterm.Success.Printf("Deleted post #%d\n", id)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}
