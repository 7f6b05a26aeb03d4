package posts

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		pterm.DefaultSection.Println(post.Title)
		pterm.Println(post.Body)
		pterm.Println()
		if post.ImageURL != "" {
			pterm.Info.Printf("Image: %s\n", post.ImageURL)
		}
		if !post.CreatedAt.IsZero() {
			pterm.Info.Printf("Posted: %s\n", post.CreatedAt.Local().Format(time.RFC1123))
		}
		if post.OwnedBy(mgr.CurrentUser()) {
			pterm.Info.Printf("You wrote this post. Edit with 'postctl posts update %d' or remove with 'postctl posts delete %d'.\n", post.ID, post.ID)
		}
		return nil
	},
}
