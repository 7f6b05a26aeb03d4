package posts

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var listPage int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts",
	Long:  `Lists one page of posts. Posts you wrote are marked in the MINE column.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, mgr, err := clients(cmd.Context())
		if err != nil {
			return err
		}

		list, err := c.ListPosts(cmd.Context(), listPage)
		if err != nil {
			return err
		}
		if len(list.Data) == 0 {
			pterm.Info.Println("No posts yet.")
			return nil
		}

		renderPostTable(os.Stdout, list, mgr.CurrentUser())
		if list.Pagy.Page < list.Pagy.Pages {
			fmt.Printf("Next: postctl posts list --page %d\n", list.Pagy.Page+1)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "Page number, starting at 1")
}
