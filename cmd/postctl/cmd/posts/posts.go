package posts

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/terraconstructs/postboard/internal/authstate"
	"github.com/terraconstructs/postboard/internal/config"
	"github.com/terraconstructs/postboard/internal/guard"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

// PostsCmd is the parent command for post operations. Every subcommand needs
// a valid session.
var PostsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Read and write posts",
	Long:  `Commands for listing, reading, creating, updating and deleting posts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		var opts []guard.CommandOption
		if cfg.NonInteractive {
			opts = append(opts, guard.WithoutPlaceholder())
		}
		return guard.RequireSession(cfg.ClientProvider.ManagerFor, opts...)(cmd, args)
	},
}

func init() {
	PostsCmd.AddCommand(listCmd)
	PostsCmd.AddCommand(getCmd)
	PostsCmd.AddCommand(createCmd)
	PostsCmd.AddCommand(updateCmd)
	PostsCmd.AddCommand(deleteCmd)
}

func clients(ctx context.Context) (*sdk.Client, *authstate.Manager, error) {
	cfg := config.MustFromContext(ctx)
	c, err := cfg.ClientProvider.SDKClient()
	if err != nil {
		return nil, nil, err
	}
	mgr, err := cfg.ClientProvider.Manager()
	if err != nil {
		return nil, nil, err
	}
	return c, mgr, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return id, nil
}

// ensureOwner refuses to modify a post written by someone else.
func ensureOwner(post *sdk.Post, user *sdk.UserSummary, action string) error {
	if post.OwnedBy(user) {
		return nil
	}
	return fmt.Errorf("cannot %s post #%d: it belongs to another user", action, post.ID)
}

const titlePreviewLimit = 48

func renderPostTable(w io.Writer, list *sdk.PostList, user *sdk.UserSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tIMAGE\tMINE")
	for _, p := range list.Data {
		image := "-"
		if p.ImageURL != "" {
			image = "yes"
		}
		mine := ""
		if p.OwnedBy(user) {
			mine = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, truncate(p.Title, titlePreviewLimit), image, mine)
	}
	tw.Flush()

	pages := list.Pagy.Pages
	if pages < 1 {
		pages = 1
	}
	fmt.Fprintf(w, "\nPage %d of %d (%d posts)\n", list.Pagy.Page, pages, list.Pagy.Count)
}

func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
