package posts

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/terraconstructs/postboard/cmd/postctl/cmd/cmdutil"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

var (
	createTitle string
	createBody  string
	createImage string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Long: `Creates a post. Title and body are required. An optional image (JPEG, PNG
or GIF, at most 5MB) is uploaded with it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := sdk.PostInput{Title: createTitle, Body: createBody}
		if createImage != "" {
			img, err := sdk.LoadImage(createImage)
			if err != nil {
				return err
			}
			in.Image = img
		}

		c, _, err := clients(cmd.Context())
		if err != nil {
			return err
		}

		post, err := c.CreatePost(cmd.Context(), in)
		if err != nil {
			return cmdutil.ReportedError(err)
		}

		pterm.Success.Printf("Created post #%d: %s\n", post.ID, post.Title)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "Post title")
	createCmd.Flags().StringVar(&createBody, "body", "", "Post body")
	createCmd.Flags().StringVar(&createImage, "image", "", "Path to an image to attach")
}
