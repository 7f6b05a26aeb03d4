package posts

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/terraconstructs/postboard/cmd/postctl/cmd/cmdutil"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

var (
	updateTitle       string
	updateBody        string
	updateImage       string
	updateRemoveImage bool
	updateJSON        bool
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update one of your posts",
	Long: `Updates the title, body or image of a post you wrote. Omitted fields are
left unchanged. --json sends a JSON payload instead of a form; it cannot carry
image changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		in := sdk.PostInput{Title: updateTitle, Body: updateBody, RemoveImage: updateRemoveImage}
		if updateImage != "" {
			img, err := sdk.LoadImage(updateImage)
			if err != nil {
				return err
			}
			in.Image = img
		}
		if in.Title == "" && in.Body == "" && in.Image == nil && !in.RemoveImage {
			return errors.New("nothing to update: pass --title, --body, --image or --remove-image")
		}

		c, mgr, err := clients(cmd.Context())
		if err != nil {
			return err
		}

		current, err := c.GetPost(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := ensureOwner(current, mgr.CurrentUser(), "update"); err != nil {
			return err
		}

		enc := sdk.EncodingMultipart
		if updateJSON {
			enc = sdk.EncodingJSON
		}

		post, err := c.UpdatePost(cmd.Context(), id, in, enc)
		if err != nil {
			return cmdutil.ReportedError(err)
		}

		pterm.Success.Printf("Updated post #%d: %s\n", post.ID, post.Title)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&updateBody, "body", "", "New body")
	updateCmd.Flags().StringVar(&updateImage, "image", "", "Path to a replacement image")
	updateCmd.Flags().BoolVar(&updateRemoveImage, "remove-image", false, "Remove the current image")
	updateCmd.Flags().BoolVar(&updateJSON, "json", false, "Send a JSON payload instead of multipart form data")
	updateCmd.MarkFlagsMutuallyExclusive("image", "remove-image")
	updateCmd.MarkFlagsMutuallyExclusive("json", "image")
	updateCmd.MarkFlagsMutuallyExclusive("json", "remove-image")
}
