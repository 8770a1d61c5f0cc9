package cmd

import (
	"fmt"
	"net/url"

	"github.com/hospoda/shiftboard/internal/cli/api"
	"github.com/hospoda/shiftboard/internal/cli/output"
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:     "gallery",
	Aliases: []string{"galerie"},
	Short:   "Staff photo gallery",
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List photos, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		var resp api.Response[[]api.Photo]
		if err := apiClient.Get("/gallery", nil, &resp); err != nil {
			return explain(err, "listing photos")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.PhotoTable(resp.Data)
		return nil
	},
}

var flagCaption string

var galleryUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		var resp api.Response[api.Photo]
		fields := map[string]string{"caption": flagCaption}
		if err := apiClient.Upload("/gallery", "photo", args[0], fields, &resp); err != nil {
			return explain(err, "uploading photo")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Printf("Uploaded %s (%dx%d, %s)\n", resp.Data.ID, resp.Data.Width, resp.Data.Height, output.FormatSize(resp.Data.Size))
		return nil
	},
}

var galleryLikeCmd = &cobra.Command{
	Use:   "like <id>",
	Short: "Like a photo, or take the like back",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		var resp api.Response[api.LikeState]
		if err := apiClient.Post("/gallery/"+url.PathEscape(args[0])+"/like/toggle", nil, &resp); err != nil {
			return explain(err, "liking photo")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		verb := "Unliked"
		if resp.Data.Liked {
			verb = "Liked"
		}
		fmt.Printf("%s. %d like(s) now.\n", verb, len(resp.Data.Likes))
		return nil
	},
}

func init() {
	galleryUploadCmd.Flags().StringVar(&flagCaption, "caption", "", "Photo caption")
	galleryCmd.AddCommand(galleryListCmd, galleryUploadCmd, galleryLikeCmd)
	rootCmd.AddCommand(galleryCmd)
}
