package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"wardrobe/internal/client"
	"wardrobe/internal/render"
)

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload clothing photos",
		Long: `Upload one or more clothing photos. Directories are expanded to the
files directly inside them; anything that is not an image is ignored.`,
		Example: `  wardrobe upload tee.jpg jeans.png
  wardrobe upload ~/Pictures/closet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images, err := client.CollectImages(args)
			if err != nil {
				return err
			}

			cmd.Println(render.UploadStatus(len(images)))

			result, err := a.api.Upload(cmd.Context(), images)
			if err != nil {
				return err
			}

			a.logger.Info(cmd.Context()).Int("items", len(result.Items)).Msg("Upload complete")
			cmd.Println(a.renderer.UploadResult(result))
			return nil
		},
	}
}

func newInventoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "inventory",
		Aliases: []string{"ls"},
		Short:   "List every item in the wardrobe",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.api.Inventory(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Println(a.renderer.Inventory(items))
			return nil
		},
	}
}

func newGenerateCmd(a *app) *cobra.Command {
	var city string

	cmd := &cobra.Command{
		Use:   "generate [city]",
		Short: "Recommend outfits for a city's current weather",
		Example: `  wardrobe generate --city Paris
  wardrobe generate "New York"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && strings.TrimSpace(city) == "" {
				city = args[0]
			}

			result, err := a.api.Generate(cmd.Context(), city)
			if err != nil {
				return err
			}

			cmd.Println(a.renderer.Results(result))
			return nil
		},
	}

	cmd.Flags().StringVarP(&city, "city", "c", "", "city to look up the weather for")

	return cmd
}
