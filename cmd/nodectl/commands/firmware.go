package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/airlink-io/nodectl/internal/store"
	"github.com/airlink-io/nodectl/pkg/options"
)

var firmwareCmd = &cobra.Command{
	Use:   "firmware",
	Short: "Manage firmware artifacts in a self-hosted store",
}

var (
	s3Opts           = options.NewS3Options()
	firmwareURLValid time.Duration
)

var firmwarePushCmd = &cobra.Command{
	Use:   "push <imagepath>",
	Short: "Upload a firmware image to the artifact store and print a download URL",
	Long: `Stages a firmware image in an S3-compatible bucket and prints a signed,
temporary download URL. The URL can be handed to devices that fetch their
image directly instead of going through the cloud upload API.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := store.NewMinIOProvider(s3Opts)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := provider.EnsureBucket(ctx); err != nil {
			return err
		}

		key, err := provider.PutFirmware(ctx, args[0])
		if err != nil {
			return err
		}

		url, err := provider.PresignedURL(ctx, key, firmwareURLValid)
		if err != nil {
			return err
		}

		fmt.Println(url)
		return nil
	},
}

func init() {
	s3Opts.AddFlags(firmwarePushCmd.Flags())
	firmwarePushCmd.Flags().DurationVar(&firmwareURLValid, "url-valid", time.Hour, "Validity window of the presigned download URL.")

	firmwareCmd.AddCommand(firmwarePushCmd)
	rootCmd.AddCommand(firmwareCmd)
}
