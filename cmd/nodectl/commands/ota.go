package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/airlink-io/nodectl/internal/ota"
	"github.com/airlink-io/nodectl/pkg/log"
)

var otaCmd = &cobra.Command{
	Use:   "ota",
	Short: "Over-the-air firmware upgrades",
}

var (
	otaMaxAttempts int
	otaRetryDelay  time.Duration
)

var otaUpgradeCmd = &cobra.Command{
	Use:   "upgrade <nodeid> <imagepath>",
	Short: "Upload a firmware image and upgrade a node",
	Long: `Uploads the firmware image to the cloud, discovers the node's upgrade
service, instructs the device to apply the image and polls the reported
status. Transient connectivity loss is retried per phase without repeating
completed work.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		orchestrator := ota.New(
			ota.NewCloudBackend(store, apiOpts),
			ota.WithRetryPolicy(otaMaxAttempts, otaRetryDelay),
		)

		outcome := orchestrator.Upgrade(cmd.Context(), args[0], args[1])
		if !outcome.OK {
			log.Error(nil, "OTA upgrade failed", "node", args[0], "reason", outcome.Reason)
			return errors.New("ota upgrade failed")
		}

		cmd.Printf("OTA upgrade finished, reported status: %v\n", outcome.FinalStatus)
		return nil
	},
}

func init() {
	otaUpgradeCmd.Flags().IntVar(&otaMaxAttempts, "max-attempts", ota.DefaultMaxAttempts, "Retry budget per upgrade phase.")
	otaUpgradeCmd.Flags().DurationVar(&otaRetryDelay, "retry-delay", ota.DefaultRetryDelay, "Fixed delay between attempts within a phase.")

	otaCmd.AddCommand(otaUpgradeCmd)
	rootCmd.AddCommand(otaCmd)
}
