package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/airlink-io/nodectl/internal/config"
	"github.com/airlink-io/nodectl/internal/session"
	"github.com/airlink-io/nodectl/pkg/log"
	"github.com/airlink-io/nodectl/pkg/options"
)

var (
	apiOpts = options.NewAPIOptions()
	logOpts = log.NewOptions()
)

var rootCmd = &cobra.Command{
	Use:   "nodectl",
	Short: "Manage cloud-registered IoT nodes and their firmware",
	Long: `nodectl authenticates a user against the cloud device-management API,
enumerates registered nodes, reads and writes their parameters and drives
over-the-air firmware upgrades to completion.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if errs := apiOpts.Validate(); len(errs) > 0 {
			return errs[0]
		}
		log.Init(logOpts)
		return nil
	},
}

// Execute runs the root command. Failures are logged and mapped to a
// nonzero exit code; nothing panics past this point.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	apiOpts.AddFlags(rootCmd.PersistentFlags())
	logOpts.AddFlags(rootCmd.PersistentFlags())
}

// openStore opens the persistent config store.
func openStore() (*config.Store, error) {
	return config.NewStore()
}

// openSession loads the stored credentials into a live session.
func openSession() (*config.Store, *session.Session, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	sess, err := session.New(store, apiOpts)
	if err != nil {
		return nil, nil, err
	}
	return store, sess, nil
}
