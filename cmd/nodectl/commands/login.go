package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airlink-io/nodectl/internal/session"
)

var (
	loginUserName string
	loginPassword string
	loginBrowser  bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the cloud and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		if loginBrowser {
			return session.LoginWithBrowser(cmd.Context(), store, apiOpts)
		}
		return session.Login(cmd.Context(), store, apiOpts, loginUserName, loginPassword)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.ClearTokens(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginUserName, "user", "", "User name (prompted when omitted).")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted).")
	loginCmd.Flags().BoolVar(&loginBrowser, "browser", false, "Log in via the browser redirect flow.")

	rootCmd.AddCommand(loginCmd, logoutCmd)
}
