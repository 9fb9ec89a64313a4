package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/airlink-io/nodectl/internal/node"
	"github.com/airlink-io/nodectl/internal/service"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Read and write node parameters",
}

var paramsGetCmd = &cobra.Command{
	Use:   "get <nodeid>",
	Short: "Get the current parameters of a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sess, err := openSession()
		if err != nil {
			return err
		}
		n, err := node.New(args[0], sess)
		if err != nil {
			return err
		}
		params, err := n.Params(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(params)
	},
}

var (
	paramsSetData string
	paramsSetFile string
)

var paramsSetCmd = &cobra.Command{
	Use:   "set <nodeid>",
	Short: "Set parameters of a node from JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		switch {
		case paramsSetData != "":
			raw = []byte(paramsSetData)
		case paramsSetFile != "":
			var err error
			raw, err = os.ReadFile(paramsSetFile)
			if err != nil {
				return fmt.Errorf("failed to read parameter file: %w", err)
			}
		default:
			return errors.New("either --data or --filepath is required")
		}

		var params service.Params
		if err := json.Unmarshal(raw, &params); err != nil {
			return fmt.Errorf("invalid parameter JSON: %w", err)
		}

		_, sess, err := openSession()
		if err != nil {
			return err
		}
		n, err := node.New(args[0], sess)
		if err != nil {
			return err
		}

		accepted, err := n.SetParams(cmd.Context(), params)
		if err != nil {
			return err
		}
		if !accepted {
			return errors.New("cloud did not accept the parameter update")
		}
		fmt.Println("Node state updated successfully.")
		return nil
	},
}

func init() {
	paramsSetCmd.Flags().StringVar(&paramsSetData, "data", "", "Parameters as an inline JSON document.")
	paramsSetCmd.Flags().StringVar(&paramsSetFile, "filepath", "", "Path to a JSON file with the parameters.")

	paramsCmd.AddCommand(paramsGetCmd, paramsSetCmd)
	rootCmd.AddCommand(paramsCmd)
}
