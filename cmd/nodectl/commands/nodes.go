package commands

import (
	"encoding/json"
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/airlink-io/nodectl/internal/node"
	"github.com/airlink-io/nodectl/pkg/log"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Inspect and manage registered nodes",
}

var nodesListDetails bool

var nodesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all nodes associated with the user",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sess, err := openSession()
		if err != nil {
			return err
		}

		ids, err := node.List(cmd.Context(), sess)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("User is not associated with any nodes.")
			return nil
		}

		table := uitable.New()
		table.MaxColWidth = 64

		if !nodesListDetails {
			table.AddRow("NODE ID")
			for _, id := range ids {
				table.AddRow(id)
			}
			fmt.Println(table)
			return nil
		}

		table.AddRow("NODE ID", "NAME", "TYPE", "FW VERSION")
		for _, id := range ids {
			n, err := node.New(id, sess)
			if err != nil {
				return err
			}
			cfg, err := n.Config(cmd.Context())
			if err != nil {
				log.Warn("Failed to fetch node config", "node", id, "err", err)
				table.AddRow(id, "-", "-", "-")
				continue
			}
			table.AddRow(id, cfg.Info.Name, cfg.Info.Type, cfg.Info.FWVersion)
		}
		fmt.Println(table)
		return nil
	},
}

var nodesConfigCmd = &cobra.Command{
	Use:   "config <nodeid>",
	Short: "Show the configuration of a node",
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
		cfg, err := n.Config(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cfg)
	},
}

var nodesStatusCmd = &cobra.Command{
	Use:   "status <nodeid>",
	Short: "Show the online/offline status of a node",
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
		status, err := n.Status(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(status)
	},
}

var nodesRemoveCmd = &cobra.Command{
	Use:   "remove <nodeid>",
	Short: "Remove the user's mapping to a node",
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
		if err := n.RemoveMapping(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Removed node %s successfully.\n", args[0])
		return nil
	},
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	nodesListCmd.Flags().BoolVar(&nodesListDetails, "details", false, "Fetch each node's config to show name, type and firmware version.")

	nodesCmd.AddCommand(nodesListCmd, nodesConfigCmd, nodesStatusCmd, nodesRemoveCmd)
	rootCmd.AddCommand(nodesCmd)
}
