package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/airlink-io/nodectl/internal/monitor"
	"github.com/airlink-io/nodectl/pkg/mqtt"
	"github.com/airlink-io/nodectl/pkg/options"
)

var mqttOpts = options.NewMqttOptions()

var monitorCmd = &cobra.Command{
	Use:   "monitor <nodeid>",
	Short: "Stream live parameter updates for a node over MQTT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// The broker defaults to the endpoint the cloud advertises.
		if mqttOpts.Broker == "" {
			_, sess, err := openSession()
			if err != nil {
				return err
			}
			host, err := sess.MQTTHost(ctx)
			if err != nil {
				return err
			}
			mqttOpts.Broker = "tls://" + host + ":8883"
		}

		client, err := mqtt.NewClient(mqttOpts.ToClientConfig())
		if err != nil {
			return err
		}

		return monitor.New(client, args[0], os.Stdout).Run(ctx)
	},
}

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Show cloud endpoints",
}

var endpointMqttCmd = &cobra.Command{
	Use:   "mqtt",
	Short: "Print the MQTT host endpoint advertised by the cloud",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sess, err := openSession()
		if err != nil {
			return err
		}
		host, err := sess.MQTTHost(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Println(host)
		return nil
	},
}

func init() {
	mqttOpts.AddFlags(monitorCmd.Flags())

	endpointCmd.AddCommand(endpointMqttCmd)
	rootCmd.AddCommand(monitorCmd, endpointCmd)
}
