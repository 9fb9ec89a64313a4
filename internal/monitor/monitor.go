// Package monitor streams live node parameter updates over MQTT.
package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/airlink-io/nodectl/pkg/log"
	"github.com/airlink-io/nodectl/pkg/mqtt"
)

// Monitor subscribes to a node's parameter topic and prints every update
// until the context is cancelled.
type Monitor struct {
	client mqtt.Client
	nodeID string
	out    io.Writer
	log    log.Logger
}

// New creates a Monitor for the given node over an already-configured
// MQTT client.
func New(client mqtt.Client, nodeID string, out io.Writer) *Monitor {
	return &Monitor{
		client: client,
		nodeID: nodeID,
		out:    out,
		log:    log.WithName("monitor"),
	}
}

func (m *Monitor) topic() string {
	return fmt.Sprintf("node/%s/params/local", m.nodeID)
}

// Run connects, subscribes and blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start mqtt client: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := m.client.AwaitConnection(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}

	if err := m.client.Subscribe(ctx, m.topic(), 1, m.handleUpdate); err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Watching parameter updates for node %s (Ctrl-C to stop)\n", m.nodeID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.client.Disconnect(shutdownCtx)
		return nil
	})

	return g.Wait()
}

func (m *Monitor) handleUpdate(_ context.Context, topic string, payload []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "    "); err != nil {
		// Not JSON; print raw rather than dropping the update.
		fmt.Fprintf(m.out, "[%s] %s\n", topic, payload)
		return
	}
	fmt.Fprintf(m.out, "[%s]\n%s\n", topic, pretty.String())
}
