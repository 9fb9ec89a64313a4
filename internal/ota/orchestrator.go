// Package ota drives the firmware upgrade workflow: upload the image to the
// cloud, discover the node's upgrade capability, instruct the device to apply
// the image and poll for a reported status. Transient connectivity loss is
// retried without repeating completed work.
package ota

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/juju/clock"
	"github.com/looplab/fsm"

	"github.com/airlink-io/nodectl/internal/api"
	"github.com/airlink-io/nodectl/internal/service"
	"github.com/airlink-io/nodectl/pkg/log"
)

const (
	// DefaultMaxAttempts is the retry budget ceiling per upgrade phase.
	DefaultMaxAttempts = 5

	// DefaultRetryDelay is the fixed pause between attempts within a phase.
	DefaultRetryDelay = 5 * time.Second
)

var (
	// ErrCapabilityNotFound means the node configuration declares no
	// service with the OTA type tag. Not retryable.
	ErrCapabilityNotFound = errors.New("ota capability not found in node config")

	// ErrStartRejected means the device refused the upgrade start command.
	// Not retryable.
	ErrStartRejected = errors.New("device rejected the upgrade start command")
)

// Backend opens authenticated sessions against the cloud. The production
// implementation lives in backend.go; tests substitute fakes.
type Backend interface {
	NewSession(ctx context.Context) (Session, error)
}

// Session hands out node handles bound to one authenticated context.
type Session interface {
	Node(ctx context.Context, id string) (Node, error)
}

// Node is the slice of the node handle the upgrade workflow needs.
type Node interface {
	Config(ctx context.Context) (*service.NodeConfig, error)
	Params(ctx context.Context) (service.Params, error)
	SetParams(ctx context.Context, p service.Params) (bool, error)
	UploadFirmware(ctx context.Context, imageName, base64Payload string) (*service.UploadResult, error)
}

// Outcome is the terminal result of one upgrade run. No raw transport or
// parsing error escapes past it.
type Outcome struct {
	OK          bool
	Reason      string
	FinalStatus any
}

// Orchestrator drives one upgrade run at a time, synchronously. It owns the
// attempt state and retry budget exclusively for the duration of a run.
type Orchestrator struct {
	backend Backend
	clock   clock.Clock
	log     log.Logger
	out     io.Writer

	maxAttempts int
	retryDelay  time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock substitutes the wall clock, letting tests observe retry delays.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithRetryPolicy overrides the per-phase attempt ceiling and retry delay.
func WithRetryPolicy(maxAttempts int, delay time.Duration) Option {
	return func(o *Orchestrator) {
		o.maxAttempts = maxAttempts
		o.retryDelay = delay
	}
}

// WithLogger substitutes the logger.
func WithLogger(l log.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithOutput redirects the human-readable progress lines.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

// New creates an Orchestrator over the given backend.
func New(backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:     backend,
		clock:       clock.WallClock,
		log:         log.WithName("ota"),
		out:         os.Stdout,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Upgrade uploads the image at imagePath and drives the node through the
// upgrade to a terminal outcome. It never returns an error: every failure is
// converted to a logged message and a Failed outcome.
func (o *Orchestrator) Upgrade(ctx context.Context, nodeID, imagePath string) Outcome {
	machine := newUpgradeFSM(o.log)

	payload, imageName, err := loadImage(imagePath)
	if err != nil {
		o.log.Error(err, "Firmware image unreadable", "path", imagePath)
		o.fire(ctx, machine, eventFail)
		return Outcome{Reason: err.Error()}
	}

	st := &attemptState{}

	o.fire(ctx, machine, eventUpload)
	if err := o.runPhase(ctx, "upload", o.uploadStep(st, nodeID, imageName, payload)); err != nil {
		o.fire(ctx, machine, eventFail)
		o.log.Error(err, "Firmware upgrade failed", "node", nodeID, "phase", "upload")
		return Outcome{Reason: err.Error()}
	}

	if st.upload.ImageURL == "" {
		o.fire(ctx, machine, eventFail)
		reason := "upload response carried no firmware reference"
		o.log.Error(nil, "Firmware upgrade failed", "node", nodeID, "reason", reason)
		return Outcome{Reason: reason}
	}

	o.log.Info("Firmware image uploaded", "node", nodeID, "image", imageName, "url", st.upload.ImageURL)

	o.fire(ctx, machine, eventActivate)
	if err := o.runPhase(ctx, "activate", o.activateStep(st)); err != nil {
		o.fire(ctx, machine, eventFail)
		o.log.Error(err, "Firmware upgrade failed", "node", nodeID, "phase", "activate")
		return Outcome{Reason: err.Error(), FinalStatus: st.finalStatus}
	}

	// A reported status is terminal even when the device reports a failure;
	// only an absent or false status makes the run itself a failure.
	if st.finalStatus == nil || st.finalStatus == false {
		o.fire(ctx, machine, eventFail)
		reason := fmt.Sprintf("device reported no usable upgrade status: %v", st.finalStatus)
		o.log.Error(nil, "Firmware upgrade failed", "node", nodeID, "reason", reason)
		return Outcome{Reason: reason, FinalStatus: st.finalStatus}
	}

	o.fire(ctx, machine, eventSucceed)
	fmt.Fprintf(o.out, "Upgrade status: %v\n", st.finalStatus)
	return Outcome{OK: true, FinalStatus: st.finalStatus}
}

// runPhase executes step under a bounded, memoizing retry loop. The step
// performs only the sub-steps whose result is not yet cached, so transient
// failures resume from the first incomplete sub-step. Fatal errors abort
// immediately with no backoff.
func (o *Orchestrator) runPhase(ctx context.Context, phase string, step func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := step(ctx)
		if err == nil {
			return nil
		}

		if !api.IsTransient(err) {
			return err
		}

		remaining := o.maxAttempts - attempt
		if remaining <= 0 {
			return fmt.Errorf("%s phase: retry budget exhausted after %d attempts: %w", phase, attempt, err)
		}

		o.log.Warn("Transient failure, retrying", "phase", phase, "retriesLeft", remaining, "err", err)
		fmt.Fprintf(o.out, "Retries left: %d\n", remaining)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s phase interrupted: %w", phase, ctx.Err())
		case <-o.clock.After(o.retryDelay):
		}
	}
}

// uploadStep is Phase A: session, node handle, capability discovery and the
// image upload, in that fixed order, each memoized in st.
func (o *Orchestrator) uploadStep(st *attemptState, nodeID, imageName, payload string) func(context.Context) error {
	return func(ctx context.Context) error {
		if st.session == nil {
			s, err := o.backend.NewSession(ctx)
			if err != nil {
				return err
			}
			st.session = s
		}

		if st.node == nil {
			n, err := st.session.Node(ctx, nodeID)
			if err != nil {
				return err
			}
			st.node = n
		}

		if st.entry == nil {
			fmt.Fprintf(o.out, "Checking %s in node config...\n", service.OTAServiceType)
			cfg, err := st.node.Config(ctx)
			if err != nil {
				return err
			}
			entry, name := service.FindCapability(cfg, service.OTAServiceType)
			if entry == nil {
				return ErrCapabilityNotFound
			}
			st.entry = entry
			st.serviceName = name
			fmt.Fprintln(o.out, "Uploading firmware image...This may take time...")
		}

		if st.upload == nil {
			result, err := st.node.UploadFirmware(ctx, imageName, payload)
			if err != nil {
				return err
			}
			st.upload = result
			if !result.Succeeded() {
				return fmt.Errorf("cloud rejected the firmware image: %s", result.Description)
			}
		}

		return nil
	}
}

// activateStep is Phase B: property resolution, current parameters, the
// start command carrying the firmware reference, and one status poll.
func (o *Orchestrator) activateStep(st *attemptState) func(context.Context) error {
	return func(ctx context.Context) error {
		if !st.propsResolved {
			st.readProps, st.writeProps = service.ResolveProperties(st.entry)
			st.propsResolved = true
		}

		if st.params == nil {
			params, err := st.node.Params(ctx)
			if err != nil {
				return err
			}
			if params == nil {
				params = service.Params{}
			}
			st.params = params
			fmt.Fprintln(o.out, "Setting the firmware reference parameter...")
		}

		if !st.startAccepted {
			if len(st.writeProps) == 0 {
				return fmt.Errorf("service %q declares no writable property for the firmware reference", st.serviceName)
			}
			accepted, err := st.node.SetParams(ctx, service.Params{
				st.serviceName: map[string]any{st.writeProps[0]: st.upload.ImageURL},
			})
			if err != nil {
				return err
			}
			if !accepted {
				return ErrStartRejected
			}
			st.startAccepted = true
			fmt.Fprintln(o.out, "Getting upgrade status...")
		}

		if !st.polled {
			params, err := st.node.Params(ctx)
			if err != nil {
				return err
			}
			st.finalStatus = statusFrom(params, st.serviceName, st.readProps)
			st.polled = true
		}

		return nil
	}
}

// statusFrom extracts the first declared read property of the upgrade
// service from a parameter document.
func statusFrom(p service.Params, serviceName string, readProps []string) any {
	entry, ok := p[serviceName].(map[string]any)
	if !ok {
		return nil
	}
	for _, prop := range readProps {
		if v, ok := entry[prop]; ok {
			return v
		}
	}
	return nil
}

// loadImage reads the firmware image fully into memory and returns its
// base64 payload and derived image name. Relative paths resolve against the
// current working directory. Read failures are fatal, never retried.
func loadImage(path string) (payload, imageName string, err error) {
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("failed to resolve working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read firmware image: %w", err)
	}

	return base64.StdEncoding.EncodeToString(raw), service.ImageStem(path), nil
}

func (o *Orchestrator) fire(ctx context.Context, machine *fsm.FSM, event string) {
	if err := machine.Event(ctx, event); err != nil {
		o.log.Debug("State machine transition skipped", "event", event, "err", err)
	}
}
