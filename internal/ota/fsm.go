package ota

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/airlink-io/nodectl/pkg/log"
)

// Upgrade run phases, tracked by a state machine so progress is observable
// in logs and (in tests) inspectable.
const (
	StateIdle       = "idle"
	StateUploading  = "uploading"
	StateActivating = "activating"
	StateSucceeded  = "succeeded"
	StateFailed     = "failed"
)

const (
	eventUpload   = "upload"
	eventActivate = "activate"
	eventSucceed  = "succeed"
	eventFail     = "fail"
)

func newUpgradeFSM(logger log.Logger) *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventUpload, Src: []string{StateIdle}, Dst: StateUploading},
			{Name: eventActivate, Src: []string{StateUploading}, Dst: StateActivating},
			{Name: eventSucceed, Src: []string{StateActivating}, Dst: StateSucceeded},
			{Name: eventFail, Src: []string{StateIdle, StateUploading, StateActivating}, Dst: StateFailed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debug("Upgrade phase transition", "from", e.Src, "to", e.Dst)
			},
		},
	)
}
