package ota

import (
	"github.com/airlink-io/nodectl/internal/service"
)

// attemptState is the orchestrator's working memory for one upgrade run.
// Each field is set at most once and never recomputed, even across retries,
// so completed sub-steps survive transient failures. It is
// owned exclusively by the executing call stack and discarded when the run
// terminates.
type attemptState struct {
	session Session
	node    Node

	// Capability discovered from the node configuration. Immutable for the
	// duration of the run once set.
	entry       *service.Entry
	serviceName string

	// Cloud's answer to the image upload; carries the firmware reference.
	upload *service.UploadResult

	// Read/write property names resolved from the capability entry.
	propsResolved bool
	readProps     []string
	writeProps    []string

	// Parameter document fetched before issuing the start command.
	params service.Params

	startAccepted bool

	// polled distinguishes "not yet polled" from a nil reported status.
	polled      bool
	finalStatus any
}
