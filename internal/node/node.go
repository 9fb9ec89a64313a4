package node

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/airlink-io/nodectl/internal/service"
	"github.com/airlink-io/nodectl/internal/session"
)

// Node is an addressable proxy for one remote device. It is stateless beyond
// its identity: every call is a single authenticated request/response.
type Node struct {
	id   string
	sess *session.Session
}

// New constructs a handle for the node with the given identifier. A handle
// must always be bound to a live session.
func New(id string, sess *session.Session) (*Node, error) {
	if id == "" {
		return nil, errors.New("node id is required")
	}
	if sess == nil {
		return nil, errors.New("node handle requires a live session")
	}
	return &Node{id: id, sess: sess}, nil
}

// ID returns the node identifier.
func (n *Node) ID() string {
	return n.id
}

func (n *Node) query() url.Values {
	return url.Values{"node_id": []string{n.id}}
}

// Config retrieves the node's configuration document.
func (n *Node) Config(ctx context.Context) (*service.NodeConfig, error) {
	var cfg service.NodeConfig
	if err := n.sess.Client().GetJSON(ctx, "user/nodes/config", n.query(), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Status retrieves the node's connectivity status document.
func (n *Node) Status(ctx context.Context) (map[string]any, error) {
	var status map[string]any
	if err := n.sess.Client().GetJSON(ctx, "user/nodes/status", n.query(), &status); err != nil {
		return nil, err
	}
	return status, nil
}

// Params retrieves the node's current parameter document.
func (n *Node) Params(ctx context.Context) (service.Params, error) {
	var params service.Params
	if err := n.sess.Client().GetJSON(ctx, "user/nodes/params", n.query(), &params); err != nil {
		return nil, err
	}
	return params, nil
}

type statusResponse struct {
	Status      string `json:"status"`
	Description string `json:"description"`
}

// SetParams pushes a parameter document to the node. The returned bool
// reports whether the cloud accepted the write; a clean refusal is not a
// transport error.
func (n *Node) SetParams(ctx context.Context, p service.Params) (bool, error) {
	var resp statusResponse
	if err := n.sess.Client().PutJSON(ctx, "user/nodes/params", n.query(), p, &resp); err != nil {
		return false, err
	}
	return strings.Contains(resp.Status, "success"), nil
}

// RemoveMapping detaches the node from the logged-in user.
func (n *Node) RemoveMapping(ctx context.Context) error {
	body := map[string]string{
		"node_id":   n.id,
		"operation": "remove",
	}
	var resp statusResponse
	return n.sess.Client().PutJSON(ctx, "user/nodes/mapping", nil, body, &resp)
}

// UploadFirmware transmits a base64-encoded firmware image for this node.
func (n *Node) UploadFirmware(ctx context.Context, imageName, base64Payload string) (*service.UploadResult, error) {
	return service.UploadFirmware(ctx, n.sess.Client(), n.id, imageName, base64Payload)
}

// List returns the identifiers of all nodes associated with the user.
func List(ctx context.Context, sess *session.Session) ([]string, error) {
	var resp struct {
		Nodes []string `json:"nodes"`
	}
	if err := sess.Client().GetJSON(ctx, "user/nodes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Nodes, nil
}
