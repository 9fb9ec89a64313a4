// Package service models the capabilities a node declares in its cloud
// configuration and the operations built on top of them.
package service

// OTAServiceType is the type tag of the firmware upgrade capability.
const OTAServiceType = "airlink.service.ota"

// Access flags declared per property in a node's configuration.
const (
	AccessRead  = "read"
	AccessWrite = "write"
)

// Params is a node parameter document: service/device name to a bag of
// parameter values. No schema is enforced at this layer.
type Params map[string]any

// Property is one named parameter declared by a service entry.
type Property struct {
	Name       string   `json:"name"`
	DataType   string   `json:"data_type"`
	Properties []string `json:"properties"`
}

// Entry is one service declared in a node's configuration.
type Entry struct {
	Name   string     `json:"name"`
	Type   string     `json:"type"`
	Params []Property `json:"params"`
}

// Info is the static identity block of a node's configuration.
type Info struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	FWVersion string `json:"fw_version"`
}

// NodeConfig is the configuration document retrieved from the cloud.
type NodeConfig struct {
	NodeID   string  `json:"node_id"`
	Info     Info    `json:"info"`
	Services []Entry `json:"services"`
}

// FindCapability scans the node configuration for the first service whose
// type tag matches capabilityType and returns it with its declared name.
// No match is a normal empty result, not an error.
func FindCapability(cfg *NodeConfig, capabilityType string) (*Entry, string) {
	if cfg == nil {
		return nil, ""
	}
	for i := range cfg.Services {
		if cfg.Services[i].Type == capabilityType {
			return &cfg.Services[i], cfg.Services[i].Name
		}
	}
	return nil, ""
}

// ResolveProperties splits a service's declared properties into read-capable
// and write-capable name sets based on the per-property access flags.
// A property carrying both flags appears in both sets.
func ResolveProperties(e *Entry) (readProps, writeProps []string) {
	if e == nil {
		return nil, nil
	}
	for _, p := range e.Params {
		for _, access := range p.Properties {
			switch access {
			case AccessRead:
				readProps = append(readProps, p.Name)
			case AccessWrite:
				writeProps = append(writeProps, p.Name)
			}
		}
	}
	return readProps, writeProps
}
