package options

import (
	"errors"
	"net/url"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*APIOptions)(nil)

// APIOptions contains configuration for the cloud device-management API client.
type APIOptions struct {
	// Endpoint is the base URL of the cloud API, without the version segment.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`

	// Version is the API version path segment appended to Endpoint.
	Version string `json:"version" mapstructure:"version"`

	// Timeout applies to every individual HTTP request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// CACertFile is an optional PEM bundle used to verify the API server.
	CACertFile string `json:"ca-cert-file" mapstructure:"ca-cert-file"`
}

// NewAPIOptions creates APIOptions with default values.
func NewAPIOptions() *APIOptions {
	return &APIOptions{
		Endpoint: "https://api.airlink.io/",
		Version:  "v1",
		Timeout:  30 * time.Second,
	}
}

// Validate checks the option values entered by the user at startup.
func (o *APIOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}

	u, err := url.Parse(o.Endpoint)
	if err != nil {
		errs = append(errs, err)
	} else if u.Scheme != "https" && u.Scheme != "http" {
		errs = append(errs, errors.New("api endpoint must be an http(s) URL"))
	}

	if o.Timeout <= 0 {
		errs = append(errs, errors.New("api timeout must be positive"))
	}

	return errs
}

// AddFlags adds flags for APIOptions to the specified FlagSet.
func (o *APIOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Endpoint, "api.endpoint", o.Endpoint, "Base URL of the cloud API.")
	fs.StringVar(&o.Version, "api.version", o.Version, "API version path segment.")
	fs.DurationVar(&o.Timeout, "api.timeout", o.Timeout, "Timeout for individual API requests.")
	fs.StringVar(&o.CACertFile, "api.ca-cert-file", o.CACertFile, "Optional PEM bundle used to verify the API server certificate.")
}
