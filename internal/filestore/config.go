package filestore

import (
	"strings"

	"github.com/koustreak/s3studio/internal/errs"
)

// Provider identifies the file storage backend.
type Provider string

const (
	ProviderS3 Provider = "s3"
)

// DefaultEndpoint is used when Config.Endpoint is empty.
const DefaultEndpoint = "s3.amazonaws.com"

// Config holds all settings needed to reach one bucket.
type Config struct {
	// Provider is the storage backend. Empty means ProviderS3.
	Provider Provider `yaml:"provider,omitempty" json:"provider,omitempty"`

	// Endpoint is the host[:port] of an S3-compatible server, optionally
	// with an http:// or https:// scheme. Empty means AWS S3.
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`

	AccessKey    string `yaml:"access_key_id" json:"accessKeyId"`
	SecretKey    string `yaml:"secret_access_key" json:"secretAccessKey"`
	SessionToken string `yaml:"session_token,omitempty" json:"sessionToken,omitempty"`

	// Region is the signing region (e.g. "us-east-1").
	Region string `yaml:"region" json:"region"`

	// Bucket every path is resolved against.
	Bucket string `yaml:"bucket" json:"bucket"`

	// UseSSL controls TLS when Endpoint carries no scheme.
	UseSSL bool `yaml:"use_ssl" json:"useSSL"`
}

// DefaultConfig returns an AWS S3 config for bucket in region.
func DefaultConfig(accessKey, secretKey, region, bucket string) *Config {
	return &Config{
		Provider:  ProviderS3,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Region:    region,
		Bucket:    bucket,
		UseSSL:    true,
	}
}

// Normalize trims surrounding whitespace from every field and drops an
// empty session token.
func (c *Config) Normalize() {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.AccessKey = strings.TrimSpace(c.AccessKey)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.SessionToken = strings.TrimSpace(c.SessionToken)
	c.Region = strings.TrimSpace(c.Region)
	c.Bucket = strings.TrimSpace(c.Bucket)
	if c.Provider == "" {
		c.Provider = ProviderS3
	}
}

// Validate reports a missing access key, region or bucket.
func (c *Config) Validate() error {
	if c.Provider != "" && c.Provider != ProviderS3 {
		return errs.New(errs.ErrKindInvalidInput, "unsupported provider "+string(c.Provider))
	}
	var missing []string
	if c.AccessKey == "" {
		missing = append(missing, "access key id")
	}
	if c.Region == "" {
		missing = append(missing, "region")
	}
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if len(missing) > 0 {
		return errs.New(errs.ErrKindInvalidInput, "config must include "+strings.Join(missing, ", "))
	}
	return nil
}

// HostAndTLS splits Endpoint into a bare host[:port] and the TLS flag.
// A scheme on the endpoint wins over UseSSL.
func (c *Config) HostAndTLS() (string, bool) {
	ep := c.Endpoint
	switch {
	case ep == "":
		return DefaultEndpoint, true
	case strings.HasPrefix(ep, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(ep, "https://"), "/"), true
	case strings.HasPrefix(ep, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(ep, "http://"), "/"), false
	default:
		return strings.TrimSuffix(strings.TrimPrefix(ep, "//"), "/"), c.UseSSL
	}
}
