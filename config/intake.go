package config

import "strings"

// IntakeConfig contains document intake and file storage configuration.
type IntakeConfig struct {
	// BlobRoot is the directory that stores attached file contents.
	BlobRoot string `env:"INTAKE_BLOB_ROOT" envDefault:"./data/blobs"`
}

// Sanitize applies guardrails to intake configuration values.
func (i *IntakeConfig) Sanitize() {
	i.BlobRoot = strings.TrimSpace(i.BlobRoot)
	if i.BlobRoot == "" {
		i.BlobRoot = "./data/blobs"
	}
}
