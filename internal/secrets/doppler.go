// Package secrets resolves sensitive configuration values (screening and mail
// API keys) through the Doppler CLI. The process environment always wins, so
// `doppler run` and plain .env development behave identically; the CLI is only
// consulted for keys the environment does not carry.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrDopplerUnavailable is returned when the Doppler CLI is not on PATH. The
// caller falls back to environment variables in that case.
var ErrDopplerUnavailable = errors.New("doppler CLI not available")

// DopplerClient reads secrets from one Doppler project/config pair.
type DopplerClient struct {
	project     string
	config      string
	initialized bool
}

// NewDopplerClient creates a client for the given project and config
func NewDopplerClient(project, config string) *DopplerClient {
	return &DopplerClient{project: project, config: config}
}

// Initialize verifies the Doppler CLI is installed
func (d *DopplerClient) Initialize() error {
	if _, err := exec.LookPath("doppler"); err != nil {
		return fmt.Errorf("%w: %v", ErrDopplerUnavailable, err)
	}
	d.initialized = true
	return nil
}

// GetSecret returns the value for key, preferring the process environment over
// a direct CLI lookup
func (d *DopplerClient) GetSecret(key string) (string, error) {
	if !d.initialized {
		if err := d.Initialize(); err != nil {
			return "", err
		}
	}

	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	out, err := exec.Command("doppler", "secrets", "get", key,
		"--project", d.project,
		"--config", d.config,
		"--plain").Output()
	if err != nil {
		return "", fmt.Errorf("error reading secret %s: %w", key, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// GetSecretWithFallback returns the secret, or fallback when the secret cannot
// be read or is empty
func (d *DopplerClient) GetSecretWithFallback(key, fallback string) string {
	value, err := d.GetSecret(key)
	if err != nil || value == "" {
		return fallback
	}
	return value
}
