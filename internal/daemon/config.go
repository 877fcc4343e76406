package daemon

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/logr"
)

var ErrInvalidSecretLength = errors.New("secret must be 16 bytes in size")

// Config configures the scrd daemon. Descriptions of each field can be found
// in the flag definitions in ./cmd/scrd
type Config struct {
	Secret Secret
	// Address is the listening address of the http server
	Address string
	// Database is the postgres connection string. When empty everything is
	// kept in memory and lost upon exit.
	Database             string
	SSL                  bool
	CertFile, KeyFile    string
	EnableRequestLogging bool
	SecureCookies        bool
	LogConfig            logr.Config
}

// 16-byte secret for signing sessions and anti-forgery tokens
type Secret []byte

func (s *Secret) UnmarshalText(text []byte) error {
	*s = make([]byte, 16)
	n, err := hex.Decode(*s, text)
	if err != nil {
		return err
	}
	if n != 16 {
		return ErrInvalidSecretLength
	}
	return nil
}

// String renders the secret hex-encoded
func (s *Secret) String() string {
	return hex.EncodeToString(*s)
}

// Set implements pflag.Value
func (s *Secret) Set(text string) error {
	return s.UnmarshalText([]byte(strings.TrimSpace(text)))
}

// Type implements pflag.Value
func (*Secret) Type() string { return "hex" }

// NewConfig constructs an scrd configuration with defaults.
func NewConfig() Config {
	return Config{
		Address: ":8080",
	}
}

func (cfg *Config) Valid() error {
	if cfg.Secret == nil {
		return &internal.MissingParameterError{Parameter: "secret"}
	}
	if len(cfg.Secret) != 16 {
		return ErrInvalidSecretLength
	}
	return nil
}
