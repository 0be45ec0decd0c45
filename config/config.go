// SPDX-License-Identifier: GPL-3.0-or-later
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/CrawX/go-hammie/costcounter"
	"github.com/CrawX/go-hammie/domain"

	"github.com/BurntSushi/toml"
)

const (
	BackendSnapshot = "snapshot"
	BackendBadger   = "badger"
	BackendSqlite   = "sqlite"
)

type Config struct {
	// StorageFile is the snapshot file, badger directory or sqlite database
	// holding the classifier state.
	StorageFile string
	Backend     string

	HamCutoff  float64
	SpamCutoff float64

	FnWeight         float64
	FpWeight         float64
	UnsureHamWeight  float64
	UnsureSpamWeight float64

	ImapHost string
	User     string
	Password string

	SpamTrainFolders []string
	HamTrainFolders  []string
	// ImapLedger is the sqlite database remembering trained imap messages.
	ImapLedger string

	Loglevel *string
}

func Default() *Config {
	return &Config{
		StorageFile:      "hammie.db",
		Backend:          BackendBadger,
		HamCutoff:        0.20,
		SpamCutoff:       0.90,
		FnWeight:         1,
		FpWeight:         10,
		UnsureHamWeight:  0.2,
		UnsureSpamWeight: 0.2,
		ImapLedger:       "hammie-imap.db",
	}
}

// ReadConfig decodes filename over the defaults. A missing file yields the
// defaults.
func ReadConfig(filename string) (*Config, error) {
	config := Default()

	_, err := toml.DecodeFile(filename, config)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if err := validateNonEmptyStringField(c.StorageFile, "StorageFile must not be empty, set to the file or directory holding the classifier"); err != nil {
		return err
	}

	switch c.Backend {
	case BackendSnapshot, BackendBadger, BackendSqlite:
	default:
		return fmt.Errorf("%w: Backend must be one of %s, %s or %s, got %q", domain.ErrInvalidConfiguration, BackendSnapshot, BackendBadger, BackendSqlite, c.Backend)
	}

	if err := c.Cutoffs().Validate(); err != nil {
		return err
	}

	return c.Weights().Validate()
}

// ValidateImap checks the account settings, which are only required for
// commands talking to an IMAP server.
func (c *Config) ValidateImap() error {
	if err := validateNonEmptyStringField(c.ImapHost, "ImapHost must not be empty, set to host:port of the imap server"); err != nil {
		return err
	}

	if err := validateNonEmptyStringField(c.User, "User must not be empty, set to username on the imap server"); err != nil {
		return err
	}

	if err := validateNonEmptyStringField(c.Password, "Password must not be empty, set to password of User on the imap server"); err != nil {
		return err
	}

	if err := validateNonEmptyStringField(c.ImapLedger, "ImapLedger must not be empty, set to a filename for the sqlite database of trained mails"); err != nil {
		return err
	}

	if len(c.SpamTrainFolders) == 0 && len(c.HamTrainFolders) == 0 {
		return fmt.Errorf("%w: set SpamTrainFolders or HamTrainFolders to train from imap", domain.ErrInvalidConfiguration)
	}

	return nil
}

func (c *Config) Cutoffs() domain.Cutoffs {
	return domain.Cutoffs{Ham: c.HamCutoff, Spam: c.SpamCutoff}
}

func (c *Config) Weights() costcounter.Weights {
	return costcounter.Weights{
		FalseNegative: c.FnWeight,
		FalsePositive: c.FpWeight,
		UnsureHam:     c.UnsureHamWeight,
		UnsureSpam:    c.UnsureSpamWeight,
	}
}

func validateNonEmptyStringField(field string, err string) error {
	if len(strings.TrimSpace(field)) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfiguration, err)
	}

	return nil
}
