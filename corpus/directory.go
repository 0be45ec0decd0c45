// SPDX-License-Identifier: GPL-3.0-or-later
package corpus

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/CrawX/go-hammie/log"
	"github.com/CrawX/go-hammie/mail"

	"github.com/sirupsen/logrus"
)

// DirectoryCorpus keeps one file per message in a directory, the file name
// being the message key.
type DirectoryCorpus struct {
	*Corpus
	dir string
	l   *logrus.Logger
}

// OpenDirectory reads every regular file in dir. Existing files do not
// notify observers.
func OpenDirectory(dir string) (*DirectoryCorpus, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read corpus directory %s: %w", dir, err)
	}

	d := &DirectoryCorpus{
		Corpus: New(),
		dir:    dir,
		l:      log.Logger(log.LOG_STORE),
	}

	for _, entry := range entries {
		if !entry.Mode().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		raw, err := ioutil.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("could not read message %s: %w", entry.Name(), err)
		}
		d.load(mail.NewMessage(entry.Name(), raw))
	}

	d.l.WithFields(logrus.Fields{"dir": dir, "messages": d.Len()}).Debug("Opened directory corpus")
	return d, nil
}

func (d *DirectoryCorpus) Dir() string {
	return d.dir
}

// AddMessage writes msg to the directory and notifies the observers. The
// file is removed again if an observer refuses the message.
func (d *DirectoryCorpus) AddMessage(msg *mail.Message) error {
	file, err := d.file(msg.Key())
	if err != nil {
		return err
	}
	if _, err := d.Corpus.Get(msg.Key()); err == nil {
		return fmt.Errorf("message %s is already part of the corpus", msg.Key())
	}

	if err := ioutil.WriteFile(file, msg.Raw(), 0640); err != nil {
		return fmt.Errorf("could not write message %s: %w", msg.Key(), err)
	}

	if err := d.Corpus.AddMessage(msg); err != nil {
		if removeErr := os.Remove(file); removeErr != nil {
			return fmt.Errorf("%v, could not remove message file: %w", err, removeErr)
		}
		return err
	}

	return nil
}

// RemoveMessage notifies the observers and deletes the message file.
func (d *DirectoryCorpus) RemoveMessage(key string) error {
	file, err := d.file(key)
	if err != nil {
		return err
	}

	if _, err := d.Corpus.RemoveMessage(key); err != nil {
		return err
	}

	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete message %s: %w", key, err)
	}
	return nil
}

func (d *DirectoryCorpus) file(key string) (string, error) {
	if len(key) == 0 || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("message key %q is not a valid file name", key)
	}
	return filepath.Join(d.dir, key), nil
}
