// SPDX-License-Identifier: GPL-3.0-or-later

// Package corpus holds sets of messages with a known class and tells
// observers about every message that enters or leaves a set.
package corpus

import (
	"fmt"
	"sort"

	"github.com/CrawX/go-hammie/domain"
)

// Observer is notified of corpus membership changes. A Trainer is the
// typical observer, keeping a classifier trained on exactly the messages of
// a corpus.
type Observer interface {
	OnAddMessage(msg domain.Message) error
	OnRemoveMessage(msg domain.Message) error
}

// Corpus is an in-memory message set keyed by Message.Key.
type Corpus struct {
	messages  map[string]domain.Message
	observers []Observer
}

func New() *Corpus {
	return &Corpus{
		messages: map[string]domain.Message{},
	}
}

func (c *Corpus) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// AddMessage notifies the observers in registration order and adds msg once
// all of them accepted it. If an observer fails, the ones before it have
// already seen the message.
func (c *Corpus) AddMessage(msg domain.Message) error {
	if _, ok := c.messages[msg.Key()]; ok {
		return fmt.Errorf("message %s is already part of the corpus", msg.Key())
	}

	for _, o := range c.observers {
		if err := o.OnAddMessage(msg); err != nil {
			return fmt.Errorf("could not add %s: %w", msg.Key(), err)
		}
	}

	c.messages[msg.Key()] = msg
	return nil
}

// RemoveMessage is the inverse of AddMessage. Absent keys yield
// domain.ErrNotFound.
func (c *Corpus) RemoveMessage(key string) (domain.Message, error) {
	msg, ok := c.messages[key]
	if !ok {
		return nil, fmt.Errorf("%w: message %s", domain.ErrNotFound, key)
	}

	for _, o := range c.observers {
		if err := o.OnRemoveMessage(msg); err != nil {
			return nil, fmt.Errorf("could not remove %s: %w", key, err)
		}
	}

	delete(c.messages, key)
	return msg, nil
}

func (c *Corpus) Get(key string) (domain.Message, error) {
	msg, ok := c.messages[key]
	if !ok {
		return nil, fmt.Errorf("%w: message %s", domain.ErrNotFound, key)
	}
	return msg, nil
}

// Messages returns all messages ordered by key.
func (c *Corpus) Messages() []domain.Message {
	keys := make([]string, 0, len(c.messages))
	for key := range c.messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	msgs := make([]domain.Message, 0, len(keys))
	for _, key := range keys {
		msgs = append(msgs, c.messages[key])
	}
	return msgs
}

func (c *Corpus) Len() int {
	return len(c.messages)
}

// load adds msg without notifying observers, for messages that are already
// part of the backing storage.
func (c *Corpus) load(msg domain.Message) {
	c.messages[msg.Key()] = msg
}
