// SPDX-License-Identifier: GPL-3.0-or-later
package mail

import (
	"crypto/sha256"
	"fmt"
)

// Message is a raw RFC 5322 mail with a corpus key. It satisfies
// domain.Message.
type Message struct {
	key   string
	raw   []byte
	score *float64
}

func NewMessage(key string, raw []byte) *Message {
	return &Message{
		key: key,
		raw: raw,
	}
}

// FromRaw keys a message by its header hash, falling back to a hash of the
// complete mail for messages without Message-Id and Received headers.
func FromRaw(raw []byte) *Message {
	headers, err := ParseHeaders(raw)
	if err == nil {
		return NewMessage(headers.ID, raw)
	}

	return NewMessage(fmt.Sprintf("%x", sha256.Sum256(raw)), raw)
}

func (m *Message) Key() string {
	return m.key
}

func (m *Message) Raw() []byte {
	return m.raw
}

// Subject is the shortened subject for log output, empty if the headers
// cannot be parsed.
func (m *Message) Subject() string {
	headers, err := ParseHeaders(m.raw)
	if err != nil {
		return ""
	}
	return ShortSubject(headers.Subject)
}

func (m *Message) Tokenize() ([]string, error) {
	tokens, err := Tokenize(m.raw)
	if err != nil {
		return nil, fmt.Errorf("could not tokenize %s: %w", m.key, err)
	}
	return tokens, nil
}

func (m *Message) SetScore(score float64) {
	m.score = &score
}

// Score returns the last score recorded by a classifier.
func (m *Message) Score() (float64, bool) {
	if m.score == nil {
		return 0, false
	}
	return *m.score, true
}
