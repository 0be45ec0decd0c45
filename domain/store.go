// SPDX-License-Identifier: GPL-3.0-or-later

//go:generate mockgen -destination=mocks/store.go -package=mocks . KeyValueStore,StateStore
package domain

// KeyValueStore is a durable mapping from string keys to caller encoded
// values.
type KeyValueStore interface {
	// Get returns ErrNotFound if key is absent.
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Sync() error
	// Iterate calls fn for every entry whose key is not in skip. fn must not
	// modify the store. Iteration stops at the first error returned by fn.
	Iterate(skip map[string]bool, fn func(key string, value []byte) error) error
	// Keys lists every key, including the ones Iterate would skip.
	Keys() ([]string, error)
	Close() error
}

// TokenStats is the token to WordStat mapping of a classifier state.
type TokenStats interface {
	Get(token string) (WordStat, bool, error)
	Set(token string, stat WordStat) error
	Delete(token string) error
	Range(fn func(token string, stat WordStat) error) error
	Len() (int, error)
}

type State struct {
	TokenStats TokenStats
	NumHam     int
	NumSpam    int
}

// StateStore loads and saves a classifier state. A store that does not exist
// yet loads as an empty state.
type StateStore interface {
	Load() (*State, error)
	Save(state *State) error
	Close() error
}
