// SPDX-License-Identifier: GPL-3.0-or-later

// Package kvtest holds the behaviour every domain.KeyValueStore
// implementation has to show. Backends run it from their own tests.
package kvtest

import (
	"errors"
	"sort"
	"testing"

	"github.com/CrawX/go-hammie/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type OpenFunc func(t *testing.T) domain.KeyValueStore

func Run(t *testing.T, open OpenFunc) {
	t.Run("getmissing", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		value, err := store.Get("missing")
		assert.Nil(t, value)
		assert.True(t, errors.Is(err, domain.ErrNotFound), "absent key should report ErrNotFound, got %v", err)
	})

	t.Run("setget", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		require.NoError(t, store.Set("token", []byte{1, 2, 3}))
		value, err := store.Get("token")
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, value)

		require.NoError(t, store.Set("token", []byte{4}))
		value, err = store.Get("token")
		require.NoError(t, err)
		assert.Equal(t, []byte{4}, value, "set should overwrite")
	})

	t.Run("delete", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		require.NoError(t, store.Set("token", []byte{1}))
		require.NoError(t, store.Delete("token"))
		_, err := store.Get("token")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("iterateskips", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		require.NoError(t, store.Set("saved state", []byte{9}))
		require.NoError(t, store.Set("a", []byte{1}))
		require.NoError(t, store.Set("b", []byte{2}))
		require.NoError(t, store.Sync())

		seen := map[string][]byte{}
		err := store.Iterate(map[string]bool{"saved state": true}, func(key string, value []byte) error {
			seen[key] = value
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{"a": {1}, "b": {2}}, seen)

		keys, err := store.Keys()
		require.NoError(t, err)
		sort.Strings(keys)
		assert.Equal(t, []string{"a", "b", "saved state"}, keys)
	})

	t.Run("iteratestops", func(t *testing.T) {
		store := open(t)
		defer store.Close()

		require.NoError(t, store.Set("a", []byte{1}))
		require.NoError(t, store.Set("b", []byte{2}))

		stop := errors.New("stop")
		calls := 0
		err := store.Iterate(nil, func(key string, value []byte) error {
			calls++
			return stop
		})
		assert.True(t, errors.Is(err, stop))
		assert.Equal(t, 1, calls)
	})
}
