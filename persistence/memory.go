// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import "github.com/CrawX/go-hammie/domain"

// MemoryTokenStats keeps all token statistics in a map.
type MemoryTokenStats map[string]domain.WordStat

func NewMemoryTokenStats() MemoryTokenStats {
	return MemoryTokenStats{}
}

func (m MemoryTokenStats) Get(token string) (domain.WordStat, bool, error) {
	stat, ok := m[token]
	return stat, ok, nil
}

func (m MemoryTokenStats) Set(token string, stat domain.WordStat) error {
	m[token] = stat
	return nil
}

func (m MemoryTokenStats) Delete(token string) error {
	delete(m, token)
	return nil
}

func (m MemoryTokenStats) Range(fn func(token string, stat domain.WordStat) error) error {
	for token, stat := range m {
		if err := fn(token, stat); err != nil {
			return err
		}
	}
	return nil
}

func (m MemoryTokenStats) Len() (int, error) {
	return len(m), nil
}

// collect copies any TokenStats into a plain map.
func collect(stats domain.TokenStats) (map[string]domain.WordStat, error) {
	if stats == nil {
		return map[string]domain.WordStat{}, nil
	}
	if m, ok := stats.(MemoryTokenStats); ok {
		return m, nil
	}

	m := map[string]domain.WordStat{}
	err := stats.Range(func(token string, stat domain.WordStat) error {
		m[token] = stat
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}
