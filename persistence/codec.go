// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"fmt"
	"io"

	"github.com/CrawX/go-hammie/domain"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is the container version written by SnapshotStore. Loading
// any other version fails with domain.ErrFormat.
const SnapshotVersion = 1

type snapshot struct {
	Version    int                        `msgpack:"version"`
	TokenStats map[string]domain.WordStat `msgpack:"tokenStats"`
	NumHam     int                        `msgpack:"numHam"`
	NumSpam    int                        `msgpack:"numSpam"`
}

func encodeSnapshot(w io.Writer, s *snapshot) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("could not encode snapshot: %w", err)
	}

	return nil
}

func decodeSnapshot(r io.Reader) (*snapshot, error) {
	s := &snapshot{}
	if err := msgpack.NewDecoder(r).Decode(s); err != nil {
		return nil, fmt.Errorf("%w: could not decode snapshot: %v", domain.ErrFormat, err)
	}

	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: snapshot version %d unknown, expected %d", domain.ErrFormat, s.Version, SnapshotVersion)
	}

	if s.NumHam < 0 || s.NumSpam < 0 {
		return nil, fmt.Errorf("%w: negative message counts %d/%d", domain.ErrFormat, s.NumHam, s.NumSpam)
	}

	return s, nil
}

func EncodeWordStat(stat domain.WordStat) ([]byte, error) {
	b, err := msgpack.Marshal(&stat)
	if err != nil {
		return nil, fmt.Errorf("could not encode word stat: %w", err)
	}

	return b, nil
}

func DecodeWordStat(b []byte) (domain.WordStat, error) {
	stat := domain.WordStat{}
	if err := msgpack.Unmarshal(b, &stat); err != nil {
		return domain.WordStat{}, fmt.Errorf("%w: could not decode word stat: %v", domain.ErrFormat, err)
	}

	return stat, nil
}

func encodeCounts(numHam, numSpam int) ([]byte, error) {
	b, err := msgpack.Marshal([]int{numHam, numSpam})
	if err != nil {
		return nil, fmt.Errorf("could not encode counts: %w", err)
	}

	return b, nil
}

func decodeCounts(b []byte) (int, int, error) {
	counts := []int{}
	if err := msgpack.Unmarshal(b, &counts); err != nil {
		return 0, 0, fmt.Errorf("%w: could not decode counts: %v", domain.ErrFormat, err)
	}

	if len(counts) != 2 {
		return 0, 0, fmt.Errorf("%w: expected 2 counts, got %d", domain.ErrFormat, len(counts))
	}
	if counts[0] < 0 || counts[1] < 0 {
		return 0, 0, fmt.Errorf("%w: negative message counts %d/%d", domain.ErrFormat, counts[0], counts[1])
	}

	return counts[0], counts[1], nil
}
