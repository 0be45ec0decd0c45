// SPDX-License-Identifier: GPL-3.0-or-later
package evaluation

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"

	"github.com/CrawX/go-hammie/corpus"
)

// LoadSets reads the test data layout root/Spam/Set1..n and
// root/Ham/Set1..n and returns all messages in a stream that is shuffled
// with seed, so runs are reproducible.
func LoadSets(root string, nsets int, seed int64) ([]Sample, error) {
	if nsets < 1 {
		return nil, fmt.Errorf("at least one set is required, got %d", nsets)
	}

	samples := []Sample{}
	for i := 1; i <= nsets; i++ {
		for _, class := range []struct {
			dir    string
			isSpam bool
		}{{"Spam", true}, {"Ham", false}} {
			dir := filepath.Join(root, class.dir, fmt.Sprintf("Set%d", i))
			c, err := corpus.OpenDirectory(dir)
			if err != nil {
				return nil, err
			}

			for _, msg := range c.Messages() {
				samples = append(samples, Sample{Message: msg, IsSpam: class.isSpam})
			}
		}
	}

	Shuffle(samples, seed)
	return samples, nil
}

// Shuffle orders samples by key and shuffles them with seed.
func Shuffle(samples []Sample, seed int64) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Message.Key() < samples[j].Message.Key()
	})

	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
}
