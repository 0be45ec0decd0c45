// SPDX-License-Identifier: GPL-3.0-or-later
package classifier

import (
	"fmt"

	"github.com/CrawX/go-hammie/domain"
)

// tokenized is a message whose tokens were computed ahead of time.
type tokenized struct {
	domain.Message
	tokens []string
}

func (t *tokenized) Tokenize() ([]string, error) {
	return t.tokens, nil
}

// Pretokenize tokenizes msgs on up to concurrency goroutines and returns
// messages in the same order that hand out the precomputed tokens. Only the
// tokenizing runs concurrently, train and classify calls on the returned
// messages still happen one after another.
func Pretokenize(msgs []domain.Message, concurrency int) ([]domain.Message, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	semaphore := make(chan bool, concurrency)
	results := make([]domain.Message, len(msgs))
	errs := make([]error, len(msgs))
	for i := 0; i < len(msgs); i++ {
		semaphore <- true
		go func(index int) {
			tokens, err := msgs[index].Tokenize()
			results[index] = &tokenized{msgs[index], tokens}
			errs[index] = err
			<-semaphore
		}(i)
	}

	for i := 0; i < concurrency; i++ {
		semaphore <- true
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("could not tokenize %s: %w", msgs[i].Key(), err)
		}
	}

	return results, nil
}
