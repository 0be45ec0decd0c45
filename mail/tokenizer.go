// SPDX-License-Identifier: GPL-3.0-or-later
package mail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"regexp"
	"strings"

	"github.com/CrawX/go-hammie/log"

	"github.com/emersion/go-message/mail"
)

const (
	minWordLength = 3
	maxWordLength = 12
)

var (
	htmlTag       = regexp.MustCompile(`<[^>]*>`)
	addressFields = []string{"From", "To", "Cc", "Reply-To"}
)

// Tokenize splits a raw mail into the tokens the classifier learns from:
// subject words, sender and recipient addresses, part content types,
// attachment file names and the words of all text parts.
func Tokenize(rawMail []byte) ([]string, error) {
	unwrapped, err := UnwrapSpamassassinReport(rawMail)
	if err != nil {
		return nil, err
	}

	mr, err := mail.CreateReader(bytes.NewReader(unwrapped))
	if err != nil {
		log.Logger(log.LOG_CLASSIFIER).WithError(err).Debug("Could not parse mail, tokenizing raw text")
		return tokenizeText(string(unwrapped), ""), nil
	}
	defer mr.Close()

	tokens := headerTokens(&mr.Header)

	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// a broken part ends the walk, what was read so far still counts
			log.Logger(log.LOG_CLASSIFIER).WithError(err).Debug("Could not read mail part")
			tokens = append(tokens, "part:broken")
			break
		}

		partTokens, err := tokenizePart(p)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, partTokens...)
	}

	return tokens, nil
}

func headerTokens(h *mail.Header) []string {
	var tokens []string

	subject, err := h.Subject()
	if err != nil {
		subject = h.Get("Subject")
	}
	tokens = append(tokens, tokenizeText(subject, "subject:")...)

	for _, field := range addressFields {
		prefix := strings.ToLower(field) + ":"
		addresses, err := h.AddressList(field)
		if err != nil {
			tokens = append(tokens, prefix+"unparseable")
			continue
		}

		for _, a := range addresses {
			if len(a.Name) == 0 {
				tokens = append(tokens, prefix+"no real name")
			} else {
				tokens = append(tokens, prefix+"name:"+strings.ToLower(a.Name))
			}

			address := strings.ToLower(a.Address)
			tokens = append(tokens, prefix+"addr:"+address)
			if at := strings.LastIndex(address, "@"); at >= 0 {
				tokens = append(tokens, prefix+"domain:"+address[at+1:])
			}
		}
	}

	return tokens
}

func tokenizePart(p *mail.Part) ([]string, error) {
	var tokens []string

	switch h := p.Header.(type) {
	case *mail.AttachmentHeader:
		contentType, _, _ := h.ContentType()
		tokens = append(tokens, "content-type:"+strings.ToLower(contentType))
		filename, err := h.Filename()
		if err == nil && len(filename) > 0 {
			tokens = append(tokens, "filename:"+strings.ToLower(filename))
		}
		return tokens, nil
	case *mail.InlineHeader:
		contentType, _, err := h.ContentType()
		if err != nil || len(contentType) == 0 {
			contentType = "text/plain"
		}
		contentType = strings.ToLower(contentType)
		tokens = append(tokens, "content-type:"+contentType)

		if !strings.HasPrefix(contentType, "text/") {
			return tokens, nil
		}

		body, err := ioutil.ReadAll(p.Body)
		if err != nil {
			return nil, fmt.Errorf("could not read mail part: %w", err)
		}

		text := string(body)
		if contentType == "text/html" {
			text = htmlTag.ReplaceAllString(text, " ")
		}
		tokens = append(tokens, tokenizeText(text, "")...)
	}

	return tokens, nil
}

// tokenizeText lowercases the words of text. Short words are dropped, long
// ones are replaced by a token naming their first character and length.
func tokenizeText(text, prefix string) []string {
	var tokens []string
	for _, word := range strings.Fields(text) {
		word = strings.ToLower(strings.Trim(word, `.,;:!?"'()[]{}<>`))
		n := len(word)
		switch {
		case n < minWordLength:
		case n <= maxWordLength:
			tokens = append(tokens, prefix+word)
		default:
			tokens = append(tokens, fmt.Sprintf("%sskip:%c %d", prefix, word[0], n/10*10))
		}
	}
	return tokens
}
