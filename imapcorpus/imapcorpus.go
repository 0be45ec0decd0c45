// SPDX-License-Identifier: GPL-3.0-or-later

// Package imapcorpus reads training messages from IMAP folders. Folders are
// opened read-only and messages are fetched with BODY.PEEK, so the mailbox is
// left untouched.
package imapcorpus

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/CrawX/go-hammie/log"
	"github.com/CrawX/go-hammie/mail"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"
)

const BatchSize = 50

type Source struct {
	client imapClient
	server string

	l *logrus.Logger
}

func Dial(server, user, password string) (*Source, error) {
	imapClient, err := client.DialTLS(server, nil)
	if err != nil {
		return nil, fmt.Errorf("could not dial to imap: %w", err)
	}

	err = imapClient.Login(user, password)
	if err != nil {
		imapClient.Logout()
		return nil, fmt.Errorf("could not login to imap: %w", err)
	}

	s := newSource(imapClient, server)
	s.l.WithField("server", server).Debug("Logged in to server")
	return s, nil
}

func newSource(c imapClient, server string) *Source {
	return &Source{
		client: c,
		server: server,
		l:      log.Logger(log.LOG_IMAP),
	}
}

// Messages fetches every message of folder. Messages that appear more than
// once in the folder are returned once.
func (s *Source) Messages(folder string) ([]*mail.Message, error) {
	_, err := s.client.Select(folder, true)
	if err != nil {
		return nil, fmt.Errorf("could not select folder %s: %w", folder, err)
	}

	// all UIDs in folder (empty search criteria)
	uids, err := s.client.UidSearch(imap.NewSearchCriteria())
	if err != nil {
		return nil, fmt.Errorf("could not list folder %s: %w", folder, err)
	}

	messages := []*mail.Message{}
	if len(uids) == 0 {
		s.l.WithField("folder", folder).Info("Folder contains no mails")
		return messages, nil
	}

	batches := partitionUids(uids, BatchSize)
	s.l.WithFields(logrus.Fields{"folder": folder, "mails": len(uids), "batches": len(batches)}).Info("Fetching mails")

	seen := map[string]bool{}
	for _, batch := range batches {
		start := time.Now()
		fetched, err := s.fetch(batch)
		if err != nil {
			return nil, fmt.Errorf("could not fetch mail batch from %s: %w", folder, err)
		}
		s.l.WithFields(logrus.Fields{"batchsize": len(batch), "duration": time.Since(start)}).Debug("Fetched mail batch")

		for _, m := range fetched {
			if seen[m.Key()] {
				s.l.WithFields(logrus.Fields{"folder": folder, "key": m.Key()}).Debug("Skipping duplicate mail")
				continue
			}
			seen[m.Key()] = true
			messages = append(messages, m)
		}
	}

	return messages, nil
}

func (s *Source) fetch(uids []uint32) ([]*mail.Message, error) {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)

	messages := make(chan *imap.Message, 10)
	fullBodySection := &imap.BodySectionName{
		Peek: true,
	}

	fetchItems := []imap.FetchItem{fullBodySection.FetchItem()}
	done := make(chan error, 1)
	go func() {
		done <- s.client.UidFetch(seqset, fetchItems, messages)
	}()

	mails := []*mail.Message{}
	var readErr error
	for msg := range messages {
		// keep draining, UidFetch blocks until the channel is consumed
		if readErr != nil {
			continue
		}

		r := msg.GetBody(fullBodySection)
		if r == nil {
			readErr = fmt.Errorf("server returned no body for uid %d", msg.Uid)
			continue
		}
		rawBody, err := ioutil.ReadAll(r)
		if err != nil {
			readErr = fmt.Errorf("could not read mail body of uid %d: %w", msg.Uid, err)
			continue
		}

		mails = append(mails, mail.FromRaw(rawBody))
	}

	err := <-done
	if err != nil {
		return nil, fmt.Errorf("could not fetch mails: %w", err)
	}
	if readErr != nil {
		return nil, readErr
	}

	return mails, nil
}

func (s *Source) Close() error {
	err := s.client.Logout()
	if err != nil {
		return fmt.Errorf("could not logout from %s: %w", s.server, err)
	}
	return nil
}

func partitionUids(uids []uint32, partitionSize int) [][]uint32 {
	batches := make([][]uint32, 0, (len(uids)+partitionSize-1)/partitionSize)

	for partitionSize < len(uids) {
		uids, batches = uids[partitionSize:], append(batches, uids[0:partitionSize:partitionSize])
	}
	batches = append(batches, uids)

	return batches
}
