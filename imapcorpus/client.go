// SPDX-License-Identifier: GPL-3.0-or-later
package imapcorpus

//go:generate mockgen -destination=client_mocks_test.go -package=imapcorpus -source client.go

import (
	"github.com/emersion/go-imap"
)

// imapClient is the part of *client.Client a Source needs.
type imapClient interface {
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	UidSearch(criteria *imap.SearchCriteria) ([]uint32, error)
	UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Logout() error
}
