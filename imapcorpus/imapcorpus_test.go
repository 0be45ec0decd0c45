// SPDX-License-Identifier: GPL-3.0-or-later
package imapcorpus

import (
	"bytes"
	"errors"
	"testing"

	"github.com/emersion/go-imap"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mailA = "Message-Id: <a@example.org>\nSubject: first\n\nhello there\n"
	mailB = "Message-Id: <b@example.org>\nSubject: second\n\ngeneral kenobi\n"
)

func fetched(uid uint32, raw string) *imap.Message {
	return &imap.Message{
		Uid: uid,
		Body: map[*imap.BodySectionName]imap.Literal{
			{}: bytes.NewBufferString(raw),
		},
	}
}

func serve(msgs ...*imap.Message) func(*imap.SeqSet, []imap.FetchItem, chan *imap.Message) error {
	return func(_ *imap.SeqSet, _ []imap.FetchItem, ch chan *imap.Message) error {
		for _, m := range msgs {
			ch <- m
		}
		close(ch)
		return nil
	}
}

func TestSource_Messages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := NewMockimapClient(ctrl)
	seqset := &imap.SeqSet{}
	seqset.AddNum(u32a(1, 2, 3)...)
	gomock.InOrder(
		conn.EXPECT().Select(gomock.Eq("Spam"), gomock.Eq(true)).Return(&imap.MailboxStatus{Name: "Spam"}, nil),
		conn.EXPECT().UidSearch(gomock.Any()).Return(u32a(1, 2, 3), nil),
		conn.EXPECT().UidFetch(gomock.Eq(seqset), gomock.Any(), gomock.Any()).
			DoAndReturn(serve(fetched(1, mailA), fetched(2, mailB), fetched(3, mailA))),
	)

	msgs, err := newSource(conn, "imap.example.org:993").Messages("Spam")
	require.NoError(t, err)
	require.Len(t, msgs, 2, "the duplicate of mail a is dropped")
	assert.Equal(t, mailA, string(msgs[0].Raw()))
	assert.Equal(t, mailB, string(msgs[1].Raw()))
	assert.NotEqual(t, msgs[0].Key(), msgs[1].Key())
}

func TestSource_EmptyFolder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := NewMockimapClient(ctrl)
	conn.EXPECT().Select(gomock.Eq("Ham"), gomock.Eq(true)).Return(&imap.MailboxStatus{Name: "Ham"}, nil)
	conn.EXPECT().UidSearch(gomock.Any()).Return([]uint32{}, nil)

	msgs, err := newSource(conn, "server").Messages("Ham")
	assert.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSource_Errors(t *testing.T) {
	failure := errors.New("connection reset")

	tests := []struct {
		name  string
		setup func(conn *MockimapClient)
	}{
		{"select", func(conn *MockimapClient) {
			conn.EXPECT().Select(gomock.Any(), gomock.Any()).Return(nil, failure)
		}},
		{"search", func(conn *MockimapClient) {
			conn.EXPECT().Select(gomock.Any(), gomock.Any()).Return(&imap.MailboxStatus{}, nil)
			conn.EXPECT().UidSearch(gomock.Any()).Return(nil, failure)
		}},
		{"fetch", func(conn *MockimapClient) {
			conn.EXPECT().Select(gomock.Any(), gomock.Any()).Return(&imap.MailboxStatus{}, nil)
			conn.EXPECT().UidSearch(gomock.Any()).Return(u32a(1), nil)
			conn.EXPECT().UidFetch(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ *imap.SeqSet, _ []imap.FetchItem, ch chan *imap.Message) error {
					close(ch)
					return failure
				})
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			conn := NewMockimapClient(ctrl)
			tc.setup(conn)

			_, err := newSource(conn, "server").Messages("INBOX")
			assert.True(t, errors.Is(err, failure), "got %v", err)
		})
	}
}

func TestSource_MissingBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := NewMockimapClient(ctrl)
	conn.EXPECT().Select(gomock.Any(), gomock.Any()).Return(&imap.MailboxStatus{}, nil)
	conn.EXPECT().UidSearch(gomock.Any()).Return(u32a(1, 2), nil)
	conn.EXPECT().UidFetch(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(serve(&imap.Message{Uid: 1}, fetched(2, mailB)))

	_, err := newSource(conn, "server").Messages("INBOX")
	assert.EqualError(t, err, "could not fetch mail batch from INBOX: server returned no body for uid 1")
}

func TestSource_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := NewMockimapClient(ctrl)
	conn.EXPECT().Logout().Return(nil)

	assert.NoError(t, newSource(conn, "server").Close())
}

func Test_partitionUids(t *testing.T) {
	tests := []struct {
		name     string
		input    []uint32
		expected [][]uint32
	}{
		{"singlepartition", u32a(1), [][]uint32{u32a(1)}},
		{"exact", u32a(1, 2), [][]uint32{u32a(1, 2)}},
		{"multiple", u32a(1, 2, 3, 4, 5), [][]uint32{u32a(1, 2), u32a(3, 4), u32a(5)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uids := partitionUids(tc.input, 2)
			assert.Equal(t, tc.expected, uids)
		})
	}
}

func u32a(val ...int) []uint32 {
	a := []uint32{}
	for _, v := range val {
		a = append(a, uint32(v))
	}

	return a
}
