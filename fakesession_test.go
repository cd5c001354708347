// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2013 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlbulk

import (
	"context"
	"io"
)

// fakeSession is a hand-rolled Session double used across this package's
// tests, in place of the teacher's approach of driving tests against a
// real mock server connection (mockConn in driver_test.go): a bulk
// operation's collaborator surface is small enough to fake directly.
type fakeSession struct {
	caps       Capabilities
	maxAllowed uint32

	seq uint8

	sentCommands []string
	sentRaw      [][]byte

	replies   []Reply
	replyErrs []error
	pos       int

	sendCommandErr error
	sendRawErr     error
	sendRawAfter   int // SendRaw fails starting from this call index, 0 = never
}

func (f *fakeSession) SendCommand(ctx context.Context, statement string) error {
	f.sentCommands = append(f.sentCommands, statement)
	f.seq = 0
	return f.sendCommandErr
}

func (f *fakeSession) Sequence() uint8 { return f.seq }

func (f *fakeSession) SendRaw(ctx context.Context, framedPacket []byte) error {
	f.sentRaw = append(f.sentRaw, append([]byte(nil), framedPacket...))
	f.seq++
	if f.sendRawAfter > 0 && len(f.sentRaw) >= f.sendRawAfter {
		return f.sendRawErr
	}
	return nil
}

func (f *fakeSession) ReceivePacket(ctx context.Context) (Reply, error) {
	if f.pos >= len(f.replies) {
		return Reply{}, io.ErrUnexpectedEOF
	}
	r := f.replies[f.pos]
	var err error
	if f.pos < len(f.replyErrs) {
		err = f.replyErrs[f.pos]
	}
	f.pos++
	return r, err
}

func (f *fakeSession) Capabilities() Capabilities { return f.caps }

func (f *fakeSession) CurrentTransaction() TransactionState { return NoTransaction }

func (f *fakeSession) MaxAllowedPacket() uint32 {
	if f.maxAllowed == 0 {
		return 16 * 1024 * 1024
	}
	return f.maxAllowed
}

func okReply(affected uint64) Reply {
	return Reply{Kind: ReplyOK, AffectedRows: affected}
}

func errReply(code uint16, msg string) Reply {
	return Reply{Kind: ReplyErr, ErrCode: code, Message: msg}
}

func localInfileReply(name string) Reply {
	return Reply{Kind: ReplyLocalInfileRequest, Filename: name}
}
