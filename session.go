// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 Julien Schmidt. All rights reserved.
// http://www.julienschmidt.com
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlbulk

import "context"

// Capabilities mirrors the subset of the server's capability flags this
// core cares about.
type Capabilities struct {
	LocalFiles   bool
	DeprecateEOF bool
}

// TransactionState reports whether the session is currently inside an
// open transaction. The core never opens or closes one itself and does not
// consult this value; it is exposed for callers/tests that want to assert
// the session was left in the state they expect.
type TransactionState int

const (
	NoTransaction TransactionState = iota
	InTransaction
)

// ReplyKind tags a Reply the way the teacher's readResultOK/
// readResultSetHeaderPacket dispatch on the first byte of a packet
// (0x00 = OK, 0xff = ERR, 0xfb = LOCAL INFILE request), made explicit here
// as a Go enum instead of a raw byte switch.
type ReplyKind int

const (
	ReplyOK ReplyKind = iota
	ReplyErr
	ReplyLocalInfileRequest
	ReplyRaw
)

// Reply is the session's parsed view of one server packet, the shape the
// LOCAL INFILE state machine (C4) and the Bulk Loader/Bulk Copy façades
// dispatch on.
type Reply struct {
	Kind ReplyKind

	// Populated when Kind == ReplyOK.
	AffectedRows uint64
	LastInsertID uint64
	Status       uint16

	// Populated when Kind == ReplyErr.
	ErrCode  uint16
	SQLState string
	Message  string

	// Populated when Kind == ReplyLocalInfileRequest. Advisory only; see
	// the LOCAL INFILE Responder rules in SPEC_FULL.md §4.4.
	Filename string

	// Populated when Kind == ReplyRaw.
	Raw []byte
}

// Session is the connected, authenticated collaborator this core is built
// on top of. It is borrowed for the duration of one bulk operation and
// must not be used concurrently from two operations at once (the MySQL
// wire protocol is half-duplex request/response).
type Session interface {
	// SendCommand sends statement as a COM_QUERY packet, resetting the
	// packet sequence counter the way writeCommandPacket resets
	// mc.sequence before every new command.
	SendCommand(ctx context.Context, statement string) error

	// Sequence returns the sequence id the next packet written with
	// SendRaw will be validated/tagged with. The session owns this
	// counter (mirroring mc.sequence in the teacher), since it is also
	// responsible for the counter's state outside of bulk operations.
	Sequence() uint8

	// SendRaw transmits one fully framed packet (3-byte length + 1-byte
	// sequence header, already built by the caller) as-is.
	SendRaw(ctx context.Context, framedPacket []byte) error

	// ReceivePacket reads and classifies the next server packet.
	ReceivePacket(ctx context.Context) (Reply, error)

	Capabilities() Capabilities
	CurrentTransaction() TransactionState

	// MaxAllowedPacket returns the server-advertised max_allowed_packet,
	// used to fail oversized rows rather than attempt to split them.
	MaxAllowedPacket() uint32
}

func newServerError(r Reply) *ServerError {
	return &ServerError{Code: r.ErrCode, SQLState: r.SQLState, Message: r.Message}
}
