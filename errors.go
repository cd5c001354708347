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
	"errors"
	"fmt"
)

// errUnexpectedReply is the sentinel cause behind every ProtocolError this
// core raises itself (as opposed to one relayed from the server), in the
// same spirit as the driver's own errPktSync: a condition that means the
// wire is out of sync with the LOCAL INFILE sub-protocol's expected
// request/response shape rather than a server-reported failure.
var errUnexpectedReply = errors.New("mysqlbulk: unexpected reply from server")

// ConfigurationError reports a BulkLoader/BulkCopy configuration that could
// never be sent to the server: a missing table name, conflicting source
// options, a bad delimiter, and the like.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "mysqlbulk: configuration error: " + e.Reason
}

// FileNotFoundError is raised when the client-side source of a LOCAL load
// could not be opened, or the server could not find the non-local source.
// Local reports which side detected the failure, so callers can tell a
// client-side path error apart from a server-side one even though both
// produce the same FileNotFoundError type.
type FileNotFoundError struct {
	Path  string
	Local bool
	Err   error
}

func (e *FileNotFoundError) Error() string {
	side := "server"
	if e.Local {
		side = "client"
	}
	return fmt.Sprintf("mysqlbulk: file not found (%s side): %s", side, e.Path)
}

func (e *FileNotFoundError) Unwrap() error { return e.Err }

// ServerError carries the server's own {code, sqlstate, message} triple
// unchanged, e.g. for LOAD DATA syntax errors, permission failures, or
// duplicate-key violations.
type ServerError struct {
	Code     uint16
	SQLState string
	Message  string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("mysqlbulk: server error %d (%s): %s", e.Code, e.SQLState, e.Message)
}

// errnoFileNotFound is the MySQL server errno for ER_FILE_NOT_FOUND,
// returned when a non-local LOAD DATA INFILE names a path the server
// can't read.
const errnoFileNotFound = 2

// ProtocolError reports a malformed or unexpected reply while the LOCAL
// INFILE sub-protocol state machine was running.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "mysqlbulk: protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error { return errUnexpectedReply }

// RowTooLargeError reports that encoding a row produced more bytes than fit
// in a single packet given the server's advertised max_allowed_packet.
type RowTooLargeError struct {
	RowIndex uint64
	Limit    uint32
	Size     int
}

func (e *RowTooLargeError) Error() string {
	return fmt.Sprintf("mysqlbulk: row %d encodes to %d bytes, exceeding the %d byte limit", e.RowIndex, e.Size, e.Limit)
}

func (e *RowTooLargeError) Unwrap() error { return errUnsupportedValue }

// errUnsupportedValue is the innermost cause reported through
// RowTooLargeError / TypeMismatchError when a value itself cannot be
// represented (e.g. a blob that can never fit in one packet, or a
// floating-point Inf/NaN).
var errUnsupportedValue = errors.New("mysqlbulk: unsupported value")

// TypeMismatchError reports that a row source's value could not be
// encoded for its destination column's logical type.
type TypeMismatchError struct {
	RowIndex   uint64
	ColumnName string
	Kind       FieldKind
	Err        error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("mysqlbulk: row %d column %q: value does not match declared type %v", e.RowIndex, e.ColumnName, e.Kind)
}

func (e *TypeMismatchError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return errUnsupportedValue
}

// TimeoutError reports that a bulk operation's overall deadline expired.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string { return "mysqlbulk: operation timed out" }
func (e *TimeoutError) Unwrap() error { return e.Err }

// CancelledError reports that a bulk operation was cancelled externally.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string { return "mysqlbulk: operation cancelled" }
func (e *CancelledError) Unwrap() error { return e.Err }

// rowSourceError wraps an error returned by a caller's RowSource with the
// row/column context it occurred at, per the propagation policy in the
// error handling design.
type rowSourceError struct {
	RowIndex   uint64
	ColumnName string
	Err        error
}

func (e *rowSourceError) Error() string {
	if e.ColumnName != "" {
		return fmt.Sprintf("mysqlbulk: row source error at row %d column %q: %v", e.RowIndex, e.ColumnName, e.Err)
	}
	return fmt.Sprintf("mysqlbulk: row source error at row %d: %v", e.RowIndex, e.Err)
}

func (e *rowSourceError) Unwrap() error { return e.Err }
