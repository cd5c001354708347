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

// RowsCopiedEvent is handed to a BulkCopy progress handler at each
// notify-after boundary. Abort is read back after the handler returns: if
// set, no further rows are sent, but the already-streamed bytes are not
// unwound - the server commits whatever made it into the transfer.
type RowsCopiedEvent struct {
	RowsCopied uint64
	Abort      bool
}

// columnPlan is one resolved (source column -> destination column)
// mapping entry, the thing BulkCopy.resolveMapping produces from either
// an explicit column_mappings list or the default ordinal pairing.
type columnPlan struct {
	sourceOrdinal int
	destName      string
	destKind      FieldKind
}

// rowStreamReader is the Row Stream Builder (C3): a lazy io.Reader over a
// RowSource, encoding one LOAD-DATA line per row and enforcing the
// single-row-fits-in-one-packet rule as it goes. It is pulled by the
// LOCAL INFILE Responder (C4) through the Packet Framer (C1); its only
// suspension points are awaiting the next source row and returning control
// to its caller between Read calls, matching the cooperative single-
// threaded model in SPEC_FULL.md §5.
type rowStreamReader struct {
	ctx         context.Context
	source      RowSource
	mapping     []columnPlan
	opts        *encodingOptions
	limit       uint32
	notifyAfter uint64
	onProgress  func(*RowsCopiedEvent)
	rowsCopied  *uint64

	rowIndex uint64
	pending  []byte
	done     bool
	err      error
}

func newRowStreamReader(ctx context.Context, source RowSource, mapping []columnPlan, opts *encodingOptions, limit uint32, notifyAfter uint64, onProgress func(*RowsCopiedEvent), rowsCopied *uint64) *rowStreamReader {
	return &rowStreamReader{
		ctx:         ctx,
		source:      source,
		mapping:     mapping,
		opts:        opts,
		limit:       limit,
		notifyAfter: notifyAfter,
		onProgress:  onProgress,
		rowsCopied:  rowsCopied,
	}
}

func (r *rowStreamReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.done {
			if r.err != nil {
				return 0, r.err
			}
			return 0, io.EOF
		}

		ok, err := r.source.Next(r.ctx)
		if err != nil {
			r.done, r.err = true, &rowSourceError{RowIndex: r.rowIndex, Err: err}
			return 0, r.err
		}
		if !ok {
			r.done = true
			continue
		}

		row, err := r.encodeRow()
		if err != nil {
			r.done, r.err = true, err
			return 0, err
		}

		r.rowIndex++
		if r.rowsCopied != nil {
			*r.rowsCopied = r.rowIndex
		}
		r.pending = row

		if r.notifyAfter > 0 && r.rowIndex%r.notifyAfter == 0 && r.onProgress != nil {
			ev := &RowsCopiedEvent{RowsCopied: r.rowIndex}
			r.onProgress(ev)
			if ev.Abort {
				// No partial row: the current row's bytes are already
				// queued in r.pending and still get flushed out; only
				// the *next* row is skipped.
				r.done = true
			}
		}
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// encodeRow renders the current row as field0<sep>field1<sep>...<line-term>,
// failing the row with *RowTooLargeError rather than splitting it if it
// would not fit in a single packet. Read then ends the whole stream with
// that error.
func (r *rowStreamReader) encodeRow() ([]byte, error) {
	var buf []byte
	for idx, col := range r.mapping {
		if idx > 0 {
			buf = append(buf, r.opts.fieldTerminator...)
		}

		v, err := r.source.Field(col.sourceOrdinal)
		if err != nil {
			return nil, &rowSourceError{RowIndex: r.rowIndex, ColumnName: col.destName, Err: err}
		}

		buf, err = encodeValue(buf, v, r.opts)
		if err != nil {
			return nil, &TypeMismatchError{RowIndex: r.rowIndex, ColumnName: col.destName, Kind: col.destKind, Err: err}
		}
		if len(buf) > int(r.limit) {
			return nil, &RowTooLargeError{RowIndex: r.rowIndex, Limit: r.limit, Size: len(buf)}
		}
	}
	buf = append(buf, r.opts.lineTerminator...)
	if len(buf) > int(r.limit) {
		return nil, &RowTooLargeError{RowIndex: r.rowIndex, Limit: r.limit, Size: len(buf)}
	}
	return buf, nil
}
