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
	"errors"
	"io"
	"os"
)

// runLocalInfile drives the LOCAL INFILE Responder state machine (C4),
// generalizing handleInFileRequest's "stream, then always send the empty
// terminator, then read the final OK" shape to an arbitrary byte source
// furnished by the caller instead of a DSN-registered file/reader.
//
//	IDLE ---(caller already sent the statement)---> AWAIT_REQUEST
//	AWAIT_REQUEST --OK--> DONE
//	AWAIT_REQUEST --ERR--> FAILED
//	AWAIT_REQUEST --LocalInfileRequest--> STREAMING
//	STREAMING --exhausted/aborted--> send(empty frame) --> AWAIT_FINAL
//	AWAIT_FINAL --OK--> DONE
//	AWAIT_FINAL --ERR--> FAILED
//
// The filename echoed in the server's request is advisory and ignored:
// the responder streams whatever open returns, per SPEC_FULL.md §4.4.
func runLocalInfile(ctx context.Context, sess Session, open func() (io.Reader, error)) (uint64, error) {
	reply, err := sess.ReceivePacket(ctx)
	if err != nil {
		return 0, err
	}

	switch reply.Kind {
	case ReplyOK:
		return reply.AffectedRows, nil
	case ReplyErr:
		return 0, newServerError(reply)
	case ReplyLocalInfileRequest:
		// fall through to STREAMING
	default:
		return 0, &ProtocolError{Reason: "unexpected reply while awaiting LOCAL INFILE request"}
	}

	src, openErr := open()

	var streamErr error
	if openErr == nil {
		_, streamErr = streamFramed(ctx, sess, src)
		if closer, ok := src.(io.Closer); ok {
			if cerr := closer.Close(); cerr != nil {
				errLog.Print("mysqlbulk: closing LOCAL INFILE source: " + cerr.Error())
			}
		}
	} else if terr := sendTrailer(ctx, sess); terr != nil {
		// Couldn't even send the trailer; the connection is unusable,
		// report that rather than the open error.
		return 0, terr
	}

	final, ferr := sess.ReceivePacket(ctx)

	switch {
	case openErr != nil:
		// Client-side failure takes priority, but only after AWAIT_FINAL
		// has been drained so the session returns to command-ready.
		return 0, openErr

	case streamErr != nil:
		if cerr := ctx.Err(); cerr != nil {
			return 0, translateCtxErr(cerr)
		}
		return 0, streamErr

	case ferr != nil:
		return 0, ferr
	}

	switch final.Kind {
	case ReplyOK:
		return final.AffectedRows, nil
	case ReplyErr:
		return 0, newServerError(final)
	default:
		return 0, &ProtocolError{Reason: "unexpected reply while awaiting final LOCAL INFILE result"}
	}
}

// openLocalSource resolves a BulkLoader's configured LOCAL source into an
// io.Reader: the caller's source_stream if set, else a streaming read of
// file_name. A missing file is reported as *FileNotFoundError so the
// taxonomy records that the client, not the server, detected it.
func openLocalSource(stream io.Reader, fileName string) func() (io.Reader, error) {
	return func() (io.Reader, error) {
		if stream != nil {
			return stream, nil
		}
		f, err := os.Open(fileName)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, &FileNotFoundError{Path: fileName, Local: true, Err: err}
			}
			return nil, err
		}
		return f, nil
	}
}

func translateCtxErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &TimeoutError{Err: err}
	case errors.Is(err, context.Canceled):
		return &CancelledError{Err: err}
	default:
		return err
	}
}
