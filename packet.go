// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2012 Julien Schmidt. All rights reserved.
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

// maxPayload is the largest payload a single MySQL packet can carry: the
// length field is a 3-byte little-endian integer.
const maxPayload = 0xFF_FFFF // 16,777,215 bytes

// framePacket builds one length-sequence-payload header in front of
// payload, the same three fields handleInFileRequest built by hand into
// data[0:4] before calling writePacket.
func framePacket(seq uint8, payload []byte) []byte {
	n := len(payload)
	data := make([]byte, 4+n)
	data[0] = byte(n)
	data[1] = byte(n >> 8)
	data[2] = byte(n >> 16)
	data[3] = seq
	copy(data[4:], payload)
	return data
}

// fillChunk reads from src until buf is full or the source is exhausted,
// the same accumulate-until-full loop buffer.fill uses on the read side,
// run here to gather one packet's worth of data before framing it.
func fillChunk(src io.Reader, buf []byte) (n int, err error) {
	for n < len(buf) {
		m, rerr := src.Read(buf[n:])
		n += m
		if rerr != nil {
			return n, rerr
		}
	}
	return n, nil
}

// streamFramed reads src to completion, emitting each maxPayload-sized (or
// smaller, for the last chunk) slice as one framed packet via
// sess.SendRaw, and always finishes with a single zero-length trailer
// packet - the same unconditional empty-packet send
// handleInFileRequest performs regardless of how the data loop ended.
//
// If src yields a read error other than io.EOF, the trailer is still sent
// before the error is returned, so the LOCAL INFILE sub-protocol leaves
// the server in command-ready state (the propagation policy in
// SPEC_FULL.md §7).
func streamFramed(ctx context.Context, sess Session, src io.Reader) (total int64, err error) {
	buf := make([]byte, maxPayload)
	for {
		if err := ctx.Err(); err != nil {
			sendTrailer(ctx, sess)
			return total, err
		}

		n, rerr := fillChunk(src, buf)
		if n > 0 {
			if serr := sendFrame(ctx, sess, buf[:n]); serr != nil {
				return total, serr
			}
			total += int64(n)
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			sendTrailer(ctx, sess)
			return total, rerr
		}
	}

	if err := sendTrailer(ctx, sess); err != nil {
		return total, err
	}
	return total, nil
}

func sendFrame(ctx context.Context, sess Session, payload []byte) error {
	return sess.SendRaw(ctx, framePacket(sess.Sequence(), payload))
}

// sendTrailer sends the zero-length packet that terminates a LOCAL
// INFILE transfer. Errors are swallowed when called as a best-effort
// cleanup after another error already occurred; streamFramed's own
// direct calls still check/propagate what matters via their callers.
func sendTrailer(ctx context.Context, sess Session) error {
	return sess.SendRaw(ctx, framePacket(sess.Sequence(), nil))
}
