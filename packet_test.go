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
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFramePacket(t *testing.T) {
	got := framePacket(3, []byte("hello"))
	want := []byte{5, 0, 0, 3, 'h', 'e', 'l', 'l', 'o'}
	if !bytes.Equal(got, want) {
		t.Errorf("framePacket() = %v, want %v", got, want)
	}
}

func TestFramePacketEmptyPayload(t *testing.T) {
	got := framePacket(7, nil)
	want := []byte{0, 0, 0, 7}
	if !bytes.Equal(got, want) {
		t.Errorf("framePacket(empty) = %v, want %v", got, want)
	}
}

func TestFillChunk(t *testing.T) {
	src := strings.NewReader("abcdefgh")
	buf := make([]byte, 5)

	n, err := fillChunk(src, buf)
	if err != nil {
		t.Fatalf("fillChunk: %v", err)
	}
	if n != 5 || string(buf) != "abcde" {
		t.Fatalf("fillChunk first call = %d,%q", n, buf)
	}

	n, err = fillChunk(src, buf)
	if n != 3 {
		t.Fatalf("fillChunk second call n = %d, want 3", n)
	}
	if err == nil {
		t.Fatalf("fillChunk second call: want an error to surface the short read")
	}
}

func TestStreamFramedSingleChunk(t *testing.T) {
	sess := &fakeSession{}
	src := strings.NewReader("row1\trow2\n")

	total, err := streamFramed(context.Background(), sess, src)
	if err != nil {
		t.Fatalf("streamFramed: %v", err)
	}
	if total != 10 {
		t.Fatalf("total = %d, want 10", total)
	}
	if len(sess.sentRaw) != 2 {
		t.Fatalf("sent %d packets, want 2 (data + trailer)", len(sess.sentRaw))
	}
	if len(sess.sentRaw[1]) != 4 {
		t.Fatalf("trailer packet length = %d, want 4 (header only)", len(sess.sentRaw[1]))
	}
}

func TestStreamFramedEmptySource(t *testing.T) {
	sess := &fakeSession{}

	total, err := streamFramed(context.Background(), sess, strings.NewReader(""))
	if err != nil {
		t.Fatalf("streamFramed: %v", err)
	}
	if total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}
	if len(sess.sentRaw) != 1 {
		t.Fatalf("sent %d packets, want 1 (trailer only)", len(sess.sentRaw))
	}
}

type erroringReader struct{ err error }

func (e erroringReader) Read(p []byte) (int, error) { return 0, e.err }

func TestStreamFramedPropagatesSourceErrorAfterTrailer(t *testing.T) {
	sess := &fakeSession{}
	wantErr := errors.New("boom")

	_, err := streamFramed(context.Background(), sess, erroringReader{wantErr})
	if !errors.Is(err, wantErr) {
		t.Fatalf("streamFramed error = %v, want %v", err, wantErr)
	}
	if len(sess.sentRaw) != 1 {
		t.Fatalf("sent %d packets, want 1 (trailer still sent)", len(sess.sentRaw))
	}
}

func TestStreamFramedCancelledContext(t *testing.T) {
	sess := &fakeSession{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := streamFramed(ctx, sess, strings.NewReader("data"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("streamFramed error = %v, want context.Canceled", err)
	}
	if len(sess.sentRaw) != 1 {
		t.Fatalf("sent %d packets, want 1 (trailer still sent on cancellation)", len(sess.sentRaw))
	}
}
