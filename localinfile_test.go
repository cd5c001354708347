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
	"strings"
	"testing"
)

func TestRunLocalInfileHappyPath(t *testing.T) {
	sess := &fakeSession{
		replies: []Reply{localInfileReply("ignored.csv"), okReply(3)},
	}

	n, err := runLocalInfile(context.Background(), sess, openLocalSource(strings.NewReader("a\nb\nc\n"), ""))
	if err != nil {
		t.Fatalf("runLocalInfile: %v", err)
	}
	if n != 3 {
		t.Errorf("affected rows = %d, want 3", n)
	}
	if len(sess.sentRaw) != 2 {
		t.Errorf("sent %d packets, want 2 (one data frame + trailer)", len(sess.sentRaw))
	}
}

func TestRunLocalInfileServerRejectsUpfront(t *testing.T) {
	sess := &fakeSession{
		replies: []Reply{errReply(1148, "the used command is not allowed")},
	}

	_, err := runLocalInfile(context.Background(), sess, openLocalSource(strings.NewReader("data"), ""))
	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *ServerError", err)
	}
	if len(sess.sentRaw) != 0 {
		t.Errorf("sent %d packets, want 0: nothing should be streamed when the server never asked", len(sess.sentRaw))
	}
}

func TestRunLocalInfileOpenFailureStillDrainsFinalReply(t *testing.T) {
	sess := &fakeSession{
		replies: []Reply{localInfileReply("missing.csv"), okReply(0)},
	}

	open := func() (io.Reader, error) {
		return nil, &FileNotFoundError{Path: "missing.csv", Local: true}
	}

	_, err := runLocalInfile(context.Background(), sess, open)
	var fnf *FileNotFoundError
	if !errors.As(err, &fnf) {
		t.Fatalf("error = %v, want *FileNotFoundError", err)
	}
	if len(sess.sentRaw) != 1 {
		t.Errorf("sent %d packets, want 1 (trailer only, no data)", len(sess.sentRaw))
	}
	if sess.pos != 2 {
		t.Errorf("final reply was not read after the open failure; pos = %d, want 2", sess.pos)
	}
}

func TestRunLocalInfileServerErrorAfterStreaming(t *testing.T) {
	sess := &fakeSession{
		replies: []Reply{localInfileReply("data.csv"), errReply(1062, "duplicate entry")},
	}

	_, err := runLocalInfile(context.Background(), sess, openLocalSource(strings.NewReader("1\n2\n"), ""))
	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *ServerError", err)
	}
}

func TestRunLocalInfileUnexpectedReplyWhileAwaitingRequest(t *testing.T) {
	sess := &fakeSession{
		replies: []Reply{{Kind: ReplyRaw}},
	}

	_, err := runLocalInfile(context.Background(), sess, openLocalSource(strings.NewReader("x"), ""))
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ProtocolError", err)
	}
	if !errors.Is(err, errUnexpectedReply) {
		t.Errorf("error chain does not unwrap to errUnexpectedReply")
	}
}

func TestOpenLocalSourcePrefersExplicitStream(t *testing.T) {
	r := strings.NewReader("stream contents")
	open := openLocalSource(r, "unused-path-that-does-not-exist")

	got, err := open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got != io.Reader(r) {
		t.Errorf("open() did not return the supplied stream")
	}
}

func TestOpenLocalSourceMissingFile(t *testing.T) {
	open := openLocalSource(nil, "/nonexistent/path/mysqlbulk-test-missing")

	_, err := open()
	var fnf *FileNotFoundError
	if !errors.As(err, &fnf) {
		t.Fatalf("error = %v, want *FileNotFoundError", err)
	}
	if !fnf.Local {
		t.Errorf("FileNotFoundError.Local = false, want true")
	}
}

func TestTranslateCtxErr(t *testing.T) {
	if _, ok := translateCtxErr(context.DeadlineExceeded).(*TimeoutError); !ok {
		t.Errorf("translateCtxErr(DeadlineExceeded) did not produce *TimeoutError")
	}
	if _, ok := translateCtxErr(context.Canceled).(*CancelledError); !ok {
		t.Errorf("translateCtxErr(Canceled) did not produce *CancelledError")
	}
}
