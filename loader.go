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
	"strconv"
	"strings"
	"time"
)

// Priority is the optional LOW_PRIORITY/CONCURRENT modifier on LOAD DATA.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLowPriority
	PriorityConcurrent
)

// ConflictAction is the optional REPLACE/IGNORE modifier on LOAD DATA.
type ConflictAction int

const (
	ConflictNone ConflictAction = iota
	ConflictIgnore
	ConflictReplace
)

// SetExpression is one "SET column = expr" assignment appended to a LOAD
// DATA statement.
type SetExpression struct {
	Column     string
	Expression string
}

// placeholderStreamName is the file literal used in the generated SQL
// when the source is an arbitrary byte stream rather than a named path:
// the server only reads this name back to the client in its LOCAL INFILE
// request, and the responder ignores it (SPEC_FULL.md §4.4).
const placeholderStreamName = "mysqlbulk_stream"

// BulkLoader is the public façade for the LOAD DATA [LOCAL] INFILE path
// (C5). Its fields mirror the Bulk Loader Configuration in SPEC_FULL.md
// §3; they are read once, at the top of Load, and treated as frozen for
// the duration of the call.
type BulkLoader struct {
	session Session

	FileName     string
	SourceStream io.Reader
	TableName    string
	CharacterSet string
	Local        bool
	Priority     Priority
	Conflict     ConflictAction

	FieldTerminator            string
	LineTerminator             string
	FieldQuotationCharacter    byte
	HasFieldQuotationCharacter bool
	FieldQuotationOptional     bool
	EscapeCharacter            byte
	HasEscapeCharacter         bool

	LinesPrefix         string
	NumberOfLinesToSkip uint64
	Columns             []string
	Expressions         []SetExpression
	Timeout             time.Duration
}

// NewBulkLoader returns a BulkLoader with the documented defaults
// (field_terminator "\t", line_terminator "\n", escape_character '\\')
// bound to session.
func NewBulkLoader(session Session) *BulkLoader {
	return &BulkLoader{
		session:            session,
		FieldTerminator:    "\t",
		LineTerminator:     "\n",
		EscapeCharacter:    '\\',
		HasEscapeCharacter: true,
	}
}

func (l *BulkLoader) validate() error {
	if l.TableName == "" {
		return &ConfigurationError{Reason: "table_name is required"}
	}
	if (l.FileName == "") == (l.SourceStream == nil) {
		return &ConfigurationError{Reason: "exactly one of file_name or source_stream must be set"}
	}
	if !l.Local && l.SourceStream != nil {
		return &ConfigurationError{Reason: "source_stream requires local = true"}
	}
	if l.FieldTerminator == "" {
		return &ConfigurationError{Reason: "field_terminator must not be empty"}
	}
	if l.LineTerminator == "" {
		return &ConfigurationError{Reason: "line_terminator must not be empty"}
	}
	return nil
}

// Load executes the configured LOAD DATA statement and returns the number
// of rows the server reports as affected.
func (l *BulkLoader) Load(ctx context.Context) (uint64, error) {
	if err := l.validate(); err != nil {
		return 0, err
	}
	if l.Local && !l.session.Capabilities().LocalFiles {
		return 0, &ConfigurationError{Reason: "LOCAL INFILE is not permitted by this session"}
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	stmt := l.buildStatement()
	if err := l.session.SendCommand(ctx, stmt); err != nil {
		return 0, err
	}

	if !l.Local {
		reply, err := l.session.ReceivePacket(ctx)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return 0, translateCtxErr(cerr)
			}
			return 0, err
		}
		switch reply.Kind {
		case ReplyOK:
			return reply.AffectedRows, nil
		case ReplyErr:
			if reply.ErrCode == errnoFileNotFound {
				return 0, &FileNotFoundError{Path: l.FileName, Local: false, Err: newServerError(reply)}
			}
			return 0, newServerError(reply)
		default:
			return 0, &ProtocolError{Reason: "unexpected reply to non-local LOAD DATA"}
		}
	}

	affected, err := runLocalInfile(ctx, l.session, openLocalSource(l.SourceStream, l.FileName))
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			if _, ok := err.(*FileNotFoundError); !ok {
				return 0, translateCtxErr(cerr)
			}
		}
		return 0, err
	}
	return affected, nil
}

// buildStatement assembles the LOAD DATA SQL text per SPEC_FULL.md §4.5,
// backtick-escaping identifiers and MySQL-escaping string literals.
func (l *BulkLoader) buildStatement() string {
	var b strings.Builder
	b.WriteString("LOAD DATA ")

	switch l.Priority {
	case PriorityLowPriority:
		b.WriteString("LOW_PRIORITY ")
	case PriorityConcurrent:
		b.WriteString("CONCURRENT ")
	}

	fileLiteral := l.FileName
	if l.SourceStream != nil {
		fileLiteral = placeholderStreamName
	}

	if l.Local {
		b.WriteString("LOCAL ")
	}
	b.WriteString("INFILE ")
	b.WriteString(quoteStringLiteral(fileLiteral))
	b.WriteByte(' ')

	switch l.Conflict {
	case ConflictReplace:
		b.WriteString("REPLACE ")
	case ConflictIgnore:
		b.WriteString("IGNORE ")
	}

	b.WriteString("INTO TABLE ")
	b.WriteString(quoteIdentifier(l.TableName))

	if l.CharacterSet != "" {
		b.WriteString(" CHARACTER SET ")
		b.WriteString(l.CharacterSet)
	}

	b.WriteString(" FIELDS TERMINATED BY ")
	b.WriteString(quoteByteSeqLiteral(l.FieldTerminator))

	if l.HasFieldQuotationCharacter {
		b.WriteByte(' ')
		if l.FieldQuotationOptional {
			b.WriteString("OPTIONALLY ")
		}
		b.WriteString("ENCLOSED BY ")
		b.WriteString(quoteByteSeqLiteral(string(l.FieldQuotationCharacter)))
	}

	if l.HasEscapeCharacter {
		b.WriteString(" ESCAPED BY ")
		b.WriteString(quoteByteSeqLiteral(string(l.EscapeCharacter)))
	}

	b.WriteString(" LINES")
	if l.LinesPrefix != "" {
		b.WriteString(" STARTING BY ")
		b.WriteString(quoteStringLiteral(l.LinesPrefix))
	}
	b.WriteString(" TERMINATED BY ")
	b.WriteString(quoteByteSeqLiteral(l.LineTerminator))

	if l.NumberOfLinesToSkip > 0 {
		b.WriteString(" IGNORE ")
		b.WriteString(strconv.FormatUint(l.NumberOfLinesToSkip, 10))
		b.WriteString(" LINES")
	}

	if len(l.Columns) > 0 {
		b.WriteString(" (")
		for i, col := range l.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			if strings.HasPrefix(col, "@") {
				b.WriteString(col)
			} else {
				b.WriteString(quoteIdentifier(col))
			}
		}
		b.WriteByte(')')
	}

	if len(l.Expressions) > 0 {
		b.WriteString(" SET ")
		for i, expr := range l.Expressions {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quoteIdentifier(expr.Column))
			b.WriteString(" = ")
			b.WriteString(expr.Expression)
		}
	}

	return b.String()
}
