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
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ColumnMetadataProvider resolves a destination table's column shape. It is
// the narrow collaborator BulkCopy asks for column names/kinds instead of
// running a SELECT itself - general query execution is out of scope for
// this core (SPEC_FULL.md §1), so the caller supplies whatever already-open
// facility it has (a cached DESCRIBE, a prepared metadata cache, the
// surrounding driver's own query path) behind this one method.
type ColumnMetadataProvider interface {
	DestinationColumns(ctx context.Context, tableName string) ([]TableColumn, error)
}

// BulkCopyColumnMapping pins one source field to one destination column,
// overriding the default left-to-right ordinal pairing.
type BulkCopyColumnMapping struct {
	SourceOrdinal     int
	DestinationColumn string
}

// BulkCopy is the public façade for the row-streaming write path (C6): it
// turns an arbitrary RowSource into a synthesized LOAD DATA LOCAL INFILE
// statement driven over the Row Stream Builder and the LOCAL INFILE
// Responder, so the wire mechanics are identical to BulkLoader's local
// path even though no file ever exists on either side.
type BulkCopy struct {
	session  Session
	metadata ColumnMetadataProvider

	DestinationTableName string
	ColumnMappings       []BulkCopyColumnMapping
	BulkCopyTimeout      time.Duration
	NotifyAfter          uint64
	OnRowsCopied         func(*RowsCopiedEvent)

	// RowsCopied is updated as rows are streamed and holds the final count
	// once WriteToServer returns, successfully or not.
	RowsCopied uint64
}

// NewBulkCopy binds a BulkCopy to the session it will stream over and the
// collaborator it will ask for destination column metadata.
func NewBulkCopy(session Session, metadata ColumnMetadataProvider) *BulkCopy {
	return &BulkCopy{session: session, metadata: metadata}
}

// WriteToServer streams every row of source into DestinationTableName.
func (bc *BulkCopy) WriteToServer(ctx context.Context, source RowSource) error {
	bc.RowsCopied = 0
	if bc.DestinationTableName == "" {
		return &ConfigurationError{Reason: "destination_table_name is required"}
	}
	if !bc.session.Capabilities().LocalFiles {
		return &ConfigurationError{Reason: "LOCAL INFILE is not permitted by this session"}
	}

	if bc.BulkCopyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bc.BulkCopyTimeout)
		defer cancel()
	}

	destCols, err := bc.metadata.DestinationColumns(ctx, bc.DestinationTableName)
	if err != nil {
		return err
	}

	plan, err := bc.resolveMapping(source, destCols)
	if err != nil {
		return err
	}

	opts := defaultEncodingOptions()
	reader := newRowStreamReader(ctx, source, plan, opts, bc.session.MaxAllowedPacket(), bc.NotifyAfter, bc.OnRowsCopied, &bc.RowsCopied)

	stmt := bc.buildStatement(plan, opts)
	if err := bc.session.SendCommand(ctx, stmt); err != nil {
		return err
	}

	_, err = runLocalInfile(ctx, bc.session, func() (io.Reader, error) {
		return reader, nil
	})
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return translateCtxErr(cerr)
		}
		return err
	}

	return nil
}

// resolveMapping builds the (source ordinal -> destination column) plan
// either from explicit ColumnMappings or, when none are given, by pairing
// source and destination columns left to right, per SPEC_FULL.md §4.6.
// Once the plan is built, every destination column it leaves unmapped is
// checked for a NOT NULL default: a destination column the plan doesn't
// cover, and that the table can't fill in on its own, fails as an
// unmapped required column.
func (bc *BulkCopy) resolveMapping(source RowSource, destCols []TableColumn) ([]columnPlan, error) {
	var plan []columnPlan
	mapped := make(map[string]bool, len(destCols))

	if len(bc.ColumnMappings) == 0 {
		// min(source.column_count, dest.column_count) ordinal pairs;
		// any destination columns beyond the source's width are simply
		// left unmapped, and any source columns beyond the
		// destination's width are silently ignored.
		n := source.ColumnCount()
		if n > len(destCols) {
			n = len(destCols)
		}
		plan = make([]columnPlan, n)
		for i := 0; i < n; i++ {
			plan[i] = columnPlan{sourceOrdinal: i, destName: destCols[i].Name, destKind: destCols[i].Kind}
			mapped[destCols[i].Name] = true
		}
	} else {
		byName := make(map[string]TableColumn, len(destCols))
		for _, c := range destCols {
			byName[c.Name] = c
		}

		seen := make(map[string]bool, len(bc.ColumnMappings))
		plan = make([]columnPlan, len(bc.ColumnMappings))
		for i, m := range bc.ColumnMappings {
			if m.SourceOrdinal < 0 || m.SourceOrdinal >= source.ColumnCount() {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("column_mappings[%d]: source_ordinal %d out of range", i, m.SourceOrdinal)}
			}
			dest, ok := byName[m.DestinationColumn]
			if !ok {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("column_mappings[%d]: destination column %q not found", i, m.DestinationColumn)}
			}
			if seen[dest.Name] {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("column_mappings[%d]: destination column %q is mapped more than once", i, dest.Name)}
			}
			seen[dest.Name] = true
			plan[i] = columnPlan{sourceOrdinal: m.SourceOrdinal, destName: dest.Name, destKind: dest.Kind}
			mapped[dest.Name] = true
		}
	}

	for _, c := range destCols {
		if !mapped[c.Name] && !c.Nullable && !c.HasDefault {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("destination column %q has no mapping and no default", c.Name)}
		}
	}

	return plan, nil
}

// buildStatement synthesizes the LOAD DATA LOCAL INFILE statement the
// BulkCopy stream rides over. Binary columns are loaded into a user
// variable and unwound with UNHEX in a SET clause, since their wire
// encoding (encodeValue) renders them as plain hex text rather than the
// raw bytes the destination column expects. GUID columns are named
// directly: encodeValue renders them in the dashed 8-4-4-4-12 text form.
func (bc *BulkCopy) buildStatement(plan []columnPlan, opts *encodingOptions) string {
	var b strings.Builder
	b.WriteString("LOAD DATA LOCAL INFILE ")
	b.WriteString(quoteStringLiteral(placeholderStreamName))
	b.WriteString(" INTO TABLE ")
	b.WriteString(quoteIdentifier(bc.DestinationTableName))
	b.WriteString(" CHARACTER SET utf8mb4")
	b.WriteString(" FIELDS TERMINATED BY ")
	b.WriteString(quoteByteSeqLiteral(opts.fieldTerminator))
	b.WriteString(" LINES TERMINATED BY ")
	b.WriteString(quoteByteSeqLiteral(opts.lineTerminator))
	b.WriteString(" (")

	var setClauses []string
	for i, col := range plan {
		if i > 0 {
			b.WriteString(", ")
		}
		if needsUnhex(col.destKind) {
			varName := "@mysqlbulk_col" + strconv.Itoa(i)
			b.WriteString(varName)
			setClauses = append(setClauses, quoteIdentifier(col.destName)+" = UNHEX("+varName+")")
		} else {
			b.WriteString(quoteIdentifier(col.destName))
		}
	}
	b.WriteByte(')')

	if len(setClauses) > 0 {
		b.WriteString(" SET ")
		b.WriteString(strings.Join(setClauses, ", "))
	}

	return b.String()
}

func needsUnhex(kind FieldKind) bool {
	return kind == KindBinary
}
