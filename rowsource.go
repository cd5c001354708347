// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2017 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlbulk

import (
	"context"
	"fmt"
)

// RowSource is the capability interface Bulk Copy drives: advance to the
// next row, report the column shape, and read the current row's fields as
// TaggedValues. It plays the role mysqlRows plays for database/sql, but on
// the write side and without the driver.Rows interface's buffer-reuse
// contract.
//
// A RowSource is borrowed for the duration of one WriteToServer call; the
// core never retains it afterward.
type RowSource interface {
	// Next advances to the next row. It returns false, nil once the
	// source is exhausted.
	Next(ctx context.Context) (bool, error)

	ColumnCount() int
	ColumnName(i int) string
	ColumnType(i int) FieldKind

	// Field reads column i of the current row. Next must have returned
	// true at least once before Field is called.
	Field(i int) (TaggedValue, error)
}

// TableColumn describes one column: either a column of an in-memory
// TableRowSource on the source side, or a destination column's declared
// shape when returned from a ColumnMetadataProvider. Nullable and
// HasDefault are only meaningful on the destination side, where BulkCopy
// consults them to decide whether a column left out of a column mapping
// can be silently skipped or must fail as an unmapped required column.
type TableColumn struct {
	Name       string
	Kind       FieldKind
	Nullable   bool
	HasDefault bool
}

// TableRowSource is an in-memory row source, e.g. for a caller that has
// already materialized the rows to copy as a slice of slices.
type TableRowSource struct {
	columns []TableColumn
	rows    [][]TaggedValue
	pos     int
}

// NewTableRowSource builds a RowSource over rows already held in memory.
// Every row must have len(columns) values.
func NewTableRowSource(columns []TableColumn, rows [][]TaggedValue) *TableRowSource {
	return &TableRowSource{columns: columns, rows: rows, pos: -1}
}

func (t *TableRowSource) Next(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	t.pos++
	return t.pos < len(t.rows), nil
}

func (t *TableRowSource) ColumnCount() int          { return len(t.columns) }
func (t *TableRowSource) ColumnName(i int) string    { return t.columns[i].Name }
func (t *TableRowSource) ColumnType(i int) FieldKind { return t.columns[i].Kind }

func (t *TableRowSource) Field(i int) (TaggedValue, error) {
	if t.pos < 0 || t.pos >= len(t.rows) {
		return TaggedValue{}, fmt.Errorf("mysqlbulk: Field called before Next returned true")
	}
	row := t.rows[t.pos]
	if i < 0 || i >= len(row) {
		return TaggedValue{}, fmt.Errorf("mysqlbulk: column index %d out of range", i)
	}
	return row[i], nil
}

// CursorRowSource adapts a caller-supplied forward-only async cursor -
// e.g. the row-reader abstraction of the surrounding driver, which this
// core treats as an external collaborator - into a RowSource. advance is
// called once per row and must block until the next row is buffered (or
// report io.EOF-equivalent by returning false).
type CursorRowSource struct {
	columns []TableColumn
	advance func(ctx context.Context) (bool, error)
	field   func(i int) (TaggedValue, error)
}

// NewCursorRowSource wires a protocol row-cursor's advance/field callbacks
// into a RowSource, per the guidance in SPEC_FULL.md §6.
func NewCursorRowSource(columns []TableColumn, advance func(ctx context.Context) (bool, error), field func(i int) (TaggedValue, error)) *CursorRowSource {
	return &CursorRowSource{columns: columns, advance: advance, field: field}
}

func (c *CursorRowSource) Next(ctx context.Context) (bool, error) { return c.advance(ctx) }
func (c *CursorRowSource) ColumnCount() int                       { return len(c.columns) }
func (c *CursorRowSource) ColumnName(i int) string                { return c.columns[i].Name }
func (c *CursorRowSource) ColumnType(i int) FieldKind             { return c.columns[i].Kind }
func (c *CursorRowSource) Field(i int) (TaggedValue, error)       { return c.field(i) }
