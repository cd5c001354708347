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
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"time"
)

// FieldKind tags a TaggedValue with the logical type the value encoder
// needs to pick an encoding; it plays the role the teacher's FieldType
// plays for wire-read values, but on the write/encode side.
type FieldKind int

const (
	KindInt64 FieldKind = iota
	KindUint64
	KindFloat32
	KindFloat64
	KindDecimal
	KindBool
	KindDate
	KindTime
	KindDateTime
	KindTimestamp
	KindText
	KindBinary
	KindGUID
	KindEnum
)

func (k FieldKind) String() string {
	switch k {
	case KindInt64:
		return "INT64"
	case KindUint64:
		return "UINT64"
	case KindFloat32:
		return "FLOAT32"
	case KindFloat64:
		return "FLOAT64"
	case KindDecimal:
		return "DECIMAL"
	case KindBool:
		return "BOOL"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindDateTime:
		return "DATETIME"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindText:
		return "TEXT"
	case KindBinary:
		return "BINARY"
	case KindGUID:
		return "GUID"
	case KindEnum:
		return "ENUM"
	default:
		return "UNKNOWN"
	}
}

// TaggedValue is one field value carrying its logical type, sufficient
// for the encoder to choose an encoding without consulting an external
// schema. A zero TaggedValue with IsNull set encodes as SQL NULL
// regardless of Kind.
type TaggedValue struct {
	Kind   FieldKind
	IsNull bool

	Int64    int64
	Uint64   uint64
	Float64  float64 // also holds float32 values; Kind disambiguates precision
	Decimal  string  // canonical decimal ASCII, caller-supplied
	Bool     bool
	Time     time.Time     // Date / DateTime / Timestamp
	Duration time.Duration // Time-of-day, MySQL TIME range (-838:59:59..838:59:59)
	Text     string
	Binary   []byte
	GUID     [16]byte
}

// NullValue returns a NULL TaggedValue of the given kind, so the encoder
// can still be told what the destination column's type was even though no
// type-specific formatting is needed.
func NullValue(kind FieldKind) TaggedValue { return TaggedValue{Kind: kind, IsNull: true} }

func IntValue(v int64) TaggedValue      { return TaggedValue{Kind: KindInt64, Int64: v} }
func UintValue(v uint64) TaggedValue    { return TaggedValue{Kind: KindUint64, Uint64: v} }
func Float32Value(v float32) TaggedValue {
	return TaggedValue{Kind: KindFloat32, Float64: float64(v)}
}
func Float64Value(v float64) TaggedValue { return TaggedValue{Kind: KindFloat64, Float64: v} }
func DecimalValue(v string) TaggedValue  { return TaggedValue{Kind: KindDecimal, Decimal: v} }
func BoolValue(v bool) TaggedValue       { return TaggedValue{Kind: KindBool, Bool: v} }
func DateValue(v time.Time) TaggedValue  { return TaggedValue{Kind: KindDate, Time: v} }
func TimeValue(v time.Duration) TaggedValue {
	return TaggedValue{Kind: KindTime, Duration: v}
}
func DateTimeValue(v time.Time) TaggedValue { return TaggedValue{Kind: KindDateTime, Time: v} }
func TimestampValue(v time.Time) TaggedValue {
	return TaggedValue{Kind: KindTimestamp, Time: v}
}
func TextValue(v string) TaggedValue     { return TaggedValue{Kind: KindText, Text: v} }
func BinaryValue(v []byte) TaggedValue   { return TaggedValue{Kind: KindBinary, Binary: v} }
func GUIDValue(v [16]byte) TaggedValue   { return TaggedValue{Kind: KindGUID, GUID: v} }
func EnumValue(v string) TaggedValue     { return TaggedValue{Kind: KindEnum, Text: v} }

// encodingOptions carries the configured delimiters/escape that the value
// encoder must quote and escape around, mirroring BulkLoader's
// FieldTerminator/FieldQuotationCharacter/EscapeCharacter.
type encodingOptions struct {
	fieldTerminator string
	lineTerminator  string
	quote           byte // used only when hasQuote is set
	hasQuote        bool
	escape          byte
}

func defaultEncodingOptions() *encodingOptions {
	return &encodingOptions{
		fieldTerminator: "\t",
		lineTerminator:  "\n",
		escape:          '\\',
	}
}

// encodeValue appends the LOAD-DATA line-format encoding of v to dst,
// returning the grown slice. It is grounded on the table-driven
// appendEncode tested in infile_test.go (driver.Value -> []byte) and on
// the quote/escape algorithm of mysqltsv.escapeField, generalized to the
// configurable delimiters this package supports.
func encodeValue(dst []byte, v TaggedValue, opts *encodingOptions) ([]byte, error) {
	if v.IsNull {
		return append(dst, opts.escape, 'N'), nil
	}

	switch v.Kind {
	case KindInt64:
		return strconv.AppendInt(dst, v.Int64, 10), nil

	case KindUint64:
		return strconv.AppendUint(dst, v.Uint64, 10), nil

	case KindFloat32:
		if math.IsInf(v.Float64, 0) || math.IsNaN(v.Float64) {
			return nil, fmt.Errorf("%w: float32 Inf/NaN cannot be loaded", errUnsupportedValue)
		}
		return strconv.AppendFloat(dst, v.Float64, 'g', -1, 32), nil

	case KindFloat64:
		if math.IsInf(v.Float64, 0) || math.IsNaN(v.Float64) {
			return nil, fmt.Errorf("%w: float64 Inf/NaN cannot be loaded", errUnsupportedValue)
		}
		return strconv.AppendFloat(dst, v.Float64, 'g', -1, 64), nil

	case KindDecimal:
		return append(dst, v.Decimal...), nil

	case KindBool:
		if v.Bool {
			return append(dst, '1'), nil
		}
		return append(dst, '0'), nil

	case KindDate:
		return v.Time.AppendFormat(dst, "2006-01-02"), nil

	case KindTime:
		return appendClockDuration(dst, v.Duration), nil

	case KindDateTime, KindTimestamp:
		return appendDateTime(dst, v.Time), nil

	case KindText, KindEnum:
		return appendEscapedText(dst, []byte(v.Text), opts), nil

	case KindBinary:
		start := len(dst)
		grown := append(dst, make([]byte, hex.EncodedLen(len(v.Binary)))...)
		hex.Encode(grown[start:], v.Binary)
		return grown, nil

	case KindGUID:
		return appendGUID(dst, v.GUID), nil

	default:
		return nil, fmt.Errorf("%w: unknown field kind %v", errUnsupportedValue, v.Kind)
	}
}

// appendDateTime renders YYYY-MM-DD HH:MM:SS[.ffffff], omitting the
// fractional part when it is zero, with no timezone suffix.
func appendDateTime(dst []byte, t time.Time) []byte {
	if t.Nanosecond() == 0 {
		return t.AppendFormat(dst, "2006-01-02 15:04:05")
	}
	return t.AppendFormat(dst, "2006-01-02 15:04:05.000000")
}

// appendClockDuration renders HH:MM:SS[.ffffff] for a MySQL TIME value,
// which unlike time.Duration's own formatting may exceed 24 hours and may
// be negative.
func appendClockDuration(dst []byte, d time.Duration) []byte {
	sign := byte(0)
	if d < 0 {
		sign = '-'
		d = -d
	}
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int64(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	seconds := int64(d / time.Second)
	d -= time.Duration(seconds) * time.Second
	micros := int64(d / time.Microsecond)

	if sign != 0 {
		dst = append(dst, sign)
	}
	dst = appendZeroPadded(dst, hours, 2)
	dst = append(dst, ':')
	dst = appendZeroPadded(dst, minutes, 2)
	dst = append(dst, ':')
	dst = appendZeroPadded(dst, seconds, 2)
	if micros != 0 {
		dst = append(dst, '.')
		dst = appendZeroPadded(dst, micros, 6)
	}
	return dst
}

func appendZeroPadded(dst []byte, v int64, width int) []byte {
	s := strconv.FormatInt(v, 10)
	for len(s) < width {
		s = "0" + s
	}
	return append(dst, s...)
}

// appendGUID renders the canonical 8-4-4-4-12 lowercase hex form.
func appendGUID(dst []byte, g [16]byte) []byte {
	var buf [36]byte
	hex.Encode(buf[0:8], g[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], g[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], g[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], g[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], g[10:16])
	return append(dst, buf[:]...)
}

// appendEscapedText wraps data in the configured quote character (if any)
// and backslash-escapes the bytes LOAD DATA treats specially: the escape
// character itself, the quote character, NUL, newline, carriage return,
// tab, and the configured field terminator. Grounded on
// mysqltsv.escapeField, generalized from its hardcoded '"'/'\' to the
// configured quote/escape/terminator.
func appendEscapedText(dst, data []byte, opts *encodingOptions) []byte {
	if opts.hasQuote {
		dst = append(dst, opts.quote)
	}
	term := opts.fieldTerminator
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case c == opts.escape:
			dst = append(dst, opts.escape, c)
		case opts.hasQuote && c == opts.quote:
			dst = append(dst, opts.escape, c)
		case c == 0:
			dst = append(dst, opts.escape, '0')
		case c == '\n':
			dst = append(dst, opts.escape, 'n')
		case c == '\r':
			dst = append(dst, opts.escape, 'r')
		case c == '\t':
			dst = append(dst, opts.escape, 't')
		case len(term) > 0 && c == term[0] && i+len(term) <= len(data) && string(data[i:i+len(term)]) == term:
			dst = append(dst, opts.escape)
			dst = append(dst, data[i:i+len(term)]...)
			i += len(term) - 1
		default:
			dst = append(dst, c)
		}
	}
	if opts.hasQuote {
		dst = append(dst, opts.quote)
	}
	return dst
}
