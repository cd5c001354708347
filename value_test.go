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
	"math"
	"testing"
	"time"
)

func Test_encodeValue(t *testing.T) {
	opts := defaultEncodingOptions()

	tests := []struct {
		name string
		in   TaggedValue
		want string
	}{
		{"null", NullValue(KindInt64), `\N`},
		{"int", IntValue(-42), "-42"},
		{"uint", UintValue(42), "42"},
		{"float32", Float32Value(1.5), "1.5"},
		{"float64", Float64Value(3.25), "3.25"},
		{"decimal", DecimalValue("12.340"), "12.340"},
		{"bool true", BoolValue(true), "1"},
		{"bool false", BoolValue(false), "0"},
		{"date", DateValue(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)), "2024-03-05"},
		{"datetime no fraction", DateTimeValue(time.Date(2024, 3, 5, 13, 1, 2, 0, time.UTC)), "2024-03-05 13:01:02"},
		{"datetime with fraction", DateTimeValue(time.Date(2024, 3, 5, 13, 1, 2, 500000000, time.UTC)), "2024-03-05 13:01:02.500000"},
		{"time positive", TimeValue(90*time.Minute + 5*time.Second), "01:30:05"},
		{"time negative", TimeValue(-(2*time.Hour + time.Second)), "-02:00:01"},
		{"text", TextValue("plain"), "plain"},
		{"binary", BinaryValue([]byte{0xDE, 0xAD, 0xBE, 0xEF}), "deadbeef"},
		{"guid", GUIDValue([16]byte{
			0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
			0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
		}), "01020304-0506-0708-090a-0b0c0d0e0f10"},
		{"enum", EnumValue("ACTIVE"), "ACTIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeValue(nil, tt.in, opts)
			if err != nil {
				t.Fatalf("encodeValue: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("encodeValue(%s) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func Test_encodeValue_rejectsNonFiniteFloats(t *testing.T) {
	opts := defaultEncodingOptions()
	for _, v := range []TaggedValue{
		Float64Value(math.Inf(1)),
		Float32Value(float32(math.NaN())),
	} {
		if _, err := encodeValue(nil, v, opts); err == nil {
			t.Errorf("encodeValue(%v): want error for non-finite float", v)
		}
	}
}

func Test_appendEscapedText(t *testing.T) {
	opts := defaultEncodingOptions()
	opts.quote = '"'
	opts.hasQuote = true

	got := appendEscapedText(nil, []byte("a\tb\\c\"d\ne\rf"), opts)
	want := `"a\tb\\c\"d\ne\rf"`
	if string(got) != want {
		t.Errorf("appendEscapedText = %q, want %q", got, want)
	}
}

func Test_appendEscapedText_escapesFieldTerminator(t *testing.T) {
	opts := defaultEncodingOptions()
	opts.fieldTerminator = "||"

	got := appendEscapedText(nil, []byte("a||b"), opts)
	want := `a\||b`
	if string(got) != want {
		t.Errorf("appendEscapedText = %q, want %q", got, want)
	}
}
