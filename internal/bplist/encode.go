// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bplist writes binary property lists ("bplist00").
//
// A value is flattened into an object table in depth-first pre-order (the
// top object is always index 0), followed by an offset table and a 32-byte
// trailer. Strings, numbers, dates, and data are uniqued; arrays and
// dictionaries are not. Struct fields are written in declaration order and
// map keys in sorted order, so the same value always produces the same bytes.
//
// Struct fields are named by the `plist` tag:
//
//	Name  string `plist:"name"`            // key "name"
//	Notes string `plist:"notes,omitempty"` // omitted when empty
//	Added int64  `plist:"added,epochms"`   // epoch ms; a date under WithNativeDates
//	Skip  string `plist:"-"`               // never written
//
// Nil pointers and interfaces inside structs and maps are omitted because the
// format has no null object.
package bplist

import (
	"bytes"
	"io"
	"reflect"
	"time"
)

// Option configures an encoder.
type Option func(*options)

type options struct {
	dateFormat  func(time.Time) time.Time
	nativeDates bool
}

// WithDateFormat sets the function applied to every time value before it is
// written as a date. The default is TruncateToSecond.
func WithDateFormat(f func(time.Time) time.Time) Option {
	return func(o *options) {
		if f != nil {
			o.dateFormat = f
		}
	}
}

// WithNativeDates writes integer fields tagged epochms as dates instead of
// integers.
func WithNativeDates(on bool) Option {
	return func(o *options) { o.nativeDates = on }
}

// TruncateToSecond drops sub-second precision.
func TruncateToSecond(t time.Time) time.Time {
	return t.Truncate(time.Second)
}

// KeepPrecision leaves times untouched.
func KeepPrecision(t time.Time) time.Time { return t }

func newOptions(opts []Option) options {
	o := options{dateFormat: TruncateToSecond}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Marshal returns the binary property list encoding of v.
func Marshal(v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf, opts...).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encoder writes binary property lists to a stream. Each Encode call writes
// one complete document.
type Encoder struct {
	w    io.Writer
	opts options
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: newOptions(opts)}
}

// Encode writes the encoding of v.
func (e *Encoder) Encode(v any) error {
	t := newTable(e.opts)
	if _, err := t.value(reflect.ValueOf(v), false); err != nil {
		return err
	}
	_, err := e.w.Write(t.bytes())
	return err
}

// UnsupportedTypeError is returned for values of a type that has no property
// list representation.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type == nil {
		return "bplist: unsupported value: nil"
	}
	return "bplist: unsupported type: " + e.Type.String()
}

// UnsupportedValueError is returned for values of a supported type that
// cannot be written, such as nil array elements.
type UnsupportedValueError struct {
	Value reflect.Value
	Str   string
}

func (e *UnsupportedValueError) Error() string {
	return "bplist: unsupported value: " + e.Str
}
