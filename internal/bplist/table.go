// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bplist

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"
)

type objKind byte

const (
	kindBool objKind = iota
	kindInt
	kindReal
	kindDate
	kindData
	kindString
	kindArray
	kindDict
)

// object is one entry of the object table. Dicts store all key refs followed
// by all value refs in refs.
type object struct {
	kind objKind
	b    bool
	i    int64
	f    float64
	s    string
	refs []int
}

type uniqueKey struct {
	kind objKind
	s    string
	bits uint64
}

type table struct {
	opts    options
	objects []object
	unique  map[uniqueKey]int
}

var timeType = reflect.TypeOf(time.Time{})

// appleEpoch is the reference date of plist dates, 2001-01-01T00:00:00Z.
var appleEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

func newTable(opts options) *table {
	return &table{opts: opts, unique: make(map[uniqueKey]int)}
}

func (t *table) scalar(obj object, key uniqueKey) int {
	if idx, ok := t.unique[key]; ok {
		return idx
	}
	t.objects = append(t.objects, obj)
	idx := len(t.objects) - 1
	t.unique[key] = idx
	return idx
}

// reserve appends a container placeholder so it is numbered before its
// children.
func (t *table) reserve(kind objKind) int {
	t.objects = append(t.objects, object{kind: kind})
	return len(t.objects) - 1
}

func (t *table) str(s string) int {
	return t.scalar(object{kind: kindString, s: s}, uniqueKey{kind: kindString, s: s})
}

func (t *table) integer(i int64) int {
	return t.scalar(object{kind: kindInt, i: i}, uniqueKey{kind: kindInt, bits: uint64(i)})
}

func (t *table) real(f float64) int {
	return t.scalar(object{kind: kindReal, f: f}, uniqueKey{kind: kindReal, bits: math.Float64bits(f)})
}

func (t *table) boolean(b bool) int {
	var bits uint64
	if b {
		bits = 1
	}
	return t.scalar(object{kind: kindBool, b: b}, uniqueKey{kind: kindBool, bits: bits})
}

func (t *table) date(tm time.Time) int {
	tm = t.opts.dateFormat(tm).UTC()
	secs := float64(tm.Unix()-appleEpoch) + float64(tm.Nanosecond())/1e9
	return t.scalar(object{kind: kindDate, f: secs}, uniqueKey{kind: kindDate, bits: math.Float64bits(secs)})
}

func (t *table) data(b []byte) int {
	s := string(b)
	return t.scalar(object{kind: kindData, s: s}, uniqueKey{kind: kindData, s: s})
}

// value adds v and everything it references, returning v's object index.
// epochms marks an integer field carrying epoch milliseconds.
func (t *table) value(v reflect.Value, epochms bool) (int, error) {
	if !v.IsValid() {
		return 0, &UnsupportedTypeError{}
	}
	if v.Type() == timeType {
		return t.date(v.Interface().(time.Time)), nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return 0, &UnsupportedValueError{Value: v, Str: "nil " + v.Type().String()}
		}
		return t.value(v.Elem(), epochms)
	case reflect.Bool:
		return t.boolean(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if epochms && t.opts.nativeDates {
			return t.date(time.UnixMilli(v.Int())), nil
		}
		return t.integer(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > math.MaxInt64 {
			return 0, &UnsupportedValueError{Value: v, Str: fmt.Sprintf("integer %d overflows int64", u)}
		}
		if epochms && t.opts.nativeDates {
			return t.date(time.UnixMilli(int64(u))), nil
		}
		return t.integer(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return t.real(v.Float()), nil
	case reflect.String:
		return t.str(v.String()), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return t.data(v.Bytes()), nil
		}
		return t.array(v)
	case reflect.Array:
		return t.array(v)
	case reflect.Map:
		return t.mapping(v)
	case reflect.Struct:
		return t.structure(v)
	}
	return 0, &UnsupportedTypeError{Type: v.Type()}
}

func (t *table) array(v reflect.Value) (int, error) {
	idx := t.reserve(kindArray)
	refs := make([]int, v.Len())
	for i := range refs {
		ref, err := t.value(v.Index(i), false)
		if err != nil {
			return 0, err
		}
		refs[i] = ref
	}
	t.objects[idx].refs = refs
	return idx, nil
}

func (t *table) mapping(v reflect.Value) (int, error) {
	if v.Type().Key().Kind() != reflect.String {
		return 0, &UnsupportedTypeError{Type: v.Type()}
	}
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	idx := t.reserve(kindDict)
	keyRefs := make([]int, 0, len(keys))
	valRefs := make([]int, 0, len(keys))
	for _, k := range keys {
		elem := v.MapIndex(k)
		if isNil(elem) {
			continue
		}
		keyRefs = append(keyRefs, t.str(k.String()))
		ref, err := t.value(elem, false)
		if err != nil {
			return 0, err
		}
		valRefs = append(valRefs, ref)
	}
	t.objects[idx].refs = append(keyRefs, valRefs...)
	return idx, nil
}

func (t *table) structure(v reflect.Value) (int, error) {
	idx := t.reserve(kindDict)
	var keyRefs, valRefs []int
	for _, f := range fieldsOf(v.Type()) {
		fv := v.Field(f.index)
		if isNil(fv) || (f.omitEmpty && isEmpty(fv)) {
			continue
		}
		keyRefs = append(keyRefs, t.str(f.name))
		ref, err := t.value(fv, f.epochms)
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", f.name, err)
		}
		valRefs = append(valRefs, ref)
	}
	t.objects[idx].refs = append(keyRefs, valRefs...)
	return idx, nil
}

type field struct {
	index     int
	name      string
	omitEmpty bool
	epochms   bool
}

func fieldsOf(typ reflect.Type) []field {
	fields := make([]field, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("plist")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		f := field{index: i, name: name}
		for _, opt := range strings.Split(opts, ",") {
			switch opt {
			case "omitempty":
				f.omitEmpty = true
			case "epochms":
				f.epochms = true
			}
		}
		fields = append(fields, f)
	}
	return fields
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	if v.Type() == timeType {
		return v.Interface().(time.Time).IsZero()
	}
	return false
}
