// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bplist

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf16"
)

const (
	header      = "bplist00"
	trailerSize = 32
)

// Object markers. The low nibble of container, string, and data markers holds
// the element count, or 0xF when an integer object with the count follows.
const (
	markerFalse  = 0x08
	markerTrue   = 0x09
	markerInt    = 0x10
	markerReal   = 0x20
	markerDate   = 0x33
	markerData   = 0x40
	markerASCII  = 0x50
	markerUTF16  = 0x60
	markerArray  = 0xA0
	markerDict   = 0xD0
	countInline  = 0x0F
	real64Nibble = 0x03
)

// Trailer is the 32-byte footer of a binary property list.
type Trailer struct {
	SortVersion       uint8
	OffsetIntSize     uint8
	ObjectRefSize     uint8
	NumObjects        uint64
	TopObject         uint64
	OffsetTableOffset uint64
}

// bytes serializes the object table.
func (t *table) bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(header)

	refSize := intSize(uint64(len(t.objects)))
	offsets := make([]uint64, len(t.objects))
	for i, obj := range t.objects {
		offsets[i] = uint64(buf.Len())
		writeObject(&buf, obj, refSize)
	}

	tableOffset := uint64(buf.Len())
	offsetSize := intSize(offsets[len(offsets)-1])
	for _, off := range offsets {
		writeSized(&buf, off, offsetSize)
	}

	writeTrailer(&buf, Trailer{
		OffsetIntSize:     offsetSize,
		ObjectRefSize:     refSize,
		NumObjects:        uint64(len(t.objects)),
		TopObject:         0,
		OffsetTableOffset: tableOffset,
	})
	return buf.Bytes()
}

func writeTrailer(buf *bytes.Buffer, tr Trailer) {
	var b [trailerSize]byte
	b[5] = tr.SortVersion
	b[6] = tr.OffsetIntSize
	b[7] = tr.ObjectRefSize
	binary.BigEndian.PutUint64(b[8:], tr.NumObjects)
	binary.BigEndian.PutUint64(b[16:], tr.TopObject)
	binary.BigEndian.PutUint64(b[24:], tr.OffsetTableOffset)
	buf.Write(b[:])
}

// ReadTrailer decodes the trailer at the end of data. It checks the header
// and length only.
func ReadTrailer(data []byte) (Trailer, bool) {
	if len(data) < len(header)+trailerSize || string(data[:len(header)]) != header {
		return Trailer{}, false
	}
	b := data[len(data)-trailerSize:]
	return Trailer{
		SortVersion:       b[5],
		OffsetIntSize:     b[6],
		ObjectRefSize:     b[7],
		NumObjects:        binary.BigEndian.Uint64(b[8:]),
		TopObject:         binary.BigEndian.Uint64(b[16:]),
		OffsetTableOffset: binary.BigEndian.Uint64(b[24:]),
	}, true
}

func writeObject(buf *bytes.Buffer, obj object, refSize uint8) {
	switch obj.kind {
	case kindBool:
		if obj.b {
			buf.WriteByte(markerTrue)
		} else {
			buf.WriteByte(markerFalse)
		}
	case kindInt:
		writeInt(buf, obj.i)
	case kindReal:
		buf.WriteByte(markerReal | real64Nibble)
		writeSized(buf, math.Float64bits(obj.f), 8)
	case kindDate:
		buf.WriteByte(markerDate)
		writeSized(buf, math.Float64bits(obj.f), 8)
	case kindData:
		writeCount(buf, markerData, len(obj.s))
		buf.WriteString(obj.s)
	case kindString:
		writeString(buf, obj.s)
	case kindArray:
		writeCount(buf, markerArray, len(obj.refs))
		for _, ref := range obj.refs {
			writeSized(buf, uint64(ref), refSize)
		}
	case kindDict:
		writeCount(buf, markerDict, len(obj.refs)/2)
		for _, ref := range obj.refs {
			writeSized(buf, uint64(ref), refSize)
		}
	}
}

// writeInt uses 1, 2, or 4 unsigned bytes when the value fits and 8 bytes of
// two's complement otherwise (always for negatives).
func writeInt(buf *bytes.Buffer, i int64) {
	if i < 0 {
		buf.WriteByte(markerInt | 3)
		writeSized(buf, uint64(i), 8)
		return
	}
	size := intSize(uint64(i))
	buf.WriteByte(markerInt | sizeNibble(size))
	writeSized(buf, uint64(i), size)
}

func writeString(buf *bytes.Buffer, s string) {
	if isASCII(s) {
		writeCount(buf, markerASCII, len(s))
		buf.WriteString(s)
		return
	}
	units := utf16.Encode([]rune(s))
	writeCount(buf, markerUTF16, len(units))
	for _, u := range units {
		writeSized(buf, uint64(u), 2)
	}
}

func writeCount(buf *bytes.Buffer, marker byte, n int) {
	if n < countInline {
		buf.WriteByte(marker | byte(n))
		return
	}
	buf.WriteByte(marker | countInline)
	writeInt(buf, int64(n))
}

func writeSized(buf *bytes.Buffer, v uint64, size uint8) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[8-size:])
}

// intSize returns the smallest of 1, 2, 4, or 8 bytes that holds v.
func intSize(v uint64) uint8 {
	switch {
	case v <= math.MaxUint8:
		return 1
	case v <= math.MaxUint16:
		return 2
	case v <= math.MaxUint32:
		return 4
	default:
		return 8
	}
}

func sizeNibble(size uint8) byte {
	switch size {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	default:
		return 3
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
