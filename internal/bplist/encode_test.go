// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bplist

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

func TestMarshal_ExactBytes(t *testing.T) {
	got, err := Marshal(map[string]bool{"a": true})
	require.NoError(t, err)

	want := []byte("bplist00")
	want = append(want,
		0xD1, 0x01, 0x02, // dict, 1 pair: key ref 1, value ref 2
		0x51, 'a', // ascii string "a"
		0x09,             // true
		0x08, 0x0B, 0x0D, // offset table
	)
	want = append(want, 0, 0, 0, 0, 0, 0, 1, 1)
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 3)  // object count
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 0)  // top object
	want = append(want, 0, 0, 0, 0, 0, 0, 0, 14) // offset table offset

	assert.Equal(t, want, got)
}

func TestMarshal_Trailer(t *testing.T) {
	items := make([]string, 300)
	for i := range items {
		items[i] = strings.Repeat("x", i)
	}
	data, err := Marshal(map[string]any{"items": items})
	require.NoError(t, err)

	tr, ok := ReadTrailer(data)
	require.True(t, ok)
	assert.Equal(t, uint64(0), tr.TopObject)
	assert.Equal(t, uint64(303), tr.NumObjects) // dict, key, array, 300 strings
	assert.Equal(t, uint8(2), tr.ObjectRefSize)
	assert.Equal(t, len(data), int(tr.OffsetTableOffset)+int(tr.NumObjects)*int(tr.OffsetIntSize)+trailerSize)

	_, ok = ReadTrailer([]byte("not a plist"))
	assert.False(t, ok)
}

type sample struct {
	Name     string            `plist:"name"`
	Unicode  string            `plist:"unicode"`
	Long     string            `plist:"long"`
	Small    int               `plist:"small"`
	Medium   int               `plist:"medium"`
	Large    int64             `plist:"large"`
	Huge     int64             `plist:"huge"`
	Negative int64             `plist:"negative"`
	Unsigned uint32            `plist:"unsigned"`
	Ratio    float64           `plist:"ratio"`
	Enabled  bool              `plist:"enabled"`
	Disabled bool              `plist:"disabled"`
	Blob     []byte            `plist:"blob"`
	Tags     []string          `plist:"tags"`
	Empty    []string          `plist:"empty"`
	Nested   map[string]string `plist:"nested"`
	When     time.Time         `plist:"when"`
}

func TestMarshal_RoundTrip(t *testing.T) {
	in := sample{
		Name:     "Berserk",
		Unicode:  "ベルセルク – 黄金時代 🗡",
		Long:     "a string that is definitely longer than fifteen bytes",
		Small:    7,
		Medium:   40_000,
		Large:    3_000_000_000,
		Huge:     1_700_000_000_123,
		Negative: -42,
		Unsigned: 65_535,
		Ratio:    12.5,
		Enabled:  true,
		Blob:     []byte{0xDE, 0xAD, 0xBE, 0xEF},
		Tags:     []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p"},
		Empty:    []string{},
		Nested:   map[string]string{"z": "last", "a": "first"},
		When:     time.Date(2024, 2, 29, 12, 30, 15, 0, time.UTC),
	}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out sample
	format, err := plist.Unmarshal(data, &out)
	require.NoError(t, err)
	assert.Equal(t, plist.BinaryFormat, format)

	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Unicode, out.Unicode)
	assert.Equal(t, in.Long, out.Long)
	assert.Equal(t, in.Small, out.Small)
	assert.Equal(t, in.Medium, out.Medium)
	assert.Equal(t, in.Large, out.Large)
	assert.Equal(t, in.Huge, out.Huge)
	assert.Equal(t, in.Negative, out.Negative)
	assert.Equal(t, in.Unsigned, out.Unsigned)
	assert.Equal(t, in.Ratio, out.Ratio)
	assert.True(t, out.Enabled)
	assert.False(t, out.Disabled)
	assert.Equal(t, in.Blob, out.Blob)
	assert.Equal(t, in.Tags, out.Tags)
	assert.Empty(t, out.Empty)
	assert.Equal(t, in.Nested, out.Nested)
	assert.True(t, in.When.Equal(out.When), "when = %v", out.When)
}

func TestMarshal_Deterministic(t *testing.T) {
	v := map[string]any{
		"b": []any{1, "two", 3.0, true},
		"a": map[string]int{"y": 2, "x": 1, "w": 0},
		"c": "三",
	}
	first, err := Marshal(v)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Marshal(v)
		require.NoError(t, err)
		require.True(t, bytes.Equal(first, again), "run %d produced different bytes", i)
	}
}

func TestMarshal_UniquesScalars(t *testing.T) {
	data, err := Marshal([]string{"same", "same", "same", "other"})
	require.NoError(t, err)
	tr, ok := ReadTrailer(data)
	require.True(t, ok)
	assert.Equal(t, uint64(3), tr.NumObjects)

	var out []string
	_, err = plist.Unmarshal(data, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"same", "same", "same", "other"}, out)
}

func TestMarshal_ContainersAreNotUniqued(t *testing.T) {
	data, err := Marshal([][]string{{}, {}})
	require.NoError(t, err)
	tr, _ := ReadTrailer(data)
	assert.Equal(t, uint64(3), tr.NumObjects)
}

type stamped struct {
	Added int64  `plist:"added,epochms"`
	Count int64  `plist:"count"`
	Note  string `plist:"note,omitempty"`
	Ptr   *int   `plist:"ptr"`
	Skip  string `plist:"-"`
	Plain string
	inner string
}

func TestMarshal_TagOptions(t *testing.T) {
	v := stamped{Added: 1_700_000_000_999, Count: 3, Skip: "x", Plain: "p", inner: "hidden"}

	data, err := Marshal(v)
	require.NoError(t, err)

	var out map[string]any
	_, err = plist.Unmarshal(data, &out)
	require.NoError(t, err)

	assert.Len(t, out, 3)
	assert.Contains(t, out, "added")
	assert.Contains(t, out, "count")
	assert.Contains(t, out, "Plain")
	assert.NotContains(t, out, "note")
	assert.NotContains(t, out, "ptr")
	assert.NotContains(t, out, "-")
}

func TestMarshal_NativeDates(t *testing.T) {
	v := stamped{Added: 1_700_000_000_999, Count: 1_700_000_000_999}

	data, err := Marshal(v, WithNativeDates(true))
	require.NoError(t, err)

	var out struct {
		Added time.Time `plist:"added"`
		Count int64     `plist:"count"`
	}
	_, err = plist.Unmarshal(data, &out)
	require.NoError(t, err)

	assert.True(t, out.Added.Equal(time.UnixMilli(1_700_000_000_000)), "added = %v", out.Added)
	assert.Equal(t, int64(1_700_000_000_999), out.Count)
}

func TestMarshal_DateFormat(t *testing.T) {
	when := time.Date(2025, 6, 1, 8, 0, 0, 750_000_000, time.UTC)

	truncated, err := Marshal(map[string]time.Time{"t": when})
	require.NoError(t, err)
	precise, err := Marshal(map[string]time.Time{"t": when}, WithDateFormat(KeepPrecision))
	require.NoError(t, err)
	assert.NotEqual(t, truncated, precise)

	var out map[string]time.Time
	_, err = plist.Unmarshal(truncated, &out)
	require.NoError(t, err)
	assert.True(t, out["t"].Equal(when.Truncate(time.Second)))

	_, err = plist.Unmarshal(precise, &out)
	require.NoError(t, err)
	assert.WithinDuration(t, when, out["t"], time.Millisecond)
}

func TestMarshal_Errors(t *testing.T) {
	tests := []struct {
		name      string
		in        any
		wantType  bool
		wantValue bool
	}{
		{name: "nil", in: nil, wantType: true},
		{name: "channel", in: make(chan int), wantType: true},
		{name: "func field", in: struct{ F func() }{F: func() {}}, wantType: true},
		{name: "non-string map key", in: map[int]string{1: "a"}, wantType: true},
		{name: "nil array element", in: []*int{nil}, wantValue: true},
		{name: "nil top-level pointer", in: (*sample)(nil), wantValue: true},
		{name: "uint64 overflow", in: uint64(1 << 63), wantValue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.in)
			require.Error(t, err)
			assert.Nil(t, data)

			var typeErr *UnsupportedTypeError
			var valueErr *UnsupportedValueError
			assert.Equal(t, tt.wantType, errors.As(err, &typeErr), "err = %v", err)
			assert.Equal(t, tt.wantValue, errors.As(err, &valueErr), "err = %v", err)
		})
	}
}

func TestEncoder_WritesToStream(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.Encode([]int{1, 2, 3}))

	var out []int
	_, err := plist.Unmarshal(buf.Bytes(), &out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}
