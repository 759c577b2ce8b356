package classfile

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type poolEntry struct {
	tag  Tag
	data []byte
}

func utf8Entry(s string) poolEntry {
	return poolEntry{TagUTF8, encodeMUTF8(s)}
}

func u2(v int) []byte {
	return binary.BigEndian.AppendUint16(nil, uint16(v))
}

// buildClass assembles a class file; long/double entries take two slots.
func buildClass(entries []poolEntry, rest []byte) []byte {
	count := 1
	for _, e := range entries {
		count++
		if e.tag == TagLong || e.tag == TagDouble {
			count++
		}
	}

	out := binary.BigEndian.AppendUint32(nil, magic)
	out = append(out, 0, 0, 0, 61)
	out = append(out, u2(count)...)
	for _, e := range entries {
		out = append(out, byte(e.tag))
		if e.tag == TagUTF8 {
			out = append(out, u2(len(e.data))...)
		}
		out = append(out, e.data...)
	}
	return append(out, rest...)
}

func sampleClass() []byte {
	return buildClass([]poolEntry{
		utf8Entry("com/example/Demo"),              // #1
		{TagClass, u2(1)},                          // #2
		utf8Entry("SRC(a.b.Foo)"),                  // #3
		{TagString, u2(3)},                         // #4
		{TagLong, []byte{0, 0, 0, 0, 0, 0, 0, 42}}, // #5, #6
		utf8Entry("prefix SRM(a.b.Foo bar) ü\x00"), // #7
		{TagString, u2(7)},                         // #8
		{TagString, u2(3)},                         // #9 duplicate reference
		{TagMethodHandle, []byte{6, 0, 2}},         // #10
	}, []byte{0x00, 0x21, 0x00, 0x02, 0xde, 0xad})
}

func TestParse_RoundTrip(t *testing.T) {
	data := sampleClass()

	f, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(61), f.Major)
	assert.Len(t, f.Pool, 11)
	assert.Nil(t, f.Pool[0])
	assert.Nil(t, f.Pool[6])
	assert.Equal(t, TagLong, f.Pool[5].Tag)

	assert.Equal(t, data, f.Bytes())
}

func TestStrings(t *testing.T) {
	f, err := Parse(sampleClass())
	require.NoError(t, err)

	assert.Equal(t, []StringConstant{
		{Index: 3, Value: "SRC(a.b.Foo)"},
		{Index: 7, Value: "prefix SRM(a.b.Foo bar) ü\x00"},
	}, f.Strings())
}

func TestSetString(t *testing.T) {
	f, err := Parse(sampleClass())
	require.NoError(t, err)

	idx, err := f.SetString(3, "x.y.B")
	require.NoError(t, err)
	assert.Equal(t, 11, idx)
	idx, err = f.SetString(7, "prefix baz 😀")
	require.NoError(t, err)
	assert.Equal(t, 12, idx)

	again, err := Parse(f.Bytes())
	require.NoError(t, err)
	assert.Len(t, again.Pool, 13)
	assert.Equal(t, []StringConstant{
		{Index: 11, Value: "x.y.B"},
		{Index: 12, Value: "prefix baz 😀"},
	}, again.Strings())
	assert.Equal(t, []byte{0x00, 0x21, 0x00, 0x02, 0xde, 0xad}, again.rest)

	t.Run("Shared entry is kept", func(t *testing.T) {
		// annotation values and class names may point at the same UTF8 entry
		assert.Equal(t, "SRC(a.b.Foo)", again.Pool[3].Text)
		assert.Equal(t, "com/example/Demo", again.Pool[1].Text)
		assert.Equal(t, u2(1), again.Pool[2].Data)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := f.SetString(2, "not utf8")
		assert.Error(t, err)
		_, err = f.SetString(6, "long second slot")
		assert.Error(t, err)
		_, err = f.SetString(99, "out of range")
		assert.Error(t, err)
	})
}

func TestParse_Errors(t *testing.T) {
	tests := map[string][]byte{
		"short":       {0xCA, 0xFE},
		"bad magic":   {0, 0, 0, 0, 0, 0, 0, 61, 0, 1},
		"zero count":  {0xCA, 0xFE, 0xBA, 0xBE, 0, 0, 0, 61, 0, 0},
		"truncated":   buildClass([]poolEntry{utf8Entry("abc")}, nil)[:14],
		"unknown tag": buildClass([]poolEntry{{Tag(2), nil}}, nil),
		"bad utf8":    buildClass([]poolEntry{{TagUTF8, []byte{0xFF}}}, nil),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(data)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestMUTF8(t *testing.T) {
	enc := encodeMUTF8("a\x00é😀")
	// NUL is two bytes, the emoji a surrogate pair of three bytes each.
	assert.Equal(t, []byte{'a', 0xC0, 0x80, 0xC3, 0xA9, 0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}, enc)

	dec, err := decodeMUTF8(enc)
	require.NoError(t, err)
	assert.Equal(t, "a\x00é😀", dec)

	_, err = decodeMUTF8([]byte{0})
	assert.Error(t, err)
}
