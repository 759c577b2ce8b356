// Package classfile reads and rewrites the constant pool of a JVM class
// file. Only what string remapping needs is decoded: everything after the
// constant pool is carried through as opaque bytes.
package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const magic = 0xCAFEBABE

// ErrFormat is returned for input that is not a well-formed class file.
var ErrFormat = errors.New("malformed class file")

// Tag is a constant pool entry tag.
type Tag uint8

const (
	TagUTF8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// fixed payload sizes of every tag except UTF8
var tagSizes = map[Tag]int{
	TagInteger:            4,
	TagFloat:              4,
	TagLong:               8,
	TagDouble:             8,
	TagClass:              2,
	TagString:             2,
	TagFieldref:           4,
	TagMethodref:          4,
	TagInterfaceMethodref: 4,
	TagNameAndType:        4,
	TagMethodHandle:       3,
	TagMethodType:         2,
	TagDynamic:            4,
	TagInvokeDynamic:      4,
	TagModule:             2,
	TagPackage:            2,
}

// Constant is one constant pool entry.
type Constant struct {
	Tag  Tag
	Data []byte // payload after the tag; for UTF8 the encoded bytes without the length
	Text string // decoded value of UTF8 entries
}

// File is a class file split into header, constant pool and the rest.
type File struct {
	Minor, Major uint16
	// Pool is indexed like the JVM pool: Pool[0] and the slot after each
	// long or double are nil.
	Pool []*Constant
	rest []byte
}

// StringConstant is a UTF8 entry referenced by at least one CONSTANT_String,
// i.e. a string literal loaded with ldc or used as a field's ConstantValue.
type StringConstant struct {
	Index int
	Value string
}

// Parse decodes a class file.
func Parse(data []byte) (*File, error) {
	if len(data) < 10 {
		return nil, fmt.Errorf("%w: %d bytes", ErrFormat, len(data))
	}
	if binary.BigEndian.Uint32(data) != magic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrFormat, binary.BigEndian.Uint32(data))
	}

	f := &File{
		Minor: binary.BigEndian.Uint16(data[4:]),
		Major: binary.BigEndian.Uint16(data[6:]),
	}
	count := int(binary.BigEndian.Uint16(data[8:]))
	if count == 0 {
		return nil, fmt.Errorf("%w: empty constant pool count", ErrFormat)
	}
	f.Pool = make([]*Constant, count)

	pos := 10
	for i := 1; i < count; i++ {
		if pos >= len(data) {
			return nil, fmt.Errorf("%w: constant pool truncated at #%d", ErrFormat, i)
		}
		tag := Tag(data[pos])
		pos++

		c := &Constant{Tag: tag}
		if tag == TagUTF8 {
			if pos+2 > len(data) {
				return nil, fmt.Errorf("%w: constant #%d truncated", ErrFormat, i)
			}
			n := int(binary.BigEndian.Uint16(data[pos:]))
			pos += 2
			if pos+n > len(data) {
				return nil, fmt.Errorf("%w: constant #%d truncated", ErrFormat, i)
			}
			c.Data = data[pos : pos+n]
			text, err := decodeMUTF8(c.Data)
			if err != nil {
				return nil, fmt.Errorf("%w: constant #%d: %v", ErrFormat, i, err)
			}
			c.Text = text
			pos += n
		} else {
			size, ok := tagSizes[tag]
			if !ok {
				return nil, fmt.Errorf("%w: unknown tag %d at constant #%d", ErrFormat, tag, i)
			}
			if pos+size > len(data) {
				return nil, fmt.Errorf("%w: constant #%d truncated", ErrFormat, i)
			}
			c.Data = data[pos : pos+size]
			pos += size
		}

		f.Pool[i] = c
		if tag == TagLong || tag == TagDouble {
			i++
		}
	}

	f.rest = data[pos:]
	return f, nil
}

// Strings returns the string literal constants in pool order.
func (f *File) Strings() []StringConstant {
	seen := make(map[int]bool)
	var out []StringConstant
	for _, c := range f.Pool {
		if c == nil || c.Tag != TagString {
			continue
		}
		idx := int(binary.BigEndian.Uint16(c.Data))
		if seen[idx] || idx <= 0 || idx >= len(f.Pool) {
			continue
		}
		target := f.Pool[idx]
		if target == nil || target.Tag != TagUTF8 {
			continue
		}
		seen[idx] = true
		out = append(out, StringConstant{Index: idx, Value: target.Text})
	}
	return out
}

// SetString gives every CONSTANT_String that refers to the UTF8 entry at
// index a new value. The value goes into a UTF8 entry appended to the pool,
// so other users of the old entry (annotation values, names) keep it. It
// returns the index of the new entry.
func (f *File) SetString(index int, value string) (int, error) {
	if index <= 0 || index >= len(f.Pool) || f.Pool[index] == nil || f.Pool[index].Tag != TagUTF8 {
		return 0, fmt.Errorf("constant #%d is not a UTF8 entry", index)
	}
	if len(f.Pool) >= 0xFFFF {
		return 0, fmt.Errorf("constant pool is full")
	}
	data := encodeMUTF8(value)
	if len(data) > 0xFFFF {
		return 0, fmt.Errorf("constant #%d: encoded value is %d bytes, limit is 65535", index, len(data))
	}

	added := len(f.Pool)
	f.Pool = append(f.Pool, &Constant{Tag: TagUTF8, Data: data, Text: value})
	for i, c := range f.Pool {
		if c == nil || c.Tag != TagString || int(binary.BigEndian.Uint16(c.Data)) != index {
			continue
		}
		f.Pool[i] = &Constant{Tag: TagString, Data: binary.BigEndian.AppendUint16(nil, uint16(added))}
	}
	return added, nil
}

// Bytes encodes the class file.
func (f *File) Bytes() []byte {
	size := 10 + len(f.rest)
	for _, c := range f.Pool {
		if c != nil {
			size += 3 + len(c.Data)
		}
	}

	out := make([]byte, 0, size)
	out = binary.BigEndian.AppendUint32(out, magic)
	out = binary.BigEndian.AppendUint16(out, f.Minor)
	out = binary.BigEndian.AppendUint16(out, f.Major)
	out = binary.BigEndian.AppendUint16(out, uint16(len(f.Pool)))
	for _, c := range f.Pool {
		if c == nil {
			continue
		}
		out = append(out, byte(c.Tag))
		if c.Tag == TagUTF8 {
			out = binary.BigEndian.AppendUint16(out, uint16(len(c.Data)))
		}
		out = append(out, c.Data...)
	}
	return append(out, f.rest...)
}
