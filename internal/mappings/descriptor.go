package mappings

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadDescriptor is returned when a type or method descriptor cannot be decoded.
var ErrBadDescriptor = errors.New("bad descriptor")

var primitiveDescriptors = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// MethodDescriptor is a decoded method descriptor such as (Ljava/lang/String;I)V.
type MethodDescriptor struct {
	ReturnType string
	Parameters []string
}

// JoinedParameters returns the parameter type names joined the way MethodKey expects them.
func (d MethodDescriptor) JoinedParameters() string {
	return strings.Join(d.Parameters, ",")
}

// ParseFieldDescriptor decodes a single type descriptor into a dotted type name.
func ParseFieldDescriptor(desc string) (string, error) {
	name, n, err := decodeType(desc, 0)
	if err != nil {
		return "", err
	}
	if n != len(desc) {
		return "", fmt.Errorf("%w: trailing data in %q", ErrBadDescriptor, desc)
	}
	if name == "void" {
		return "", fmt.Errorf("%w: void is not a field type", ErrBadDescriptor)
	}
	return name, nil
}

// ParseMethodDescriptor decodes a method descriptor into its return and parameter type names.
func ParseMethodDescriptor(desc string) (MethodDescriptor, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return MethodDescriptor{}, fmt.Errorf("%w: %q does not start with '('", ErrBadDescriptor, desc)
	}

	var out MethodDescriptor
	pos := 1
	for {
		if pos >= len(desc) {
			return MethodDescriptor{}, fmt.Errorf("%w: unterminated parameter list in %q", ErrBadDescriptor, desc)
		}
		if desc[pos] == ')' {
			pos++
			break
		}
		name, next, err := decodeType(desc, pos)
		if err != nil {
			return MethodDescriptor{}, err
		}
		if name == "void" {
			return MethodDescriptor{}, fmt.Errorf("%w: void parameter in %q", ErrBadDescriptor, desc)
		}
		out.Parameters = append(out.Parameters, name)
		pos = next
	}

	ret, next, err := decodeType(desc, pos)
	if err != nil {
		return MethodDescriptor{}, err
	}
	if next != len(desc) {
		return MethodDescriptor{}, fmt.Errorf("%w: trailing data in %q", ErrBadDescriptor, desc)
	}
	out.ReturnType = ret
	return out, nil
}

// decodeType reads one type starting at pos and returns its name and the offset after it.
func decodeType(desc string, pos int) (string, int, error) {
	dims := 0
	for pos < len(desc) && desc[pos] == '[' {
		dims++
		pos++
	}
	if pos >= len(desc) {
		return "", 0, fmt.Errorf("%w: truncated %q", ErrBadDescriptor, desc)
	}

	var name string
	switch c := desc[pos]; c {
	case 'L':
		end := strings.IndexByte(desc[pos:], ';')
		if end <= 1 {
			return "", 0, fmt.Errorf("%w: unterminated class type in %q", ErrBadDescriptor, desc)
		}
		name = strings.ReplaceAll(desc[pos+1:pos+end], "/", ".")
		pos += end + 1
	default:
		prim, ok := primitiveDescriptors[c]
		if !ok {
			return "", 0, fmt.Errorf("%w: unknown type %q in %q", ErrBadDescriptor, c, desc)
		}
		if prim == "void" && dims > 0 {
			return "", 0, fmt.Errorf("%w: array of void in %q", ErrBadDescriptor, desc)
		}
		name = prim
		pos++
	}

	return name + strings.Repeat("[]", dims), pos, nil
}
