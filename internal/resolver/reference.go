package resolver

import (
	"fmt"
	"regexp"
)

// Kind is the kind of symbol a lookup refers to.
type Kind byte

const (
	KindClass  Kind = 'C'
	KindMethod Kind = 'M'
	KindField  Kind = 'F'
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	case KindField:
		return "field"
	}
	return fmt.Sprintf("Kind(%q)", byte(k))
}

// Reference grammars accepted inside lookups. These are independent from
// the mapping-file grammars.
var (
	classRefPattern       = regexp.MustCompile(`^([\w.$]+)$`)
	lightMethodRefPattern = regexp.MustCompile(`^([\w.$]+) ([\w$]+)$`)
	methodRefPattern      = regexp.MustCompile(`^([\w.$]+) ([\w.$\[\]]+) ([\w$]+)\(([\w.,$\[\]]*)\)$`)
	lightFieldRefPattern  = regexp.MustCompile(`^([\w.$]+) ([\w$]+)$`)
	fieldRefPattern       = regexp.MustCompile(`^([\w.$]+) ([\w.$\[\]]+) ([\w$]+)$`)
)

// ClassRef is a reference to a class by original name.
type ClassRef struct {
	Name string
}

// MethodRef is a method reference. Light references carry only owner and
// name; full references also carry the signature in original names.
type MethodRef struct {
	Owner      string
	ReturnType string
	Name       string
	Parameters string
	Full       bool
}

// FieldRef is a field reference. Light references carry only owner and name.
type FieldRef struct {
	Owner string
	Type  string
	Name  string
	Full  bool
}

// ParseClassRef parses "a.b.Foo".
func ParseClassRef(s string) (ClassRef, error) {
	if m := classRefPattern.FindStringSubmatch(s); m != nil {
		return ClassRef{Name: m[1]}, nil
	}
	return ClassRef{}, malformed(KindClass, s)
}

// ParseMethodRef parses "a.b.Foo bar" or "a.b.Foo int bar(java.lang.String,int)".
func ParseMethodRef(s string) (MethodRef, error) {
	if m := lightMethodRefPattern.FindStringSubmatch(s); m != nil {
		return MethodRef{Owner: m[1], Name: m[2]}, nil
	}
	if m := methodRefPattern.FindStringSubmatch(s); m != nil {
		return MethodRef{Owner: m[1], ReturnType: m[2], Name: m[3], Parameters: m[4], Full: true}, nil
	}
	return MethodRef{}, malformed(KindMethod, s)
}

// ParseFieldRef parses "a.b.Foo count" or "a.b.Foo int count".
func ParseFieldRef(s string) (FieldRef, error) {
	if m := lightFieldRefPattern.FindStringSubmatch(s); m != nil {
		return FieldRef{Owner: m[1], Name: m[2]}, nil
	}
	if m := fieldRefPattern.FindStringSubmatch(s); m != nil {
		return FieldRef{Owner: m[1], Type: m[2], Name: m[3], Full: true}, nil
	}
	return FieldRef{}, malformed(KindField, s)
}
