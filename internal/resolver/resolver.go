// Package resolver answers class, method and field lookups against a loaded
// mappings.Table for a given naming goal.
package resolver

import (
	"fmt"
	"strings"

	"srmap/internal/mappings"
)

var primitiveTypes = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

// Resolver resolves references against a table. It never mutates the
// table, so one Resolver may be shared across goroutines once loading is done.
type Resolver struct {
	table *mappings.Table
}

// New creates a resolver over a loaded table.
func New(t *mappings.Table) *Resolver {
	return &Resolver{table: t}
}

// Table returns the table the resolver reads from.
func (r *Resolver) Table() *mappings.Table {
	return r.table
}

// Resolve dispatches a lookup by kind.
func (r *Resolver) Resolve(kind Kind, ref string, goal Goal) (string, error) {
	switch kind {
	case KindClass:
		return r.Class(ref, goal)
	case KindMethod:
		return r.Method(ref, goal)
	case KindField:
		return r.Field(ref, goal)
	}
	return "", fmt.Errorf("%w: unknown lookup kind %s", ErrMalformedReference, kind)
}

// Class resolves a class reference.
func (r *Resolver) Class(ref string, goal Goal) (string, error) {
	c, err := ParseClassRef(ref)
	if err != nil {
		return "", err
	}

	switch goal {
	case Original:
		return c.Name, nil
	case Obfuscated:
		e, ok := r.table.Original(c.Name)
		if !ok {
			return "", unresolved(KindClass, ref, HopPrimaryOwner, c.Name)
		}
		return e.Name, nil
	default:
		e, ok := r.table.Original(c.Name)
		if !ok {
			return "", unresolved(KindClass, ref, HopPrimaryOwner, c.Name)
		}
		return r.communityName(e.Name), nil
	}
}

// Method resolves a light or full method reference.
func (r *Resolver) Method(ref string, goal Goal) (string, error) {
	m, err := ParseMethodRef(ref)
	if err != nil {
		return "", err
	}
	if goal == Original {
		return m.Name, nil
	}

	owner, ok := r.table.Original(m.Owner)
	if !ok {
		return "", unresolved(KindMethod, ref, HopPrimaryOwner, m.Owner)
	}

	var obfuscated string
	if m.Full {
		obfuscated, ok = owner.Methods[mappings.MethodKey{Name: m.Name, ReturnType: m.ReturnType, Parameters: m.Parameters}]
	} else {
		obfuscated, ok = owner.LightMethods[m.Name]
	}
	if !ok {
		return "", unresolved(KindMethod, ref, HopPrimaryMember, m.Name)
	}
	if !goal.usesCommunity() {
		return obfuscated, nil
	}

	target, ok := r.table.Community(owner.Name)
	if !ok {
		return obfuscated, nil
	}

	var community string
	if m.Full {
		// The community table spells signatures in community names.
		key := mappings.MethodKey{
			Name:       obfuscated,
			ReturnType: r.communityType(m.ReturnType),
			Parameters: r.communityTypes(m.Parameters),
		}
		community, ok = target.Methods[key]
	} else {
		community, ok = target.LightMethods[obfuscated]
	}
	if !ok {
		return obfuscated, nil
	}
	return community, nil
}

// Field resolves a light or full field reference. The community member
// grammar carries no field types, so the second hop is always by name.
func (r *Resolver) Field(ref string, goal Goal) (string, error) {
	f, err := ParseFieldRef(ref)
	if err != nil {
		return "", err
	}
	if goal == Original {
		return f.Name, nil
	}

	owner, ok := r.table.Original(f.Owner)
	if !ok {
		return "", unresolved(KindField, ref, HopPrimaryOwner, f.Owner)
	}

	var obfuscated string
	if f.Full {
		obfuscated, ok = owner.Fields[mappings.FieldKey{Name: f.Name, Type: f.Type}]
	} else {
		obfuscated, ok = owner.LightFields[f.Name]
	}
	if !ok {
		return "", unresolved(KindField, ref, HopPrimaryMember, f.Name)
	}
	if !goal.usesCommunity() {
		return obfuscated, nil
	}

	if target, ok := r.table.Community(owner.Name); ok {
		if community, ok := target.LightFields[obfuscated]; ok {
			return community, nil
		}
	}
	return obfuscated, nil
}

// communityName maps an obfuscated class name to its community name. Inner
// classes without their own entry take the outer class's community name
// with the inner suffix kept as is. Unmapped names stay obfuscated.
func (r *Resolver) communityName(obfuscated string) string {
	if e, ok := r.table.Community(obfuscated); ok {
		return e.Name
	}
	if i := strings.LastIndexByte(obfuscated, '$'); i > 0 {
		return r.communityName(obfuscated[:i]) + obfuscated[i:]
	}
	return obfuscated
}

// communityType translates a type name written in original names, such as
// "a.b.Foo[]" or "int". Primitives and classes the primary table does not
// know (java.lang.String) pass through.
func (r *Resolver) communityType(name string) string {
	base := strings.TrimRight(name, "[]")
	dims := name[len(base):]
	if primitiveTypes[base] {
		return name
	}
	e, ok := r.table.Original(base)
	if !ok {
		return name
	}
	return r.communityName(e.Name) + dims
}

func (r *Resolver) communityTypes(params string) string {
	if params == "" {
		return ""
	}
	parts := strings.Split(params, ",")
	for i, p := range parts {
		parts[i] = r.communityType(p)
	}
	return strings.Join(parts, ",")
}
