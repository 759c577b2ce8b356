// Package mappings holds the symbol tables that translate between the
// original, obfuscated and community naming schemes, and the parsers for
// the three mapping-file grammars that populate them.
//
// A Table is filled once per invocation (primary grammar, then community
// classes, then community members) and is read-only afterwards, so it can
// be shared by any number of goroutines without locking.
package mappings

import (
	"errors"
	"strings"
)

// ErrAlreadyLoaded is returned when a table family is loaded twice.
var ErrAlreadyLoaded = errors.New("mappings already loaded")

// MethodKey identifies a method by name and signature.
// Parameters is the comma-joined, ordered list of parameter type names.
type MethodKey struct {
	Name       string
	ReturnType string
	Parameters string
}

// FieldKey identifies a field by name and declared type.
type FieldKey struct {
	Name string
	Type string
}

// ClassEntry is one class in one table. In the primary table Name is the
// obfuscated name; in the community table it is the community name in dot form.
//
// The light tables are keyed by simple name only. When two members share a
// name the last one parsed wins.
type ClassEntry struct {
	Name         string
	Fields       map[FieldKey]string
	LightFields  map[string]string
	Methods      map[MethodKey]string
	LightMethods map[string]string
}

func newClassEntry(name string) *ClassEntry {
	return &ClassEntry{
		Name:         name,
		Fields:       make(map[FieldKey]string),
		LightFields:  make(map[string]string),
		Methods:      make(map[MethodKey]string),
		LightMethods: make(map[string]string),
	}
}

func (c *ClassEntry) putField(key FieldKey, value string) {
	c.Fields[key] = value
	c.LightFields[key.Name] = value
}

func (c *ClassEntry) putMethod(key MethodKey, value string) {
	c.Methods[key] = value
	c.LightMethods[key.Name] = value
}

// Table is the symbol table for one invocation.
type Table struct {
	primary   map[string]*ClassEntry // original -> obfuscated
	community map[string]*ClassEntry // obfuscated -> community
	reverse   map[string]*ClassEntry // community -> same entry as community[obf]

	primaryLoaded   bool
	communityLoaded bool
}

// New creates an empty table.
func New() *Table {
	return &Table{
		primary:   make(map[string]*ClassEntry),
		community: make(map[string]*ClassEntry),
		reverse:   make(map[string]*ClassEntry),
	}
}

// Original returns the primary entry for an original class name.
func (t *Table) Original(name string) (*ClassEntry, bool) {
	e, ok := t.primary[name]
	return e, ok
}

// Community returns the community entry for an obfuscated class name.
func (t *Table) Community(obfuscated string) (*ClassEntry, bool) {
	e, ok := t.community[dotted(obfuscated)]
	return e, ok
}

// CommunityByName returns the community entry registered under a community class name.
func (t *Table) CommunityByName(name string) (*ClassEntry, bool) {
	e, ok := t.reverse[dotted(name)]
	return e, ok
}

// Stats summarizes the table contents.
type Stats struct {
	PrimaryClasses   int
	PrimaryMethods   int
	PrimaryFields    int
	CommunityClasses int
	CommunityMethods int
	CommunityFields  int
}

// Stats counts classes and members in both tables.
func (t *Table) Stats() Stats {
	var s Stats
	s.PrimaryClasses = len(t.primary)
	for _, e := range t.primary {
		s.PrimaryMethods += len(e.LightMethods)
		s.PrimaryFields += len(e.LightFields)
	}
	s.CommunityClasses = len(t.community)
	for _, e := range t.community {
		s.CommunityMethods += len(e.LightMethods)
		s.CommunityFields += len(e.LightFields)
	}
	return s
}

func dotted(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}
