package mappings

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Primary (original <-> obfuscated) grammar.
var (
	primaryClassPattern  = regexp.MustCompile(`^([\w.$]+) -> ([\w.$]+):$`)
	primaryFieldPattern  = regexp.MustCompile(`^ {4}[\d:]*([\w.$\[\]]+) ([\w$]+) -> ([\w$]+)$`)
	primaryMethodPattern = regexp.MustCompile(`^ {4}[\d:]*([\w.$\[\]]+) ([\w$]+)\(([\w.,$\[\]]*)\)[\d:]* -> ([\w$]+)$`)
)

// Community (obfuscated <-> community) grammars.
var (
	communityClassPattern  = regexp.MustCompile(`^([\w/.$]+) ([\w/.$]+)$`)
	communityMethodPattern = regexp.MustCompile(`^([\w/.$]+) ([\w$]+) (\([\w/$\[\];]*\)[\w/$\[\];]+) ([\w$]+)$`)
	communityFieldPattern  = regexp.MustCompile(`^([\w/.$]+) ([\w$]+) ([\w$]+)$`)
)

// LoadStats counts how the lines of one load call were consumed.
type LoadStats struct {
	Applied int // matched a rule and changed the table
	Ignored int // matched a rule but had no usable context (no header, unknown owner, bad descriptor)
	Skipped int // matched no rule
}

func (s LoadStats) add(o LoadStats) LoadStats {
	return LoadStats{
		Applied: s.Applied + o.Applied,
		Ignored: s.Ignored + o.Ignored,
		Skipped: s.Skipped + o.Skipped,
	}
}

// lineRule is one line shape of a grammar. apply reports whether the
// matched line was recorded.
type lineRule struct {
	pattern *regexp.Regexp
	apply   func(m []string) bool
}

func runRules(lines []string, rules []lineRule) LoadStats {
	var stats LoadStats
	for _, line := range lines {
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		matched := false
		for _, r := range rules {
			m := r.pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			matched = true
			if r.apply(m) {
				stats.Applied++
			} else {
				stats.Ignored++
			}
			break
		}
		if !matched {
			stats.Skipped++
		}
	}
	return stats
}

// LoadPrimary parses original <-> obfuscated mappings in the ProGuard
// layout: a "Original -> obf:" header followed by 4-space indented field
// and method lines belonging to it.
func (t *Table) LoadPrimary(lines []string) (LoadStats, error) {
	if t.primaryLoaded {
		return LoadStats{}, fmt.Errorf("primary: %w", ErrAlreadyLoaded)
	}
	t.primaryLoaded = true

	var current *ClassEntry
	rules := []lineRule{
		{primaryClassPattern, func(m []string) bool {
			current = newClassEntry(m[2])
			t.primary[m[1]] = current
			return true
		}},
		{primaryFieldPattern, func(m []string) bool {
			if current == nil {
				return false
			}
			current.putField(FieldKey{Name: m[2], Type: m[1]}, m[3])
			return true
		}},
		{primaryMethodPattern, func(m []string) bool {
			if current == nil {
				return false
			}
			current.putMethod(MethodKey{Name: m[2], ReturnType: m[1], Parameters: m[3]}, m[4])
			return true
		}},
	}

	return runRules(lines, rules), nil
}

// LoadCommunity parses obfuscated <-> community mappings. All class lines
// are applied before any member line, because member lines name their owner
// by a class that must already be known.
func (t *Table) LoadCommunity(classLines, memberLines []string) (LoadStats, error) {
	if t.communityLoaded {
		return LoadStats{}, fmt.Errorf("community: %w", ErrAlreadyLoaded)
	}
	t.communityLoaded = true

	classStats := runRules(classLines, []lineRule{
		{communityClassPattern, func(m []string) bool {
			obfuscated, community := dotted(m[1]), dotted(m[2])
			e := newClassEntry(community)
			t.community[obfuscated] = e
			t.reverse[community] = e
			return true
		}},
	})

	memberStats := runRules(memberLines, []lineRule{
		{communityMethodPattern, func(m []string) bool {
			owner, ok := t.memberOwner(m[1])
			if !ok {
				return false
			}
			desc, err := ParseMethodDescriptor(m[3])
			if err != nil {
				return false
			}
			owner.putMethod(MethodKey{Name: m[2], ReturnType: desc.ReturnType, Parameters: desc.JoinedParameters()}, m[4])
			return true
		}},
		{communityFieldPattern, func(m []string) bool {
			owner, ok := t.memberOwner(m[1])
			if !ok {
				return false
			}
			owner.LightFields[m[2]] = m[3]
			return true
		}},
	})

	return classStats.add(memberStats), nil
}

// memberOwner finds the community entry a member line belongs to. Member
// files usually name the owner by its community name; obfuscated owners are
// accepted as well.
func (t *Table) memberOwner(name string) (*ClassEntry, bool) {
	if e, ok := t.CommunityByName(name); ok {
		return e, true
	}
	return t.Community(name)
}

// ReadLines splits a mapping stream into lines.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mappings: %w", err)
	}
	return lines, nil
}
