package resolver

import (
	"fmt"
	"strings"
)

// Goal is the naming scheme a lookup resolves into. Goals form a chain of
// increasing translation depth.
type Goal int

const (
	// Original returns names exactly as written in the reference.
	Original Goal = iota
	// Obfuscated translates through the primary table.
	Obfuscated
	// Community translates through the primary table and then the community table.
	Community
	// CommunityMembers resolves like Community. It is used by builds that
	// rename classes with a lighter scheme elsewhere and only want member
	// names from the community tables.
	CommunityMembers
)

var goalNames = [...]string{
	Original:         "ORIGINAL",
	Obfuscated:       "OBFUSCATED",
	Community:        "COMMUNITY",
	CommunityMembers: "COMMUNITY_MEMBERS",
}

func (g Goal) String() string {
	if g < 0 || int(g) >= len(goalNames) {
		return fmt.Sprintf("Goal(%d)", int(g))
	}
	return goalNames[g]
}

// ParseGoal parses a goal name. Matching is case-insensitive, '-' and '_'
// are interchangeable, and the mojang/spigot aliases are accepted.
func ParseGoal(s string) (Goal, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "original", "mojang":
		return Original, nil
	case "obfuscated":
		return Obfuscated, nil
	case "community", "spigot":
		return Community, nil
	case "community_members", "spigot_members":
		return CommunityMembers, nil
	}
	return 0, fmt.Errorf("unknown remap goal %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (g Goal) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(g.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so goals can be read from config files.
func (g *Goal) UnmarshalText(text []byte) error {
	parsed, err := ParseGoal(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

func (g Goal) usesCommunity() bool {
	return g == Community || g == CommunityMembers
}
