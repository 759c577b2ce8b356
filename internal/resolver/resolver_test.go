package resolver

import (
	"strings"
	"testing"

	"srmap/internal/mappings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const primary = `a.b.Foo -> x.y.A:
    int bar() -> z
    void run(a.b.Foo,int) -> r
    void run(java.lang.String) -> s
    int count -> c
    java.lang.String label -> l
    a.b.Foo[] siblings -> t
a.b.Foo$Inner -> x.y.A$1:
    int depth -> d
a.b.Plain -> p:
    void tick() -> k
`

const communityClasses = `x.y.A x/y/B
`

const communityMembers = `x.y.A z ()I baz
x/y/B r (Lx/y/B;I)V runWith
x.y.B s (Ljava/lang/String;)V runNamed
x.y.A c amount
`

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	tbl := mappings.New()
	_, err := tbl.LoadPrimary(strings.Split(primary, "\n"))
	require.NoError(t, err)
	_, err = tbl.LoadCommunity(strings.Split(communityClasses, "\n"), strings.Split(communityMembers, "\n"))
	require.NoError(t, err)
	return New(tbl)
}

func TestResolver_EndToEnd(t *testing.T) {
	r := newTestResolver(t)

	name, err := r.Method("a.b.Foo bar", Obfuscated)
	require.NoError(t, err)
	assert.Equal(t, "z", name)

	name, err = r.Method("a.b.Foo bar", Community)
	require.NoError(t, err)
	assert.Equal(t, "baz", name)

	name, err = r.Class("a.b.Foo", Community)
	require.NoError(t, err)
	assert.Equal(t, "x.y.B", name)
}

func TestResolver_Identity(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		kind Kind
		ref  string
		want string
	}{
		{KindClass, "a.b.Foo", "a.b.Foo"},
		{KindMethod, "a.b.Foo bar", "bar"},
		{KindMethod, "a.b.Foo void run(java.lang.String)", "run"},
		{KindField, "a.b.Foo count", "count"},
		{KindField, "a.b.Foo int count", "count"},
		// Original never consults the tables.
		{KindClass, "not.Mapped", "not.Mapped"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := r.Resolve(tt.kind, tt.ref, Original)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_Goals(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name string
		kind Kind
		ref  string
		goal Goal
		want string
	}{
		{"class obfuscated", KindClass, "a.b.Foo", Obfuscated, "x.y.A"},
		{"class members goal", KindClass, "a.b.Foo", CommunityMembers, "x.y.B"},
		{"overload by signature", KindMethod, "a.b.Foo void run(java.lang.String)", Obfuscated, "s"},
		{"overload translated params", KindMethod, "a.b.Foo void run(a.b.Foo,int)", Community, "runWith"},
		{"overload primitive params", KindMethod, "a.b.Foo void run(java.lang.String)", CommunityMembers, "runNamed"},
		{"light method members goal", KindMethod, "a.b.Foo bar", CommunityMembers, "baz"},
		{"full field obfuscated", KindField, "a.b.Foo int count", Obfuscated, "c"},
		{"full field community", KindField, "a.b.Foo int count", Community, "amount"},
		{"light field community", KindField, "a.b.Foo count", Community, "amount"},
		{"array typed field", KindField, "a.b.Foo a.b.Foo[] siblings", Obfuscated, "t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.kind, tt.ref, tt.goal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_CommunityFallback(t *testing.T) {
	r := newTestResolver(t)

	t.Run("Member without community entry", func(t *testing.T) {
		got, err := r.Field("a.b.Foo label", Community)
		require.NoError(t, err)
		assert.Equal(t, "l", got)
	})

	t.Run("Owner without community entry", func(t *testing.T) {
		got, err := r.Method("a.b.Plain tick", Community)
		require.NoError(t, err)
		assert.Equal(t, "k", got)

		got, err = r.Class("a.b.Plain", Community)
		require.NoError(t, err)
		assert.Equal(t, "p", got)
	})

	t.Run("Inner class takes outer community name", func(t *testing.T) {
		got, err := r.Class("a.b.Foo$Inner", Community)
		require.NoError(t, err)
		assert.Equal(t, "x.y.B$1", got)

		got, err = r.Field("a.b.Foo$Inner depth", Community)
		require.NoError(t, err)
		assert.Equal(t, "d", got)
	})
}

func TestResolver_InnerClassOfUnqualifiedName(t *testing.T) {
	tbl := mappings.New()
	_, err := tbl.LoadPrimary([]string{"a.b.Foo -> x:", "a.b.Foo$1 -> x$1:", "a.b.Foo$1$2 -> x$1$2:"})
	require.NoError(t, err)
	_, err = tbl.LoadCommunity([]string{"x x/y/B"}, nil)
	require.NoError(t, err)
	r := New(tbl)

	got, err := r.Class("a.b.Foo$1", Community)
	require.NoError(t, err)
	assert.Equal(t, "x.y.B$1", got)

	got, err = r.Class("a.b.Foo$1$2", Community)
	require.NoError(t, err)
	assert.Equal(t, "x.y.B$1$2", got)
}

func TestResolver_RoundTrip(t *testing.T) {
	r := newTestResolver(t)

	owner, err := r.Class("a.b.Foo", Obfuscated)
	require.NoError(t, err)
	member, err := r.Method("a.b.Foo bar", Obfuscated)
	require.NoError(t, err)

	entry, ok := r.table.Community(owner)
	require.True(t, ok)

	direct, err := r.Method("a.b.Foo bar", Community)
	require.NoError(t, err)
	assert.Equal(t, entry.LightMethods[member], direct)
}

func TestResolver_Errors(t *testing.T) {
	r := newTestResolver(t)

	t.Run("Malformed", func(t *testing.T) {
		for _, tc := range []struct {
			kind Kind
			ref  string
		}{
			{KindClass, "a.b.Foo bar"},
			{KindMethod, "a.b.Foo"},
			{KindMethod, "a.b.Foo int bar(int"},
			{KindField, "a b c d"},
			{KindField, ""},
		} {
			_, err := r.Resolve(tc.kind, tc.ref, Original)
			assert.ErrorIs(t, err, ErrMalformedReference, tc.ref)
		}
	})

	t.Run("Unknown owner", func(t *testing.T) {
		_, err := r.Method("a.b.Missing bar", Obfuscated)
		require.ErrorIs(t, err, ErrUnresolvedSymbol)

		var lerr *LookupError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, HopPrimaryOwner, lerr.Hop)
		assert.Equal(t, "a.b.Missing", lerr.Symbol)
		assert.Contains(t, err.Error(), "primary owner")
	})

	t.Run("Unknown member", func(t *testing.T) {
		_, err := r.Field("a.b.Foo long count", Community)
		require.ErrorIs(t, err, ErrUnresolvedSymbol)

		var lerr *LookupError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, HopPrimaryMember, lerr.Hop)
	})

	t.Run("Unknown class", func(t *testing.T) {
		_, err := r.Class("a.b.Missing", Community)
		assert.ErrorIs(t, err, ErrUnresolvedSymbol)
	})
}

func TestParseGoal(t *testing.T) {
	tests := map[string]Goal{
		"original":          Original,
		"MOJANG":            Original,
		"obfuscated":        Obfuscated,
		"Spigot":            Community,
		"community":         Community,
		"community-members": CommunityMembers,
		"SPIGOT_MEMBERS":    CommunityMembers,
	}
	for in, want := range tests {
		got, err := ParseGoal(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseGoal("yarn")
	assert.Error(t, err)

	assert.Equal(t, "COMMUNITY_MEMBERS", CommunityMembers.String())
	assert.Equal(t, "Goal(9)", Goal(9).String())
}
