package identity

import (
	"sort"
	"strings"
)

// Account is the primary identity tracked by the coordinator. The friend
// graph is stored as adjacency sets on both endpoints; every transition must
// keep the edges symmetric.
type Account struct {
	Username   string
	Credential string
	Friends    Set
	Incoming   Set
	Outgoing   Set
}

func newAccount(username string) *Account {
	return &Account{
		Username: username,
		Friends:  Set{},
		Incoming: Set{},
		Outgoing: Set{},
	}
}

// Clone deep-copies the account so exported state never aliases live maps.
func (a *Account) Clone() Account {
	return Account{
		Username:   a.Username,
		Credential: a.Credential,
		Friends:    a.Friends.Clone(),
		Incoming:   a.Incoming.Clone(),
		Outgoing:   a.Outgoing.Clone(),
	}
}

// Set is a plain string set used for friend-graph edges.
type Set map[string]struct{}

func (s Set) Has(v string) bool { _, ok := s[v]; return ok }

func (s Set) Add(v string) { s[v] = struct{}{} }

func (s Set) Remove(v string) { delete(s, v) }

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexical order for stable API responses.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// SetOf builds a Set from a slice, used when importing persisted state.
func SetOf(members []string) Set {
	out := make(Set, len(members))
	for _, m := range members {
		out[m] = struct{}{}
	}
	return out
}

// NormalizeUsername canonicalizes an identity key. Applied exactly once at
// every boundary entry; downstream code assumes already-normalized keys.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
