// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Competitor identifies one member of the roster.
type Competitor string

// DefaultRosterNames is the roster used when none is configured.
var DefaultRosterNames = []string{
	"Bậc Thầy Tấn Công",
	"Quyền Sát",
	"Thợ Lặn Sâu",
	"Cơn Lốc Sân Cỏ",
	"Hiệp Sĩ Phi Nhanh",
	"Vua Home Run",
}

// Roster is the fixed, ordered set of competitors the system considers.
// The zero value is an empty roster.
type Roster struct {
	members []Competitor
	index   map[Competitor]int
}

// NewRoster builds a roster from names, preserving their order.
// Names are trimmed; empty and duplicate names are rejected.
func NewRoster(names ...string) (Roster, error) {
	if len(names) == 0 {
		return Roster{}, fmt.Errorf("%w: roster is empty", ErrInvalidRoster)
	}
	r := Roster{
		members: make([]Competitor, 0, len(names)),
		index:   make(map[Competitor]int, len(names)),
	}
	for _, name := range names {
		c := Competitor(strings.TrimSpace(name))
		if c == "" {
			return Roster{}, fmt.Errorf("%w: empty competitor name", ErrInvalidRoster)
		}
		if _, dup := r.index[c]; dup {
			return Roster{}, fmt.Errorf("%w: duplicate competitor %q", ErrInvalidRoster, c)
		}
		r.index[c] = len(r.members)
		r.members = append(r.members, c)
	}
	return r, nil
}

// DefaultRoster returns the built-in six-member roster.
func DefaultRoster() Roster {
	r, err := NewRoster(DefaultRosterNames...)
	if err != nil {
		panic(err)
	}
	return r
}

// Members returns a copy of the roster in order.
func (r Roster) Members() []Competitor {
	out := make([]Competitor, len(r.members))
	copy(out, r.members)
	return out
}

// Names returns the roster as plain strings, in order.
func (r Roster) Names() []string {
	out := make([]string, len(r.members))
	for i, c := range r.members {
		out[i] = string(c)
	}
	return out
}

// Len returns the number of competitors.
func (r Roster) Len() int { return len(r.members) }

// Contains reports whether c is a roster member.
func (r Roster) Contains(c Competitor) bool {
	_, ok := r.index[c]
	return ok
}

// Index returns the position of c in the roster, or -1.
func (r Roster) Index(c Competitor) int {
	if i, ok := r.index[c]; ok {
		return i
	}
	return -1
}

// Competitors converts names to competitor identifiers without validation.
func Competitors(names ...string) []Competitor {
	out := make([]Competitor, len(names))
	for i, n := range names {
		out[i] = Competitor(n)
	}
	return out
}
