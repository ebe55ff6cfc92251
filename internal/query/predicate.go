// Package query holds the predicate objects the services build before asking
// a store for matching records. Each store translates them into its own
// filter language; Match evaluates them in process.
package query

import (
	"strings"
)

const (
	FieldID         = "id"
	FieldIdentifier = "identifier"
	FieldOwner      = "owner_id"
	FieldCategory   = "category"
	FieldPublic     = "public"
	FieldGoogleID   = "google_id"
	FieldEmail      = "email"
)

type Predicate interface {
	predicate()
}

// Eq matches records whose Field equals Value.
type Eq struct {
	Field string
	Value any
}

type And []Predicate

type Or []Predicate

func (Eq) predicate()  {}
func (And) predicate() {}
func (Or) predicate()  {}

// Record is anything that can report the value of a queryable field.
type Record interface {
	Field(name string) (any, bool)
}

// Match evaluates p against r. A nil predicate matches everything, an empty
// And matches everything and an empty Or matches nothing.
func Match(p Predicate, r Record) bool {
	switch p := p.(type) {
	case nil:
		return true
	case Eq:
		v, ok := r.Field(p.Field)
		return ok && v == p.Value
	case And:
		for _, sub := range p {
			if !Match(sub, r) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range p {
			if Match(sub, r) {
				return true
			}
		}
		return false
	}
	return false
}

// SQL renders p as a WHERE fragment with ? placeholders, the form gorm's
// Where accepts. Column names come from the Field constants and are quoted.
func SQL(p Predicate) (string, []any) {
	switch p := p.(type) {
	case nil:
		return "TRUE", nil
	case Eq:
		return `"` + p.Field + `" = ?`, []any{p.Value}
	case And:
		return join(p, " AND ", "TRUE")
	case Or:
		return join(p, " OR ", "FALSE")
	}
	return "FALSE", nil
}

func join(ps []Predicate, sep, empty string) (string, []any) {
	if len(ps) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(ps))
	var args []any
	for _, sub := range ps {
		s, a := SQL(sub)
		parts = append(parts, s)
		args = append(args, a...)
	}
	return "(" + strings.Join(parts, sep) + ")", args
}
