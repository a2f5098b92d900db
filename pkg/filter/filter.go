// Package filter implements the device-selection clause language.
//
// A clause has the form "key=value" or "key=value1|value2|..." where
// pipe-separated values combine with OR. Multiple clauses combine with
// AND. Predicates evaluate against a host's attribute map; a missing
// attribute key never matches.
package filter

import (
	"fmt"
	"strings"
)

// NoFiltersText is the display form of an empty clause list.
const NoFiltersText = "No filters applied"

// Predicate is a compiled filter expression evaluated against host attributes.
type Predicate interface {
	Matches(attrs map[string]string) bool
}

// SyntaxError describes an invalid filter clause.
type SyntaxError struct {
	Clause string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid filter syntax: %s in clause %q", e.Reason, e.Clause)
}

// equals matches hosts whose attribute Key equals Value.
type equals struct {
	Key   string
	Value string
}

func (p equals) Matches(attrs map[string]string) bool {
	v, ok := attrs[p.Key]
	return ok && v == p.Value
}

// anyOf matches if any child predicate matches (OR).
type anyOf struct {
	children []Predicate
}

func (p anyOf) Matches(attrs map[string]string) bool {
	for _, c := range p.children {
		if c.Matches(attrs) {
			return true
		}
	}
	return false
}

// allOf matches if every child predicate matches (AND).
type allOf struct {
	children []Predicate
}

func (p allOf) Matches(attrs map[string]string) bool {
	for _, c := range p.children {
		if !c.Matches(attrs) {
			return false
		}
	}
	return true
}

// ParseClause parses a single clause into a predicate.
func ParseClause(clause string) (Predicate, error) {
	key, value, found := strings.Cut(clause, "=")
	if !found {
		return nil, &SyntaxError{Clause: clause, Reason: "missing '='"}
	}

	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	if key == "" {
		return nil, &SyntaxError{Clause: clause, Reason: "empty key"}
	}
	if value == "" {
		return nil, &SyntaxError{Clause: clause, Reason: "empty value"}
	}

	if strings.Contains(value, "|") {
		var children []Predicate
		for _, v := range strings.Split(value, "|") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			children = append(children, equals{Key: key, Value: v})
		}
		if len(children) == 0 {
			return nil, &SyntaxError{Clause: clause, Reason: "no valid values in OR expression"}
		}
		return anyOf{children: children}, nil
	}

	return equals{Key: key, Value: value}, nil
}

// Parse parses a list of clauses and combines them with AND.
// Returns nil (match-all is the caller's concern) for an empty list.
func Parse(clauses []string) (Predicate, error) {
	if len(clauses) == 0 {
		return nil, nil
	}

	children := make([]Predicate, 0, len(clauses))
	for _, clause := range clauses {
		p, err := ParseClause(clause)
		if err != nil {
			return nil, err
		}
		children = append(children, p)
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return allOf{children: children}, nil
}

// Format returns the human-readable form of a clause list: the clauses
// joined verbatim with " AND ". An empty list yields NoFiltersText.
func Format(clauses []string) string {
	if len(clauses) == 0 {
		return NoFiltersText
	}
	return strings.Join(clauses, " AND ")
}
