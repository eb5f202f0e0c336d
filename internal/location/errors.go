package location

import (
	"fmt"
	"strings"
)

// Kind is the kind of location being resolved.
type Kind string

const (
	KindCity      Kind = "city"
	KindCommunity Kind = "community"
)

// NotFoundError means no location matched the name.
type NotFoundError struct {
	Kind        Kind
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf("; did you mean %s?", quoteJoin(e.Suggestions, " or "))
	}
	return msg
}

// AmbiguousError means more than one location matched and nothing in the
// row tells them apart. The resolver never picks one of them.
type AmbiguousError struct {
	Kind Kind
	Name string
	// Candidates are the parent cities of the exact matches, or the names of
	// the partial matches when Partial is set.
	Candidates []string
	Partial    bool
}

func (e *AmbiguousError) Error() string {
	if e.Partial {
		return fmt.Sprintf("%s '%s' is ambiguous: it partially matches %s; use the exact %s name to disambiguate",
			e.Kind, e.Name, quoteJoin(e.Candidates, ", "), e.Kind)
	}
	if e.Kind == KindCity {
		return fmt.Sprintf("city '%s' is ambiguous: it matches %s", e.Name, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("community '%s' is ambiguous: it exists in %s; add an Assignment City column to disambiguate",
		e.Name, strings.Join(e.Candidates, ", "))
}

// NotInCityError means the community exists, but not in the requested city.
type NotInCityError struct {
	Name    string
	City    string
	FoundIn []string
}

func (e *NotInCityError) Error() string {
	return fmt.Sprintf("community '%s' was found in %s but not in city '%s'",
		e.Name, strings.Join(e.FoundIn, ", "), e.City)
}

func quoteJoin(items []string, sep string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return strings.Join(quoted, sep)
}
