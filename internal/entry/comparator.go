package entry

import (
	"cmp"
	"strings"
)

// Comparator orders two entries of the same kind, returning a negative number,
// zero or a positive number like cmp.Compare.
type Comparator[T any] func(a, b T) int

// Reversed returns the comparator with its order flipped.
func (c Comparator[T]) Reversed() Comparator[T] {
	return func(a, b T) int { return c(b, a) }
}

// PersonsByName orders persons by name, ignoring case first.
var PersonsByName Comparator[*Person] = func(a, b *Person) int {
	return compareNames(a.Name, b.Name)
}

// CompaniesByName orders companies by name, ignoring case first.
var CompaniesByName Comparator[*Company] = func(a, b *Company) int {
	return compareNames(a.Name, b.Name)
}

// EventsByDate orders events chronologically.
var EventsByDate Comparator[*Event] = func(a, b *Event) int {
	return a.Date.Compare(b.Date)
}

func compareNames(a, b string) int {
	return cmp.Or(
		strings.Compare(strings.ToLower(a), strings.ToLower(b)),
		strings.Compare(a, b),
	)
}
