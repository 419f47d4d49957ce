package entry

import (
	"fmt"
	"slices"
)

// ChangeKind describes how a list was mutated.
type ChangeKind int

const (
	ChangeAdd ChangeKind = iota
	ChangeRemove
	ChangeReplace
	ChangeReset
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "add"
	case ChangeRemove:
		return "remove"
	case ChangeReplace:
		return "replace"
	case ChangeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Change is delivered to listeners after each mutation.
// Index is the affected position, or -1 for ChangeReset.
type Change struct {
	Kind  ChangeKind
	Index int
}

type listener struct {
	id int
	fn func(Change)
}

// UniqueList is an ordered list in which no two elements are the same entry.
// Insertion order is kept; sorted projections are computed on demand and
// never reorder the backing slice.
//
// The list is not safe for concurrent use.
type UniqueList[T Entry[T]] struct {
	items     []T
	listeners []listener
	nextID    int
}

// NewUniqueList returns an empty list.
func NewUniqueList[T Entry[T]]() *UniqueList[T] {
	return &UniqueList[T]{}
}

// Len returns the number of stored entries, archived ones included.
func (l *UniqueList[T]) Len() int {
	return len(l.items)
}

func (l *UniqueList[T]) indexOf(e T) int {
	return slices.IndexFunc(l.items, func(x T) bool { return x.IsSameEntry(e) })
}

// Contains reports whether an entry with the same identity as e is stored.
// A nil entry is never stored.
func (l *UniqueList[T]) Contains(e T) bool {
	return !IsNil(e) && l.indexOf(e) >= 0
}

// Get returns the stored entry with the same identity as key.
func (l *UniqueList[T]) Get(key T) (T, bool) {
	if i := l.indexOf(key); i >= 0 {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// Add appends e. It fails with ErrDuplicateEntry if e is already present.
func (l *UniqueList[T]) Add(e T) error {
	if IsNil(e) {
		return ErrNilArgument
	}
	if l.Contains(e) {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, e.DisplayName())
	}
	l.items = append(l.items, e)
	l.notify(Change{Kind: ChangeAdd, Index: len(l.items) - 1})
	return nil
}

// SetEntry replaces target with edited at the same position.
// edited may share target's identity but not the identity of any other element.
func (l *UniqueList[T]) SetEntry(target, edited T) error {
	if IsNil(target) || IsNil(edited) {
		return ErrNilArgument
	}
	i := l.indexOf(target)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, target.DisplayName())
	}
	for j, x := range l.items {
		if j != i && x.IsSameEntry(edited) {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, edited.DisplayName())
		}
	}
	l.items[i] = edited
	l.notify(Change{Kind: ChangeReplace, Index: i})
	return nil
}

// Remove deletes the entry with the same identity as key.
func (l *UniqueList[T]) Remove(key T) error {
	if IsNil(key) {
		return ErrNilArgument
	}
	i := l.indexOf(key)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, key.DisplayName())
	}
	l.items = slices.Delete(l.items, i, i+1)
	l.notify(Change{Kind: ChangeRemove, Index: i})
	return nil
}

// Archive marks the entry with the same identity as key as archived.
// Archiving an archived entry succeeds without notifying listeners.
func (l *UniqueList[T]) Archive(key T) error {
	if IsNil(key) {
		return ErrNilArgument
	}
	i := l.indexOf(key)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, key.DisplayName())
	}
	if l.items[i].IsArchived() {
		return nil
	}
	l.items[i] = l.items[i].WithArchived(true)
	l.notify(Change{Kind: ChangeReplace, Index: i})
	return nil
}

// SetEntries replaces the whole content with entries, keeping their order.
// The list is left untouched if entries holds a nil or two same entries.
func (l *UniqueList[T]) SetEntries(entries []T) error {
	for i, e := range entries {
		if IsNil(e) {
			return fmt.Errorf("%w: element %d", ErrNilArgument, i)
		}
	}
	if err := CheckUnique(entries); err != nil {
		return err
	}
	l.items = slices.Clone(entries)
	l.notify(Change{Kind: ChangeReset, Index: -1})
	return nil
}

// CheckUnique fails with ErrDuplicateEntry if two entries share an identity.
func CheckUnique[T Entry[T]](entries []T) error {
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].IsSameEntry(entries[j]) {
				return fmt.Errorf("%w: %s", ErrDuplicateEntry, entries[j].DisplayName())
			}
		}
	}
	return nil
}

// UpdateCompanyNames rewrites the company reference of every element pointing
// at oldName. Lists whose entries carry no company reference are left alone.
// It returns the number of rewritten entries.
func (l *UniqueList[T]) UpdateCompanyNames(oldName, newName string) int {
	updated := 0
	for i, e := range l.items {
		ref, ok := any(e).(CompanyReferrer[T])
		if !ok {
			return 0
		}
		renamed, changed := ref.WithCompanyRenamed(oldName, newName)
		if !changed {
			continue
		}
		l.items[i] = renamed
		updated++
		l.notify(Change{Kind: ChangeReplace, Index: i})
	}
	return updated
}

// Items returns a snapshot copy of the entries in insertion order.
func (l *UniqueList[T]) Items() []T {
	return slices.Clone(l.items)
}

// Sorted returns a new slice ordered by cmp. Ties keep insertion order.
func (l *UniqueList[T]) Sorted(cmp Comparator[T]) []T {
	out := slices.Clone(l.items)
	slices.SortStableFunc(out, cmp)
	return out
}

// ReversedSorted returns a new slice ordered by the reverse of cmp.
func (l *UniqueList[T]) ReversedSorted(cmp Comparator[T]) []T {
	return l.Sorted(cmp.Reversed())
}

// Equal reports whether both lists hold fully equal entries in the same order.
func (l *UniqueList[T]) Equal(other *UniqueList[T]) bool {
	if other == nil {
		return false
	}
	return slices.EqualFunc(l.items, other.items, func(a, b T) bool { return a.Equal(b) })
}

// Subscribe registers fn to run synchronously after every mutation.
// The returned function removes the subscription.
func (l *UniqueList[T]) Subscribe(fn func(Change)) (cancel func()) {
	l.nextID++
	id := l.nextID
	l.listeners = append(l.listeners, listener{id: id, fn: fn})
	return func() {
		l.listeners = slices.DeleteFunc(l.listeners, func(x listener) bool { return x.id == id })
	}
}

func (l *UniqueList[T]) notify(c Change) {
	for _, ln := range slices.Clone(l.listeners) {
		ln.fn(c)
	}
}

// View returns a live read-only view of the list.
func (l *UniqueList[T]) View() View[T] {
	return View[T]{list: l}
}

// View is a read-only window onto a UniqueList. It always reflects the
// current content of the list it was taken from.
type View[T Entry[T]] struct {
	list *UniqueList[T]
}

func (v View[T]) Len() int { return v.list.Len() }

// At returns the entry at index i in insertion order.
func (v View[T]) At(i int) T { return v.list.items[i] }

// Items returns a snapshot copy of the current content.
func (v View[T]) Items() []T { return v.list.Items() }

// Subscribe registers a change listener on the underlying list.
func (v View[T]) Subscribe(fn func(Change)) (cancel func()) {
	return v.list.Subscribe(fn)
}
