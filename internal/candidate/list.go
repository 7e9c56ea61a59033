// Package candidate implements the paged candidate cursor shown to the user
// while converting.
package candidate

import "slices"

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 10

// List is a paged cursor over candidate texts. The cursor never wraps.
type List struct {
	items    []string
	cursor   int
	pageSize int
	visible  bool
}

// New creates an empty list with the given page size.
func New(pageSize int) *List {
	l := &List{}
	l.SetPageSize(pageSize)
	return l
}

// SetPageSize changes the page size.
func (l *List) SetPageSize(n int) {
	if n <= 0 {
		n = DefaultPageSize
	}
	l.pageSize = n
}

// PageSize returns the page size.
func (l *List) PageSize() int { return l.pageSize }

// Fill replaces the contents, resets the cursor and hides the list.
func (l *List) Fill(items []string) {
	l.items = slices.Clone(items)
	l.cursor = 0
	l.visible = false
}

// Clear empties and hides the list.
func (l *List) Clear() {
	l.Fill(nil)
}

// Len returns the number of candidates.
func (l *List) Len() int { return len(l.items) }

// Items returns the candidates. The slice must not be modified.
func (l *List) Items() []string { return l.items }

// Cursor returns the cursor position.
func (l *List) Cursor() int { return l.cursor }

// Visible reports whether the list is shown.
func (l *List) Visible() bool { return l.visible }

// Show shows the list. An empty list stays hidden.
func (l *List) Show() {
	l.visible = len(l.items) > 0
}

// Hide hides the list.
func (l *List) Hide() { l.visible = false }

// Current returns the cursor position and the text under it.
func (l *List) Current() (int, string, bool) {
	if len(l.items) == 0 {
		return 0, "", false
	}
	return l.cursor, l.items[l.cursor], true
}

// CursorUp moves the cursor up one entry.
func (l *List) CursorUp() bool {
	if l.cursor <= 0 {
		return false
	}
	l.cursor--
	return true
}

// CursorDown moves the cursor down one entry.
func (l *List) CursorDown() bool {
	if l.cursor+1 >= len(l.items) {
		return false
	}
	l.cursor++
	return true
}

// PageUp moves the cursor one page up, clamped to the first entry.
func (l *List) PageUp() bool {
	if l.cursor == 0 {
		return false
	}
	l.cursor = max(l.cursor-l.pageSize, 0)
	return true
}

// PageDown moves the cursor one page down, clamped to the last entry.
func (l *List) PageDown() bool {
	last := len(l.items) - 1
	if l.cursor >= last {
		return false
	}
	l.cursor = min(l.cursor+l.pageSize, last)
	return true
}

// SetCursor moves the cursor to an absolute index.
func (l *List) SetCursor(i int) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.cursor = i
	return true
}

// Select moves the cursor to index i of the current page. It fails if i
// lies outside the page or the page has fewer entries.
func (l *List) Select(i int) bool {
	if i < 0 || i >= l.pageSize {
		return false
	}
	return l.SetCursor(l.PageStart() + i)
}

// PageStart returns the index of the first entry on the current page.
func (l *List) PageStart() int {
	return l.cursor / l.pageSize * l.pageSize
}

// Page returns the entries of the current page and the cursor offset
// within it.
func (l *List) Page() ([]string, int) {
	start := l.PageStart()
	end := min(start+l.pageSize, len(l.items))
	if start >= end {
		return nil, 0
	}
	return l.items[start:end], l.cursor - start
}

// Clone returns an independent copy.
func (l *List) Clone() *List {
	c := *l
	c.items = slices.Clone(l.items)
	return &c
}
