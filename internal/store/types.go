// Package store provides the SQLite learning store: which candidate the
// user picked for a reading, and which whole phrases they committed.
package store

import "time"

// Selection is a learned candidate for a reading.
type Selection struct {
	Reading  string
	Word     string
	Count    int
	LastUsed time.Time
}

// Phrase is a committed phrase offered back as a prediction.
type Phrase struct {
	Reading  string
	Text     string
	Count    int
	LastUsed time.Time
}
