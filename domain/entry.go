package domain

import "time"

// ChatEntry is one persisted line of chat, human or automated.
// Immutable once appended. Seq is assigned by the history store at
// append time and is strictly increasing.
type ChatEntry struct {
	Seq       uint64
	Author    string
	Text      string
	Lang      string
	CreatedAt time.Time
}
