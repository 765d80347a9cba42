package domain

// RoboChatter is a configured synthetic persona able to author chat
// messages through the external text generator.
type RoboChatter struct {
	ID          int
	Name        string
	Description string
	Enabled     bool
}
