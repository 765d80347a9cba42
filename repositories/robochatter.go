//go:generate go run go.uber.org/mock/mockgen -source=robochatter.go -destination=../mocks/mock_robochatter_repository.go -package=mocks
package repositories

import (
	"sync"

	"github.com/samber/lo"

	"radchat/domain"
	"radchat/errors"
)

type IRobotRoster interface {
	List() []domain.RoboChatter
	Get(id int) (domain.RoboChatter, error)
	Toggle(id int) (domain.RoboChatter, error)
	Enabled() []domain.RoboChatter
	SetAllEnabled(enabled bool)
}

// RobotRoster holds the automated personas and their enabled flags.
// The roster is fixed at construction, only the flags change.
type RobotRoster struct {
	mu     sync.RWMutex
	robots []domain.RoboChatter
}

func NewRobotRoster(robots []domain.RoboChatter) *RobotRoster {
	return &RobotRoster{robots: robots}
}

// DefaultRoster returns the personas shipped with the room, all disabled
// until the first participant connects.
func DefaultRoster() []domain.RoboChatter {
	return []domain.RoboChatter{
		{ID: 1, Name: "Margaux", Description: "Cheerful foodie who relates everything to cooking"},
		{ID: 2, Name: "Basile", Description: "Retired sailor, full of dubious sea stories"},
		{ID: 3, Name: "Capucine", Description: "Film buff who quotes movies nobody has seen"},
		{ID: 4, Name: "Oscar", Description: "Amateur astronomer, mildly obsessed with Jupiter"},
	}
}

func (r *RobotRoster) List() []domain.RoboChatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoboChatter, len(r.robots))
	copy(out, r.robots)
	return out
}

func (r *RobotRoster) Get(id int) (domain.RoboChatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, robot := range r.robots {
		if robot.ID == id {
			return robot, nil
		}
	}
	return domain.RoboChatter{}, errors.ErrRobotNotFound
}

// Toggle flips a single robot's enabled flag and returns its new state.
func (r *RobotRoster) Toggle(id int) (domain.RoboChatter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.robots {
		if r.robots[i].ID == id {
			r.robots[i].Enabled = !r.robots[i].Enabled
			return r.robots[i], nil
		}
	}
	return domain.RoboChatter{}, errors.ErrRobotNotFound
}

func (r *RobotRoster) Enabled() []domain.RoboChatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.robots, func(robot domain.RoboChatter, _ int) bool {
		return robot.Enabled
	})
}

func (r *RobotRoster) SetAllEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.robots {
		r.robots[i].Enabled = enabled
	}
}
