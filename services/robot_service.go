package services

import (
	"radchat/contract"
	"radchat/domain"
	"radchat/domain/event"
)

type IRobotService interface {
	List() []domain.RoboChatter
	Toggle(id int) (domain.RoboChatter, error)
}

// RobotService exposes the roster to the outside world. Toggling tells
// every connected client to refresh its view.
type RobotService struct {
	roster contract.IRoster
	bus    contract.IBus
}

func NewRobotService(roster contract.IRoster, bus contract.IBus) *RobotService {
	return &RobotService{roster: roster, bus: bus}
}

func (s *RobotService) List() []domain.RoboChatter {
	return s.roster.List()
}

func (s *RobotService) Toggle(id int) (domain.RoboChatter, error) {
	robot, err := s.roster.Toggle(id)
	if err != nil {
		return domain.RoboChatter{}, err
	}
	s.bus.Publish(event.RosterRefresh{})
	return robot, nil
}
