package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"radchat/errors"
	"radchat/repositories"
)

func TestToggleBroadcastsRosterRefresh(t *testing.T) {
	req := require.New(t)
	roster := repositories.NewRobotRoster(repositories.DefaultRoster())
	bus := &busFake{}
	service := NewRobotService(roster, bus)

	robot, err := service.Toggle(1)
	req.NoError(err)
	req.True(robot.Enabled)

	events := bus.all()
	req.Len(events, 1)
	req.Equal("roster_refresh", events[0].Kind())
}

func TestToggleUnknownRobotNoBroadcast(t *testing.T) {
	req := require.New(t)
	roster := repositories.NewRobotRoster(repositories.DefaultRoster())
	bus := &busFake{}
	service := NewRobotService(roster, bus)

	_, err := service.Toggle(99)
	req.ErrorIs(err, errors.ErrRobotNotFound)
	req.Empty(bus.all())
}

func TestListExposesRoster(t *testing.T) {
	req := require.New(t)
	roster := repositories.NewRobotRoster(repositories.DefaultRoster())
	service := NewRobotService(roster, &busFake{})

	req.Len(service.List(), len(repositories.DefaultRoster()))
}
