package services

import (
	"context"
	"strings"
	"time"

	"radchat/contract"
	"radchat/domain"
	"radchat/domain/event"
	"radchat/moderation"
	"radchat/repositories"
)

type IChatService interface {
	PostMessage(participant domain.Participant, text string) error
	Recent(limit int) ([]domain.ChatEntry, error)
	Search(ctx context.Context, query string, limit, offset int) ([]repositories.SearchHit, uint64, error)
}

// ChatService handles the human side of the conversation: posting,
// replaying history and searching old messages.
type ChatService struct {
	registry      contract.IRegistry
	history       contract.IHistory
	bus           contract.IBus
	moderator     moderation.Moderator
	search        *repositories.SearchIndex
	actionPhrases []string
}

func NewChatService(registry contract.IRegistry, history contract.IHistory, bus contract.IBus,
	moderator moderation.Moderator, search *repositories.SearchIndex, actionPhrases []string) *ChatService {
	return &ChatService{
		registry:      registry,
		history:       history,
		bus:           bus,
		moderator:     moderator,
		search:        search,
		actionPhrases: actionPhrases,
	}
}

// PostMessage broadcasts one participant line. Action notices, the UI
// chatter about enabling or disabling robots, reach everyone but are
// never written to history. Everything else is moderated, persisted and
// then broadcast.
func (s *ChatService) PostMessage(participant domain.Participant, text string) error {
	if s.isActionNotice(text) {
		s.bus.Publish(event.Message{
			Author:    participant.Name,
			Text:      text,
			LiveCount: s.registry.LiveCount(),
			At:        time.Now().UTC(),
		})
		return nil
	}

	censored := s.moderator.Censor(text)
	entry, err := s.history.Append(censored, participant.Name)
	if err != nil {
		return err
	}
	s.bus.Publish(event.Message{
		Author:    entry.Author,
		Text:      entry.Text,
		LiveCount: s.registry.LiveCount(),
		At:        entry.CreatedAt,
	})
	return nil
}

func (s *ChatService) isActionNotice(text string) bool {
	for _, phrase := range s.actionPhrases {
		if phrase != "" && strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// Recent returns the newest entries for replay on connect.
func (s *ChatService) Recent(limit int) ([]domain.ChatEntry, error) {
	return s.history.Recent(limit)
}

// Search runs a full text query over the whole history.
func (s *ChatService) Search(ctx context.Context, query string, limit, offset int) ([]repositories.SearchHit, uint64, error) {
	return s.search.Search(ctx, query, limit, offset)
}
