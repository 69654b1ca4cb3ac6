package service

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/mateolafalce/padelpro/internal/database/postgres"
	"github.com/mateolafalce/padelpro/internal/entity"
)

type historyService struct {
	repo    repository.ConversationRepository
	context int
	keep    int
}

// NewHistoryService feeds the last contextSize messages to the agent and keeps
// at most keep messages per identity.
func NewHistoryService(repo repository.ConversationRepository, contextSize, keep int) HistoryService {
	return &historyService{repo: repo, context: contextSize, keep: keep}
}

func (s *historyService) Save(ctx context.Context, user, role, message string) error {
	if strings.TrimSpace(user) == "" {
		return entity.NewError(entity.ErrMissingArgument, "Se requiere el usuario")
	}
	return s.repo.Save(ctx, &entity.ConversationMessage{User: user, Role: role, Message: message})
}

func (s *historyService) Recent(ctx context.Context, user string) ([]*entity.ConversationMessage, error) {
	return s.repo.Recent(ctx, user, s.context)
}

func (s *historyService) Prune(ctx context.Context, user string) error {
	_, err := s.repo.Prune(ctx, user, s.keep)
	return err
}

func (s *historyService) PruneAll(ctx context.Context) (int64, error) {
	return s.repo.PruneAll(ctx, s.keep)
}

func (s *historyService) Clear(ctx context.Context, user string) (int64, error) {
	return s.repo.Clear(ctx, user)
}

func (s *historyService) ListUsers(ctx context.Context, page, perPage int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	users, total, err := s.repo.ListUsers(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []*entity.ConversationUser{}
	}
	return &UserPage{
		Users:   users,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   (total + int64(perPage) - 1) / int64(perPage),
	}, nil
}

func (s *historyService) UserHistory(ctx context.Context, user string, limit int) (*UserHistory, error) {
	if limit < 1 {
		limit = 50
	}
	messages, err := s.repo.Recent(ctx, user, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	if messages == nil {
		messages = []*entity.ConversationMessage{}
	}
	stats, err := s.repo.UserStats(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &UserHistory{User: user, Messages: messages, Stats: stats}, nil
}

func (s *historyService) Stats(ctx context.Context) (*entity.ConversationStats, error) {
	return s.repo.Stats(ctx)
}
