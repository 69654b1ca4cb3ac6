package service

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/mateolafalce/padelpro/internal/database/postgres"
	"github.com/mateolafalce/padelpro/internal/entity"
)

type businessService struct {
	config   repository.ConfigRepository
	defaults entity.Business
}

// NewBusinessService falls back to defaults for keys never saved.
func NewBusinessService(config repository.ConfigRepository, defaults entity.Business) BusinessService {
	return &businessService{config: config, defaults: defaults}
}

func (s *businessService) Get(ctx context.Context) (*entity.Business, error) {
	values, err := s.config.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read business configuration: %w", err)
	}

	b := s.defaults
	for key, target := range map[string]*string{
		entity.ConfigCBU:             &b.CBU,
		entity.ConfigAlias:           &b.Alias,
		entity.ConfigBusinessName:    &b.Name,
		entity.ConfigBusinessKind:    &b.Kind,
		entity.ConfigBusinessAddress: &b.Address,
	} {
		if v, ok := values[key]; ok {
			*target = v
		}
	}
	return &b, nil
}

func (s *businessService) Update(ctx context.Context, b *entity.Business) error {
	values := b.Values()
	for k, v := range values {
		values[k] = strings.TrimSpace(v)
	}
	if err := s.config.Upsert(ctx, values); err != nil {
		return fmt.Errorf("failed to save business configuration: %w", err)
	}
	return nil
}
