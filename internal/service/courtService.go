package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	repository "github.com/mateolafalce/padelpro/internal/database/postgres"
	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/sirupsen/logrus"
)

type courtService struct {
	courts repository.CourtRepository
}

func NewCourtService(courts repository.CourtRepository) CourtService {
	return &courtService{courts: courts}
}

func (s *courtService) Create(ctx context.Context, req *CreateCourtRequest) (*entity.Court, error) {
	court := &entity.Court{
		Name:        strings.TrimSpace(req.Name),
		Capacity:    req.Capacity,
		Description: req.Description,
		Price:       req.Price,
	}
	if court.Name == "" || court.Capacity <= 0 {
		return nil, entity.NewError(entity.ErrMissingArgument, "Faltan campos requeridos: nombre, cantidad")
	}
	if court.Price < 0 {
		return nil, entity.NewError(entity.ErrInvalidInput, "El precio no puede ser negativo")
	}

	if err := s.courts.Create(ctx, court, req.Slots); err != nil {
		return nil, fmt.Errorf("failed to create court: %w", err)
	}

	logrus.WithFields(logrus.Fields{"court_id": court.ID, "name": court.Name}).Info("Court created")
	return court, nil
}

func (s *courtService) Update(ctx context.Context, id int64, req *UpdateCourtRequest) (*entity.Court, error) {
	court, err := s.courts.GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, entity.NewError(entity.ErrNotFound, "Cancha no encontrada")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get court: %w", err)
	}

	if req.Name != nil {
		court.Name = strings.TrimSpace(*req.Name)
	}
	if req.Capacity != nil {
		court.Capacity = *req.Capacity
	}
	if req.Description != nil {
		court.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, entity.NewError(entity.ErrInvalidInput, "El precio no puede ser negativo")
		}
		court.Price = *req.Price
	}

	var slots []int64
	if req.Slots != nil {
		slots = *req.Slots
		if slots == nil {
			slots = []int64{}
		}
	}

	if err := s.courts.Update(ctx, court, slots); err != nil {
		return nil, fmt.Errorf("failed to update court: %w", err)
	}
	return court, nil
}

// Delete also removes the court's reservations and slot links.
func (s *courtService) Delete(ctx context.Context, id int64) error {
	err := s.courts.Delete(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return entity.NewError(entity.ErrNotFound, "Cancha no encontrada")
	}
	if err != nil {
		return fmt.Errorf("failed to delete court: %w", err)
	}
	logrus.WithField("court_id", id).Info("Court deleted")
	return nil
}
