package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mateolafalce/padelpro/internal/entity"
)

// FanOutPublisher delivers every event to all targets and reports the
// failures together.
type FanOutPublisher struct {
	targets map[string]EventPublisher
	order   []string
}

func NewFanOutPublisher() *FanOutPublisher {
	return &FanOutPublisher{targets: make(map[string]EventPublisher)}
}

func (f *FanOutPublisher) Add(name string, target EventPublisher) {
	if _, ok := f.targets[name]; !ok {
		f.order = append(f.order, name)
	}
	f.targets[name] = target
}

func (f *FanOutPublisher) Len() int { return len(f.order) }

func (f *FanOutPublisher) Publish(ctx context.Context, event *entity.ReservationEvent) error {
	var errs []error
	for _, name := range f.order {
		if err := f.targets[name].Publish(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
