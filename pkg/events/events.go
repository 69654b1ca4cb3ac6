// Package events delivers reservation events to message brokers.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/mateolafalce/padelpro/internal/entity"
)

func encode(event *entity.ReservationEvent) ([]byte, error) {
	if event == nil {
		return nil, fmt.Errorf("event cannot be nil")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return body, nil
}
