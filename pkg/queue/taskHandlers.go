package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mateolafalce/padelpro/internal/entity"
)

// Notifier delivers an admin message over one channel (Telegram, email).
type Notifier interface {
	Name() string
	Notify(ctx context.Context, subject, message string) error
}

// TaskHandler consumes queue tasks.
type TaskHandler struct {
	notifiers []Notifier
	timeout   time.Duration
}

func NewTaskHandler(timeout time.Duration, notifiers ...Notifier) *TaskHandler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TaskHandler{notifiers: notifiers, timeout: timeout}
}

func (h *TaskHandler) HandleTask(task *Task) error {
	logrus.WithFields(logrus.Fields{
		"task_id":     task.ID,
		"task_type":   task.Type,
		"attempt":     task.Attempts,
		"max_retries": task.MaxRetries,
	}).Debug("Handling task")

	switch task.Type {
	case TaskTypeNotifyAdmin:
		return h.handleNotifyAdmin(task)
	default:
		return Permanent(fmt.Errorf("unknown task type: %s", task.Type))
	}
}

// handleNotifyAdmin fails only when every channel fails, so a retry never
// repeats a message on a channel that already delivered it.
func (h *TaskHandler) handleNotifyAdmin(task *Task) error {
	subject, message, err := RenderAdminMessage(task)
	if err != nil {
		return Permanent(err)
	}

	if len(h.notifiers) == 0 {
		logrus.WithField("task_id", task.ID).Info(subject)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var errs []error
	for _, n := range h.notifiers {
		if err := n.Notify(ctx, subject, message); err != nil {
			logrus.WithFields(logrus.Fields{
				"task_id": task.ID,
				"channel": n.Name(),
			}).WithError(err).Warn("Admin notification failed")
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}

	if len(errs) == len(h.notifiers) {
		return errors.Join(errs...)
	}
	return nil
}

// RenderAdminMessage builds the Spanish subject and body for a notify_admin task.
func RenderAdminMessage(task *Task) (string, string, error) {
	eventType := entity.ReservationEventType(task.GetString("type"))

	var title string
	switch eventType {
	case entity.EventReservationCreated:
		title = "Nueva reserva"
	case entity.EventReservationCancelled:
		title = "Reserva cancelada"
	case entity.EventSlotBlocked:
		title = "Horario bloqueado"
	case entity.EventSlotUnblocked:
		title = "Horario desbloqueado"
	default:
		return "", "", fmt.Errorf("invalid event type %q", eventType)
	}

	id := task.GetInt64("reserva_id")
	subject := fmt.Sprintf("%s #%d", title, id)

	date := task.GetString("fecha")
	if d, err := entity.ParseDate(date); err == nil {
		date = d.Display()
	}

	var b strings.Builder
	b.WriteString(subject)
	fmt.Fprintf(&b, "\nCancha: %s", task.GetString("cancha"))
	fmt.Fprintf(&b, "\nFecha: %s", date)
	fmt.Fprintf(&b, "\nHorario: %s", task.GetString("hora"))
	if phone := task.GetString("telefono"); phone != "" {
		fmt.Fprintf(&b, "\nTeléfono: %s", phone)
	}
	if eventType == entity.EventReservationCreated {
		fmt.Fprintf(&b, "\nMonto: $%s", strconv.FormatFloat(task.GetFloat("monto"), 'f', -1, 64))
	}

	return subject, b.String(), nil
}
