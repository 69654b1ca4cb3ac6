package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	name     string
	err      error
	subjects []string
	messages []string
}

func (n *recordingNotifier) Name() string { return n.name }

func (n *recordingNotifier) Notify(_ context.Context, subject, message string) error {
	n.subjects = append(n.subjects, subject)
	n.messages = append(n.messages, message)
	return n.err
}

func notifyTask(eventType string) *Task {
	return &Task{
		ID:   "notify_admin_1",
		Type: TaskTypeNotifyAdmin,
		Data: map[string]interface{}{
			"type":       eventType,
			"reserva_id": int64(42),
			"cancha":     "Cancha 1",
			"fecha":      "2025-12-20",
			"hora":       "18:00-19:00",
			"telefono":   "5492214567890",
			"monto":      15000.0,
		},
		MaxRetries: 3,
	}
}

func TestRenderAdminMessage(t *testing.T) {
	subject, body, err := RenderAdminMessage(notifyTask("reserva.creada"))
	require.NoError(t, err)

	assert.Equal(t, "Nueva reserva #42", subject)
	assert.Equal(t, "Nueva reserva #42\nCancha: Cancha 1\nFecha: 20/12/2025\nHorario: 18:00-19:00\nTeléfono: 5492214567890\nMonto: $15000", body)
}

func TestRenderAdminMessageAfterJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(notifyTask("horario.bloqueado"))
	require.NoError(t, err)

	var task Task
	require.NoError(t, json.Unmarshal(raw, &task))

	subject, body, err := RenderAdminMessage(&task)
	require.NoError(t, err)
	assert.Equal(t, "Horario bloqueado #42", subject)
	assert.NotContains(t, body, "Monto")
}

func TestRenderAdminMessageUnknownType(t *testing.T) {
	_, _, err := RenderAdminMessage(notifyTask("otra.cosa"))
	assert.Error(t, err)
}

func TestHandleTaskFansOutToNotifiers(t *testing.T) {
	tg := &recordingNotifier{name: "telegram"}
	mail := &recordingNotifier{name: "email"}
	h := NewTaskHandler(time.Second, tg, mail)

	require.NoError(t, h.HandleTask(notifyTask("reserva.cancelada")))
	assert.Equal(t, []string{"Reserva cancelada #42"}, tg.subjects)
	assert.Equal(t, []string{"Reserva cancelada #42"}, mail.subjects)
}

func TestHandleTaskPartialFailureIsNotRetried(t *testing.T) {
	tg := &recordingNotifier{name: "telegram", err: errors.New("timeout")}
	mail := &recordingNotifier{name: "email"}
	h := NewTaskHandler(time.Second, tg, mail)

	assert.NoError(t, h.HandleTask(notifyTask("reserva.creada")))
}

func TestHandleTaskAllChannelsFail(t *testing.T) {
	tg := &recordingNotifier{name: "telegram", err: errors.New("timeout")}
	h := NewTaskHandler(time.Second, tg)

	err := h.HandleTask(notifyTask("reserva.creada"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
	assert.NotErrorIs(t, err, ErrPermanent)
}

func TestHandleTaskUnknownTypeIsPermanent(t *testing.T) {
	h := NewTaskHandler(time.Second)
	err := h.HandleTask(&Task{ID: "x", Type: "expire_booking"})
	assert.ErrorIs(t, err, ErrPermanent)
}

func TestTaskGetters(t *testing.T) {
	task := &Task{Data: map[string]interface{}{
		"i":  7,
		"f":  float64(9),
		"s":  "hola",
		"at": "2025-12-20T10:00:00Z",
	}}

	assert.Equal(t, int64(7), task.GetInt64("i"))
	assert.Equal(t, int64(9), task.GetInt64("f"))
	assert.Equal(t, 7.0, task.GetFloat("i"))
	assert.Equal(t, "hola", task.GetString("s"))
	assert.Equal(t, "", task.GetString("i"))
	assert.Equal(t, 2025, task.GetTime("at").Year())
	assert.True(t, task.GetTime("s").IsZero())
}

func TestValidateTask(t *testing.T) {
	q := &RedisQueue{config: DefaultRedisQueueConfig("")}

	task := &Task{Type: TaskTypeNotifyAdmin}
	require.NoError(t, q.validateTask(task))
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, 3, task.MaxRetries)
	assert.NotNil(t, task.Data)
	assert.Equal(t, task.CreatedAt, task.ExecuteAt)

	assert.Error(t, q.validateTask(&Task{}))
}

func TestDefaultRedisQueueConfigPrefix(t *testing.T) {
	cfg := DefaultRedisQueueConfig("club")
	assert.Equal(t, "club:tasks", cfg.MainQueue)
	assert.Equal(t, "club:tasks:delayed", cfg.DelayedQueue)
	assert.Equal(t, "club:dlq", cfg.DLQ)

	assert.Equal(t, "padelpro:tasks", DefaultRedisQueueConfig("").MainQueue)
}
