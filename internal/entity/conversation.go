package entity

import "time"

// LocalWebUser is the history identity of the web chat widget.
const LocalWebUser = "99999999"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ConversationMessage struct {
	ID      int64     `json:"id" db:"id"`
	At      time.Time `json:"fecha" db:"fecha"`
	User    string    `json:"usuario" db:"usuario"`
	Role    string    `json:"rol" db:"rol"`
	Message string    `json:"mensaje" db:"mensaje"`
}

// ConversationUser summarizes one identity in the history table.
type ConversationUser struct {
	User          string    `json:"usuario"`
	TotalMessages int64     `json:"total_mensajes"`
	LastMessage   time.Time `json:"ultimo_mensaje"`
	Kind          string    `json:"tipo"`
}

// UserConversationStats summarizes one identity's history.
type UserConversationStats struct {
	TotalMessages     int64      `json:"total_mensajes"`
	UserMessages      int64      `json:"mensajes_usuario"`
	AssistantMessages int64      `json:"mensajes_asistente"`
	FirstMessage      *time.Time `json:"primer_mensaje"`
	LastMessage       *time.Time `json:"ultimo_mensaje"`
}

type ConversationStats struct {
	TotalMessages    int64            `json:"total_mensajes"`
	TotalUsers       int64            `json:"total_usuarios"`
	ActiveUsersToday int64            `json:"usuarios_activos_hoy"`
	MessagesByRole   map[string]int64 `json:"mensajes_por_rol"`
}

func ConversationKind(user string) string {
	if user == LocalWebUser {
		return "Local"
	}
	return "WhatsApp"
}
