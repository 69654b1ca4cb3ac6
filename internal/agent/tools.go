package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mateolafalce/padelpro/internal/schedule"
)

const (
	ToolCheckAvailability = "verificar_disponibilidad"
	ToolCreateReservation = "crear_reserva"
	ToolListReservations  = "listar_reservas_usuario"
	ToolCancelReservation = "cancelar_reserva_usuario"
)

// Command is the decoded, validated arguments of one tool call.
type Command interface {
	Tool() string
	validate() error
}

type CheckAvailabilityCommand struct {
	CourtName string `json:"cancha_nombre"`
	Date      string `json:"fecha"`
	Time      string `json:"hora"`
}

func (CheckAvailabilityCommand) Tool() string { return ToolCheckAvailability }

func (c *CheckAvailabilityCommand) validate() error {
	return requireFields(map[string]string{"cancha_nombre": c.CourtName, "fecha": c.Date, "hora": c.Time})
}

// CreateReservationCommand has no phone field: the phone always comes from the channel.
type CreateReservationCommand struct {
	CourtName  string `json:"cancha_nombre"`
	Date       string `json:"fecha"`
	Time       string `json:"hora"`
	ClientName string `json:"cliente_nombre,omitempty"`
}

func (CreateReservationCommand) Tool() string { return ToolCreateReservation }

func (c *CreateReservationCommand) validate() error {
	return requireFields(map[string]string{"cancha_nombre": c.CourtName, "fecha": c.Date, "hora": c.Time})
}

type ListReservationsCommand struct {
	Phone string `json:"telefono,omitempty"`
}

func (ListReservationsCommand) Tool() string { return ToolListReservations }

func (c *ListReservationsCommand) validate() error { return nil }

type CancelReservationCommand struct {
	ReservationID ReservationID `json:"reserva_id"`
	Phone         string        `json:"telefono,omitempty"`
}

func (CancelReservationCommand) Tool() string { return ToolCancelReservation }

func (c *CancelReservationCommand) validate() error {
	if c.ReservationID <= 0 {
		return errors.New("falta el parámetro reserva_id")
	}
	return nil
}

// ReservationID accepts 12 and "12", models send both.
type ReservationID int64

func (id *ReservationID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("reserva_id inválido: %s", string(b))
	}
	*id = ReservationID(n)
	return nil
}

// DecodeCommand parses tool arguments into the command type of the tool,
// rejecting unknown fields and missing required ones.
func DecodeCommand(name, arguments string) (Command, error) {
	var cmd Command
	switch name {
	case ToolCheckAvailability:
		cmd = &CheckAvailabilityCommand{}
	case ToolCreateReservation:
		cmd = &CreateReservationCommand{}
	case ToolListReservations:
		cmd = &ListReservationsCommand{}
	case ToolCancelReservation:
		cmd = &CancelReservationCommand{}
	default:
		return nil, fmt.Errorf("función no disponible: %s", name)
	}

	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(arguments)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cmd); err != nil {
		return nil, fmt.Errorf("argumentos inválidos para %s: %v", name, err)
	}
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func requireFields(fields map[string]string) error {
	var missing []string
	for _, key := range []string{"cancha_nombre", "fecha", "hora"} {
		if v, ok := fields[key]; ok && strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("faltan parámetros: %s", strings.Join(missing, ", "))
	}
	return nil
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

// ToolSpecs describes the four booking tools; the time parameter lists the
// ranges of grid.
func ToolSpecs(grid schedule.Grid) []ToolSpec {
	hora := stringProp("Uno de los rangos horarios válidos: " + grid.Joined())
	fecha := stringProp("La fecha en formato YYYY-MM-DD (ej: '2025-12-20')")
	cancha := stringProp("El nombre exacto de la cancha (ej: 'Cancha A')")

	return []ToolSpec{
		{
			Name:        ToolCheckAvailability,
			Description: "Verifica si una cancha está disponible en una fecha y hora específica",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cancha_nombre": cancha,
					"fecha":         fecha,
					"hora":          hora,
				},
				"required":             []string{"cancha_nombre", "fecha", "hora"},
				"additionalProperties": false,
			},
		},
		{
			Name:        ToolCreateReservation,
			Description: "Crea una reserva para una cancha en una fecha y hora específica. Solo llamar después de verificar disponibilidad y de que el cliente confirme el resumen.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cancha_nombre":  cancha,
					"fecha":          fecha,
					"hora":           hora,
					"cliente_nombre": stringProp("Nombre del cliente (opcional)"),
				},
				"required":             []string{"cancha_nombre", "fecha", "hora"},
				"additionalProperties": false,
			},
		},
		{
			Name:        ToolListReservations,
			Description: "Lista las reservas pendientes del usuario",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"telefono": stringProp("Teléfono del usuario, solo si no se conoce por el canal"),
				},
				"additionalProperties": false,
			},
		},
		{
			Name:        ToolCancelReservation,
			Description: "Cancela una reserva del usuario por su ID",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reserva_id": map[string]interface{}{"type": "integer", "description": "ID de la reserva a cancelar"},
					"telefono":   stringProp("Teléfono del usuario, solo si no se conoce por el canal"),
				},
				"required":             []string{"reserva_id"},
				"additionalProperties": false,
			},
		},
	}
}
