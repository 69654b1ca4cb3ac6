package agent

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/schedule"
	"github.com/mateolafalce/padelpro/internal/service"
)

// SpanishDate formats t as "sábado 20 de diciembre de 2025".
func SpanishDate(t time.Time) string {
	return fmt.Sprintf("%s %d de %s de %d",
		strings.ToLower(schedule.WeekdayName(t)), t.Day(), monthNames[t.Month()-1], t.Year())
}

// BuildSystemPrompt renders the instructions sent as the first message of every conversation.
func BuildSystemPrompt(now time.Time, business *entity.Business, grid schedule.Grid, courts []*entity.CourtWithSlots) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sos un agente de atención al cliente para %s, un %s ubicado en %s.\n\n",
		business.Name, business.Kind, business.Address)
	fmt.Fprintf(&b, "FECHA ACTUAL: %s (%s)\n\n", SpanishDate(now), now.Format(entity.DateLayout))

	b.WriteString("INSTRUCCIONES IMPORTANTES:\n")
	b.WriteString("- Respondé siempre en español argentino, con un tono amigable y profesional.\n")
	b.WriteString("- Ayudá a los clientes con información sobre canchas, horarios y reservas.\n")
	b.WriteString("- Si el cliente expresa fecha y hora en lenguaje natural, convertilas a YYYY-MM-DD y HH:MM usando la fecha actual como referencia. No le pidas el formato si la información ya está presente.\n")
	b.WriteString("- Si te piden reservar, PRIMERO verificá la disponibilidad con la función verificar_disponibilidad.\n")
	b.WriteString("- Si la cancha está disponible, NO reserves automáticamente. Presentá un resumen claro (Cancha, Fecha, Hora, Precio) y preguntá si desea confirmar la reserva.\n")
	b.WriteString("- Cuando hables de una cancha, mencioná también su precio.\n")
	b.WriteString("- SOLO cuando el usuario confirme explícitamente (\"sí\", \"confirmar\", \"dale\"), llamá a la función crear_reserva.\n")
	fmt.Fprintf(&b, "- Solo después de que crear_reserva retorne éxito, confirmá la reserva y enviá el detalle del pago: el monto, el CBU (%s) y el Alias (%s) para la transferencia.\n",
		business.CBU, business.Alias)
	b.WriteString("- Sé proactivo buscando alternativas si no hay disponibilidad.\n")
	fmt.Fprintf(&b, "- Los horarios de reserva son ESTRICTOS. Usá EXACTAMENTE uno de estos rangos para el parámetro 'hora': %s. No inventes otros horarios.\n\n",
		grid.Joined())

	if len(courts) == 0 {
		b.WriteString("NOTA: Actualmente no hay canchas registradas en el sistema.\n")
		return b.String()
	}

	b.WriteString("CANCHAS DISPONIBLES:\n\n")
	for _, c := range courts {
		writeCourt(&b, c)
	}
	return b.String()
}

func writeCourt(b *strings.Builder, c *entity.CourtWithSlots) {
	fmt.Fprintf(b, "📍 %s\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(b, "   Descripción: %s\n", c.Description)
	}
	fmt.Fprintf(b, "   Capacidad máxima: %d personas\n", c.Capacity)
	if c.Price > 0 {
		fmt.Fprintf(b, "   Precio: $%s\n", service.FormatAmount(c.Price))
	}

	if len(c.Slots) == 0 {
		b.WriteString("   Horarios: No definidos aún\n\n")
		return
	}

	byDay := make(map[string][]string)
	for _, s := range c.Slots {
		byDay[s.Weekday] = append(byDay[s.Weekday], s.TimeRange)
	}
	b.WriteString("   Horarios disponibles:\n")
	for _, day := range schedule.Weekdays {
		ranges, ok := byDay[day]
		if !ok {
			continue
		}
		sort.Strings(ranges)
		fmt.Fprintf(b, "      %s: %s\n", day, strings.Join(ranges, ", "))
	}
	b.WriteString("\n")
}
