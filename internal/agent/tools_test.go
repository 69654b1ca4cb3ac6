package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateolafalce/padelpro/internal/schedule"
)

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand(ToolCancelReservation, `{"reserva_id":"12"}`)
	require.NoError(t, err)
	assert.Equal(t, ReservationID(12), cmd.(*CancelReservationCommand).ReservationID)

	cmd, err = DecodeCommand(ToolCancelReservation, `{"reserva_id":12,"telefono":"221"}`)
	require.NoError(t, err)
	assert.Equal(t, "221", cmd.(*CancelReservationCommand).Phone)

	_, err = DecodeCommand(ToolCancelReservation, `{"reserva_id":"doce"}`)
	assert.Error(t, err)

	_, err = DecodeCommand(ToolCancelReservation, `{}`)
	assert.EqualError(t, err, "falta el parámetro reserva_id")

	cmd, err = DecodeCommand(ToolListReservations, "")
	require.NoError(t, err)
	assert.Equal(t, ToolListReservations, cmd.Tool())

	_, err = DecodeCommand(ToolCheckAvailability, `{"cancha_nombre":" ","fecha":"2025-12-20","hora":"18:00"}`)
	assert.EqualError(t, err, "faltan parámetros: cancha_nombre")
}

func TestToolSpecs(t *testing.T) {
	specs := ToolSpecs(schedule.Hourly())
	require.Len(t, specs, 4)

	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
		assert.Equal(t, false, s.Parameters["additionalProperties"])
	}
	assert.Equal(t, []string{ToolCheckAvailability, ToolCreateReservation, ToolListReservations, ToolCancelReservation}, names)

	props := specs[1].Parameters["properties"].(map[string]interface{})
	assert.NotContains(t, props, "telefono")
	hora := props["hora"].(map[string]interface{})
	assert.Contains(t, hora["description"], "22:00-23:00")
}
