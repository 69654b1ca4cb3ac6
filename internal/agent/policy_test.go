package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsConfirmation(t *testing.T) {
	accepted := []string{
		"sí", "Si", "SÍ, dale", "confirmo", "Confirmar", "dale!", "ok", "De acuerdo",
		"reservá", "sí, reservá", "perfecto, gracias", "listo", "Está bien",
		"me parece bien", "bueno, dale", "claro que sí", "hacé la reserva",
	}
	for _, m := range accepted {
		assert.True(t, IsConfirmation(m), m)
	}

	rejected := []string{
		"", "no", "No, mejor otro día", "¿está disponible?", "si? cuánto sale",
		"quiero reservar la cancha A", "hola",
		"Bueno, mejor no",
		"ok no, dejalo",
		"Quiero hacer otra reserva para el domingo",
		"si el domingo hay lugar avisame",
		"Perfecto, pero cambiala a las 20",
		"bueno",
		"va",
		"sí, sí, sí, dale, dale, ok, listo, perfecto, gracias",
	}
	for _, m := range rejected {
		assert.False(t, IsConfirmation(m), m)
	}
}
