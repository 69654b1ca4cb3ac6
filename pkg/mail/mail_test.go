package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateolafalce/padelpro/config"
)

func TestNewClientRequiresAddresses(t *testing.T) {
	_, err := NewClient(&config.EmailConfig{Host: "smtp.example.com"})
	assert.Error(t, err)

	c, err := NewClient(&config.EmailConfig{Host: "smtp.example.com", From: "a@example.com", To: "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 587, c.port)
	assert.Equal(t, "email", c.Name())
}

func TestBuildMessage(t *testing.T) {
	c, err := NewClient(&config.EmailConfig{
		Host: "smtp.example.com",
		From: "PadelPro <reservas@example.com>",
		To:   "admin@example.com",
	})
	require.NoError(t, err)

	m, err := c.buildMessage("Nueva reserva #3", "Cancha: Cancha 1")
	require.NoError(t, err)

	assert.Equal(t, []string{"[PadelPro] Nueva reserva #3"}, m.GetGenHeader("Subject"))
	to := m.GetToString()
	require.Len(t, to, 1)
	assert.Contains(t, to[0], "admin@example.com")
}

func TestBuildMessageInvalidRecipient(t *testing.T) {
	c := &Client{host: "h", port: 25, from: "a@example.com", to: "not an address"}
	_, err := c.buildMessage("s", "b")
	assert.Error(t, err)
}
