package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2025-12-20 is a Saturday
var saturday = time.Date(2025, 12, 20, 15, 30, 0, 0, time.UTC)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{input: "2025-12-24", want: "2025-12-24", wantOK: true},
		{input: "hoy", want: "2025-12-20", wantOK: true},
		{input: "mañana", want: "2025-12-21", wantOK: true},
		{input: "Pasado mañana", want: "2025-12-22", wantOK: true},
		{input: "sábado", want: "2025-12-27", wantOK: true},
		{input: "el lunes", want: "2025-12-22", wantOK: true},
		{input: "miercoles", want: "2025-12-24", wantOK: true},
		{input: "20/12", want: "2025-12-20", wantOK: true},
		{input: "19/12", want: "2026-12-19", wantOK: true},
		{input: "05/01/2026", want: "2026-01-05", wantOK: true},
		{input: "5/1/26", want: "2026-01-05", wantOK: true},
		{input: "en 3 días", want: "2025-12-23", wantOK: true},
		{input: "dentro de 2 semanas", want: "2026-01-03", wantOK: true},
		{input: "5 de enero", want: "2026-01-05", wantOK: true},
		{input: "24 de diciembre de 2026", want: "2026-12-24", wantOK: true},
		{input: "1 de setiembre", want: "2026-09-01", wantOK: true},
		{input: "sábado a la mañana", want: "2025-12-27", wantOK: true},
		{input: "el lunes por la mañana", want: "2025-12-22", wantOK: true},
		{input: "mañana por la mañana", want: "2025-12-21", wantOK: true},
		{input: "pasado mañana a la manana", want: "2025-12-22", wantOK: true},
		{input: "31/02/2026", want: "31/02/2026", wantOK: false},
		{input: "cuando puedas", want: "cuando puedas", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input, saturday)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDateMorningIsNotTomorrow(t *testing.T) {
	// 2025-12-17 is a Wednesday
	wednesday := time.Date(2025, 12, 17, 10, 0, 0, 0, time.UTC)

	got, ok := NormalizeDate("sábado a la mañana", wednesday)
	assert.True(t, ok)
	assert.Equal(t, "2025-12-20", got)

	got, ok = NormalizeDate("el lunes por la mañana", wednesday)
	assert.True(t, ok)
	assert.Equal(t, "2025-12-22", got)

	got, ok = NormalizeDate("a la mañana", wednesday)
	assert.False(t, ok)
	assert.Equal(t, "a la mañana", got)
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{input: "18:00", want: "18:00", wantOK: true},
		{input: "8:00-9:00", want: "08:00-09:00", wantOK: true},
		{input: "18:00 - 19:00", want: "18:00-19:00", wantOK: true},
		{input: "18", want: "18:00", wantOK: true},
		{input: "18hs", want: "18:00", wantOK: true},
		{input: "18.30", want: "18:30", wantOK: true},
		{input: "6 pm", want: "18:00", wantOK: true},
		{input: "6 de la tarde", want: "18:00", wantOK: true},
		{input: "10 de la noche", want: "22:00", wantOK: true},
		{input: "a las 20", want: "20:00", wantOK: true},
		{input: "12 am", want: "00:00", wantOK: true},
		{input: "25", want: "25", wantOK: false},
		{input: "tarde", want: "tarde", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeTime(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
