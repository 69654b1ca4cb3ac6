package agent

import (
	"strings"
)

// affirmations are the words that accept a presented summary.
var affirmations = map[string]bool{
	"si": true, "sii": true, "claro": true, "confirmo": true, "confirmar": true,
	"confirmado": true, "confirmala": true, "confirmalo": true, "dale": true,
	"ok": true, "okey": true, "okay": true, "perfecto": true, "listo": true,
	"adelante": true, "acuerdo": true, "bien": true, "hacelo": true,
	"reserva": true, "reservala": true, "reservalo": true,
}

// courtesy words may surround an affirmation without changing its meaning.
var courtesy = map[string]bool{
	"bueno": true, "gracias": true, "muchas": true, "mil": true, "por": true,
	"favor": true, "porfa": true, "genial": true, "de": true, "esta": true,
	"me": true, "parece": true, "muy": true, "hace": true, "la": true,
	"lo": true, "entonces": true, "que": true, "ya": true, "todo": true,
}

const maxConfirmationWords = 8

// IsConfirmation reports whether a user message explicitly accepts a
// presented summary. Only short replies made of affirmations and courtesy
// words count: a negation, a question, a condition or any new request
// ("pero", "otra", "cambiala", "si hay lugar...") is not a confirmation.
func IsConfirmation(message string) bool {
	s := stripAccents(strings.ToLower(strings.TrimSpace(message)))
	if s == "" || strings.Contains(s, "?") {
		return false
	}

	words := strings.FieldsFunc(s, notLetter)
	if len(words) == 0 || len(words) > maxConfirmationWords {
		return false
	}

	affirmed := false
	for _, w := range words {
		switch {
		case affirmations[w]:
			affirmed = true
		case courtesy[w]:
		default:
			return false
		}
	}
	return affirmed
}
