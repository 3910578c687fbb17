package routing

import (
	"strings"
)

// MessageType is the business category carried by a queue.
type MessageType string

const (
	TypeSuscripcionCotizacion MessageType = "masivo-suscripcion-cotizacion"
	TypeCotizacion            MessageType = "masivo-cotizacion"
	TypeKit                   MessageType = "masivo-kit"
	TypePolizas               MessageType = "masivo-polizas"
	TypeEmision               MessageType = "masivo-emision"
)

// Rule classifies a queue name as Type when Match reports true.
type Rule struct {
	Type  MessageType
	Match func(queueName string) bool
}

func contains(token string) func(string) bool {
	return func(name string) bool { return strings.Contains(name, token) }
}

// Rules is evaluated in order and the first match wins. Types whose name is
// a substring of another type must come after it or exclude it.
var Rules = []Rule{
	{Type: TypeSuscripcionCotizacion, Match: contains(string(TypeSuscripcionCotizacion))},
	{Type: TypeCotizacion, Match: func(name string) bool {
		return strings.Contains(name, string(TypeCotizacion)) && !strings.Contains(name, "suscripcion")
	}},
	{Type: TypeKit, Match: contains(string(TypeKit))},
	{Type: TypePolizas, Match: contains(string(TypePolizas))},
	{Type: TypeEmision, Match: contains(string(TypeEmision))},
}

// QueueName returns the trailing segment of an ARN or queue URL.
func QueueName(source string) string {
	if i := strings.LastIndexAny(source, ":/"); i >= 0 {
		return source[i+1:]
	}
	return source
}

// Environment returns the first hyphen-delimited token of a queue name.
func Environment(queueName string) string {
	env, _, _ := strings.Cut(queueName, "-")
	return env
}

// Classify returns the type of the first rule matching queueName.
func Classify(queueName string) (MessageType, bool) {
	for _, r := range Rules {
		if r.Match(queueName) {
			return r.Type, true
		}
	}
	return "", false
}
