package http

import (
	"net/http"

	"golang.org/x/text/language"
)

// messages 面向调用方的可读文本。JSON键和标签值不随语言变化。
type messages struct {
	StatusOK       string
	StatusDown     string
	Unavailable    string
	Malformed      string
	Schema         string
	Shape          string
	Internal       string
	TooLarge       string
	ExpectedFormat string
}

var spanish = messages{
	StatusOK:       "Servicio de predicción activo.",
	StatusDown:     "Servicio inactivo: El modelo no pudo ser cargado.",
	Unavailable:    "Modelo no disponible",
	Malformed:      "JSON inválido",
	Schema:         "Formato JSON incorrecto",
	Shape:          "Número incorrecto de características",
	Internal:       "Error interno del servidor",
	TooLarge:       "Cuerpo de la solicitud demasiado grande",
	ExpectedFormat: "{'features': [valor1, valor2, ..., valor30]}",
}

var english = messages{
	StatusOK:       "Prediction service is up.",
	StatusDown:     "Service down: the model could not be loaded.",
	Unavailable:    "Model unavailable",
	Malformed:      "Invalid JSON",
	Schema:         "Incorrect JSON format",
	Shape:          "Incorrect number of features",
	Internal:       "Internal server error",
	TooLarge:       "Request body too large",
	ExpectedFormat: "{'features': [value1, value2, ..., value30]}",
}

// Spanish first: it is the fallback when nothing matches.
var messageMatcher = language.NewMatcher([]language.Tag{language.Spanish, language.English})

var englishBase, _ = language.English.Base()

// messagesFor 根据Accept-Language选择文本
func messagesFor(r *http.Request) messages {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return spanish
	}
	tag, _, _ := messageMatcher.Match(tags...)
	if base, _ := tag.Base(); base == englishBase {
		return english
	}
	return spanish
}
