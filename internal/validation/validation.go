// Package validation holds the pure payload validators. They run on the
// decoded JSON object before anything touches the database, and they report
// the first violated rule only, so the same bad payload always produces the
// same message.
package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	TituloMaxLen   = 100
	UsernameMinLen = 3
	UsernameMaxLen = 20
	PasswordMinLen = 6
	PasswordMaxLen = 50
)

// Error is a validation failure with a client-facing message.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func fail(msg string) error { return &Error{Message: msg} }

// Tarea validates a create/update task payload.
func Tarea(payload map[string]any) error {
	if len(payload) == 0 {
		return fail("No se enviaron datos")
	}
	titulo, ok := payload["titulo"]
	if !ok {
		return fail("El campo titulo es obligatorio")
	}
	tituloStr, ok := titulo.(string)
	if !ok {
		return fail("El titulo debe ser texto")
	}
	// Bounds apply to the trimmed value, which is also what gets stored.
	if n := utf8.RuneCountInString(strings.TrimSpace(tituloStr)); n < 1 || n > TituloMaxLen {
		return fail("El titulo debe tener entre 1 y 100 caracteres")
	}
	descripcion, ok := payload["descripcion"]
	if !ok {
		return fail("El campo descripcion es obligatorio")
	}
	descripcionStr, ok := descripcion.(string)
	if !ok {
		return fail("La descripcion debe ser texto")
	}
	if descripcionStr == "" {
		return fail("La descripcion no puede estar vacia")
	}
	return nil
}

// Usuario validates a registration payload.
func Usuario(payload map[string]any) error {
	if len(payload) == 0 {
		return fail("No se enviaron datos")
	}
	username, ok := payload["username"]
	if !ok {
		return fail("El campo username es obligatorio")
	}
	usernameStr, ok := username.(string)
	if !ok {
		return fail("El username debe ser texto")
	}
	if n := utf8.RuneCountInString(usernameStr); n < UsernameMinLen || n > UsernameMaxLen {
		return fail("El username debe tener entre 3 y 20 caracteres")
	}
	if !usernameCharsOK(usernameStr) {
		return fail("El username solo puede contener letras, numeros y guion bajo")
	}
	email, ok := payload["email"]
	if !ok {
		return fail("El campo email es obligatorio")
	}
	emailStr, ok := email.(string)
	if !ok {
		return fail("El email debe ser texto")
	}
	if !emailOK(emailStr) {
		return fail("El email no es valido")
	}
	password, ok := payload["password"]
	if !ok {
		return fail("El campo password es obligatorio")
	}
	passwordStr, ok := password.(string)
	if !ok {
		return fail("El password debe ser texto")
	}
	if n := utf8.RuneCountInString(passwordStr); n < PasswordMinLen || n > PasswordMaxLen {
		return fail("El password debe tener entre 6 y 50 caracteres")
	}
	if !passwordCharsOK(passwordStr) {
		return fail("El password debe contener al menos una letra y un numero")
	}
	return nil
}

func usernameCharsOK(s string) bool {
	for _, r := range s {
		if r == '_' {
			continue
		}
		if r > unicode.MaxASCII || (!unicode.IsLetter(r) && !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// emailOK requires an '@' and a '.' somewhere after the last '@'.
func emailOK(s string) bool {
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return false
	}
	return strings.Contains(s[at+1:], ".")
}

func passwordCharsOK(s string) bool {
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
