package handlers

import (
	"net/http"

	"github.com/Jairo-Bargas/Api-project/internal/utils"
	"github.com/Jairo-Bargas/Api-project/internal/validation"

	"github.com/gin-gonic/gin"
)

// Error kinds used in the {error, mensaje} envelope.
const (
	KindValidacion   = "validacion"
	KindDuplicado    = "duplicado"
	KindCredenciales = "credenciales"
	KindNoEncontrado = "no_encontrado"
	KindMetodo       = "metodo_no_permitido"
	KindInterno      = "error_interno"
)

func respondError(c *gin.Context, status int, kind, mensaje string) {
	c.JSON(status, gin.H{"error": kind, "mensaje": mensaje})
}

func respondValidation(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, KindValidacion, err.Error())
}

// respondInternal genericizes uncaught faults. Persistence faults are told
// apart with a typed check, never by matching error text.
func respondInternal(c *gin.Context, err error) {
	mensaje := "Error interno del servidor"
	if utils.IsPGError(err) {
		mensaje = "Error de base de datos"
	}
	respondError(c, http.StatusInternalServerError, KindInterno, mensaje)
}

// bindObject decodes the request body into a JSON object for the
// validation layer. A body that is not an object is a validation failure,
// same as an empty one.
func bindObject(c *gin.Context) (map[string]any, bool) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondValidation(c, &validation.Error{Message: "No se enviaron datos"})
		return nil, false
	}
	return payload, true
}

// NoRoute answers unknown paths with the standard envelope.
func NoRoute(c *gin.Context) {
	respondError(c, http.StatusNotFound, KindNoEncontrado, "Ruta no encontrada")
}

// NoMethod answers known paths with the wrong method.
func NoMethod(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed, KindMetodo, "Metodo no permitido")
}
