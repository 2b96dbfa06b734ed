package handlers

import (
	"net/http"
	"strconv"

	"github.com/Jairo-Bargas/Api-project/internal/auth"
	dom "github.com/Jairo-Bargas/Api-project/internal/domain"
	"github.com/Jairo-Bargas/Api-project/internal/dto"
	"github.com/Jairo-Bargas/Api-project/internal/query"
	"github.com/Jairo-Bargas/Api-project/internal/service"
	"github.com/Jairo-Bargas/Api-project/internal/validation"

	"github.com/gin-gonic/gin"
)

type TareaHandler struct {
	svc    *service.TareaService
	limits query.Limits
}

func NewTareaHandler(svc *service.TareaService, limits query.Limits) *TareaHandler {
	return &TareaHandler{svc: svc, limits: limits}
}

// Create godoc
// @Summary      Create a tarea
// @Tags         tareas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      map[string]any  true  "titulo, descripcion, completada?"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /tareas [post]
func (h *TareaHandler) Create(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	payload, ok := bindObject(c)
	if !ok {
		return
	}
	if err := validation.Tarea(payload); err != nil {
		respondValidation(c, err)
		return
	}
	completada, ok := completadaFromPayload(c, payload)
	if !ok {
		return
	}

	t, err := h.svc.Create(c.Request.Context(), userID,
		payload["titulo"].(string), payload["descripcion"].(string), completada != nil && *completada)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"mensaje": "Tarea creada exitosamente",
		"tarea":   tareaToResponse(t),
	})
}

// List godoc
// @Summary      List tareas with search, filter, sort and pagination
// @Tags         tareas
// @Produce      json
// @Security     BearerAuth
// @Param        busqueda     query  string  false  "Free text over titulo/descripcion"
// @Param        estado       query  string  false  "pendiente | completada"
// @Param        ordenar_por  query  string  false  "titulo | fecha_creacion | estado"
// @Param        orden        query  string  false  "asc | desc"
// @Param        pagina       query  int     false  "Page number (>=1)"
// @Param        limite       query  int     false  "Page size"
// @Success      200  {object}  dto.ListTareasResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tareas [get]
func (h *TareaHandler) List(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	p := query.Parse(c.Request.URL.Query(), h.limits)

	list, total, err := h.svc.List(c.Request.Context(), userID, p)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTareasResponse{
		Tareas:     tareasToResponses(list),
		Paginacion: p.Meta(total),
	})
}

// GetByID godoc
// @Summary      Get one tarea
// @Tags         tareas
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Tarea ID"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tareas/{id} [get]
func (h *TareaHandler) GetByID(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.respondTareaError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tarea": tareaToResponse(t)})
}

// Update godoc
// @Summary      Update a tarea
// @Tags         tareas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Tarea ID"
// @Param        body  body      map[string]any  true  "titulo, descripcion, completada?"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tareas/{id} [put]
func (h *TareaHandler) Update(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	payload, ok := bindObject(c)
	if !ok {
		return
	}
	// Updates are re-validated with the same rules as creation; titulo and
	// descripcion are required on every call, completada alone is optional.
	if err := validation.Tarea(payload); err != nil {
		respondValidation(c, err)
		return
	}
	completada, ok := completadaFromPayload(c, payload)
	if !ok {
		return
	}

	t, err := h.svc.Update(c.Request.Context(), userID, id,
		payload["titulo"].(string), payload["descripcion"].(string), completada)
	if err != nil {
		h.respondTareaError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mensaje": "Tarea actualizada exitosamente",
		"tarea":   tareaToResponse(t),
	})
}

// Delete godoc
// @Summary      Delete a tarea
// @Tags         tareas
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Tarea ID"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tareas/{id} [delete]
func (h *TareaHandler) Delete(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Delete(c.Request.Context(), userID, id)
	if err != nil {
		h.respondTareaError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mensaje": "Tarea eliminada exitosamente",
		"tarea":   tareaToResponse(t),
	})
}

// respondTareaError maps service errors. A tarea under another owner comes
// back as ErrNotFound, so the 404 here never leaks existence.
func (h *TareaHandler) respondTareaError(c *gin.Context, err error) {
	if err == service.ErrNotFound {
		respondError(c, http.StatusNotFound, KindNoEncontrado, "Tarea no encontrada")
		return
	}
	respondInternal(c, err)
}

// completadaFromPayload reads the optional completada flag. Absent means
// nil (create: false, update: keep stored value).
func completadaFromPayload(c *gin.Context, payload map[string]any) (*bool, bool) {
	v, present := payload["completada"]
	if !present {
		return nil, true
	}
	b, isBool := v.(bool)
	if !isBool {
		respondValidation(c, &validation.Error{Message: "El campo completada debe ser booleano"})
		return nil, false
	}
	return &b, true
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, KindValidacion, "El id no es valido")
		return 0, false
	}
	return id, true
}

func tareaToResponse(t dom.Tarea) dto.TareaResponse {
	return dto.TareaResponse{
		ID:            t.ID,
		Titulo:        t.Titulo,
		Descripcion:   t.Descripcion,
		Completada:    t.Completada,
		FechaCreacion: t.CreatedAt,
	}
}

func tareasToResponses(list []dom.Tarea) []dto.TareaResponse {
	out := make([]dto.TareaResponse, len(list))
	for i := range list {
		out[i] = tareaToResponse(list[i])
	}
	return out
}
