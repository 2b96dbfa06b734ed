package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/Jairo-Bargas/Api-project/internal/app"
	"github.com/Jairo-Bargas/Api-project/internal/auth"
	dom "github.com/Jairo-Bargas/Api-project/internal/domain"
	"github.com/Jairo-Bargas/Api-project/internal/handlers"
	"github.com/Jairo-Bargas/Api-project/internal/query"
	"github.com/Jairo-Bargas/Api-project/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// memUserRepo and memTareaRepo back the HTTP tests without Postgres. The
// tarea repo applies the composed listing semantics in Go so the full
// search/filter/sort/pagination surface can be exercised end to end.

type memUserRepo struct {
	nextID int64
	users  map[int64]dom.User
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r *memUserRepo) Create(_ context.Context, username, email, passwordHash string) (dom.User, error) {
	u := dom.User{ID: r.nextID, Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.nextID++
	r.users[u.ID] = u
	return u, nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	delete(r.users, id)
	return nil
}

type memTareaRepo struct {
	nextID int64
	tareas []dom.Tarea
}

func (r *memTareaRepo) Create(_ context.Context, t dom.Tarea) (dom.Tarea, error) {
	t.ID = r.nextID
	r.nextID++
	// Distinct timestamps keep fecha_creacion ordering meaningful.
	t.CreatedAt = time.Unix(1700000000+t.ID, 0).UTC()
	r.tareas = append(r.tareas, t)
	return t, nil
}

func (r *memTareaRepo) GetByID(_ context.Context, userID, id int64) (dom.Tarea, error) {
	for _, t := range r.tareas {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return dom.Tarea{}, pgx.ErrNoRows
}

func (r *memTareaRepo) List(_ context.Context, userID int64, p query.Params) ([]dom.Tarea, int64, error) {
	var filtered []dom.Tarea
	for _, t := range r.tareas {
		if t.UserID != userID {
			continue
		}
		if p.Busqueda != "" {
			q := strings.ToLower(p.Busqueda)
			if !strings.Contains(strings.ToLower(t.Titulo), q) &&
				!strings.Contains(strings.ToLower(t.Descripcion), q) {
				continue
			}
		}
		if p.Estado == query.EstadoCompletada && !t.Completada {
			continue
		}
		if p.Estado == query.EstadoPendiente && t.Completada {
			continue
		}
		filtered = append(filtered, t)
	}

	sort.Slice(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		var less, eq bool
		switch p.OrdenarPor {
		case query.OrdenarPorTitulo:
			less, eq = a.Titulo < b.Titulo, a.Titulo == b.Titulo
		case query.OrdenarPorEstado:
			less, eq = !a.Completada && b.Completada, a.Completada == b.Completada
		default:
			less, eq = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
		if eq {
			return a.ID < b.ID
		}
		if p.Orden == query.OrdenDesc {
			return !less
		}
		return less
	})

	total := int64(len(filtered))
	start := (p.Pagina - 1) * p.Limite
	if start >= len(filtered) {
		return nil, total, nil
	}
	end := start + p.Limite
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

func (r *memTareaRepo) Update(_ context.Context, userID, id int64, patch dom.Tarea) (dom.Tarea, error) {
	for i, t := range r.tareas {
		if t.ID == id && t.UserID == userID {
			t.Titulo, t.Descripcion, t.Completada = patch.Titulo, patch.Descripcion, patch.Completada
			r.tareas[i] = t
			return t, nil
		}
	}
	return dom.Tarea{}, pgx.ErrNoRows
}

func (r *memTareaRepo) Delete(_ context.Context, userID, id int64) (dom.Tarea, error) {
	for i, t := range r.tareas {
		if t.ID == id && t.UserID == userID {
			r.tareas = append(r.tareas[:i], r.tareas[i+1:]...)
			return t, nil
		}
	}
	return dom.Tarea{}, pgx.ErrNoRows
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	userSvc := service.NewUserService(&memUserRepo{nextID: 1, users: make(map[int64]dom.User)})
	tareaSvc := service.NewTareaService(&memTareaRepo{nextID: 1}, nil)
	authHandler := handlers.NewAuthHandler(tokens, userSvc)
	tareaHandler := handlers.NewTareaHandler(tareaSvc, query.Limits{DefaultLimit: 10, MaxLimit: 100})

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(handlers.NoRoute)
	r.NoMethod(handlers.NoMethod)

	api := r.Group("", app.RequireJSONBody())
	api.POST("/registro", authHandler.Register)
	api.POST("/login", authHandler.Login)

	protected := api.Group("", auth.RequireToken(tokens))
	protected.DELETE("/cuenta", authHandler.DeleteAccount)
	protected.POST("/tareas", tareaHandler.Create)
	protected.GET("/tareas", tareaHandler.List)
	protected.GET("/tareas/:id", tareaHandler.GetByID)
	protected.PUT("/tareas/:id", tareaHandler.Update)
	protected.DELETE("/tareas/:id", tareaHandler.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

func register(t *testing.T, r *gin.Engine, username, email string) {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/registro", "", map[string]any{
		"username": username, "email": email, "password": "abc123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %v", username, w.Code, body)
	}
}

func login(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/login", "", map[string]any{
		"username": username, "password": "abc123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %v", username, w.Code, body)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatalf("login %s: no access_token in %v", username, body)
	}
	return token
}

func createTarea(t *testing.T, r *gin.Engine, token, titulo, descripcion string, completada bool) int64 {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/tareas", token, map[string]any{
		"titulo": titulo, "descripcion": descripcion, "completada": completada,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create %q: %d %v", titulo, w.Code, body)
	}
	tarea := body["tarea"].(map[string]any)
	return int64(tarea["id"].(float64))
}

func listTareas(t *testing.T, r *gin.Engine, token, rawQuery string) ([]map[string]any, map[string]any) {
	t.Helper()
	path := "/tareas"
	if rawQuery != "" {
		path += "?" + rawQuery
	}
	w, body := doJSON(t, r, http.MethodGet, path, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list %q: %d %v", rawQuery, w.Code, body)
	}
	raw, _ := body["tareas"].([]any)
	tareas := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		tareas = append(tareas, item.(map[string]any))
	}
	meta, _ := body["paginacion"].(map[string]any)
	return tareas, meta
}

func TestRegisterResponseHidesPassword(t *testing.T) {
	r := newTestRouter()
	w, body := doJSON(t, r, http.MethodPost, "/registro", "", map[string]any{
		"username": "ana12", "email": "ana@x.co", "password": "abc123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %v", w.Code, body)
	}
	usuario := body["usuario"].(map[string]any)
	if usuario["username"] != "ana12" || usuario["email"] != "ana@x.co" {
		t.Fatalf("usuario = %v", usuario)
	}
	for key := range usuario {
		if strings.Contains(strings.ToLower(key), "password") {
			t.Fatalf("password material leaked in response: %v", usuario)
		}
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r := newTestRouter()
	register(t, r, "ana12", "ana@x.co")

	w, body := doJSON(t, r, http.MethodPost, "/registro", "", map[string]any{
		"username": "ana12", "email": "otra@x.co", "password": "abc123",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body["mensaje"] != "El username ya esta en uso" {
		t.Fatalf("mensaje = %v", body["mensaje"])
	}
}

func TestRegisterValidationMessage(t *testing.T) {
	r := newTestRouter()
	w, body := doJSON(t, r, http.MethodPost, "/registro", "", map[string]any{
		"username": "ab", "email": "ana@x.co", "password": "abc123",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body["mensaje"] != "El username debe tener entre 3 y 20 caracteres" {
		t.Fatalf("mensaje = %v", body["mensaje"])
	}
}

func TestMutatingRequestNeedsJSONContentType(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/registro",
		strings.NewReader(`{"username":"ana12","email":"ana@x.co","password":"abc123"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Content-Type debe ser application/json") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestLoginUniformFailureMessage(t *testing.T) {
	r := newTestRouter()
	register(t, r, "ana12", "ana@x.co")

	unknown, unknownBody := doJSON(t, r, http.MethodPost, "/login", "", map[string]any{
		"username": "nadie", "password": "abc123",
	})
	wrong, wrongBody := doJSON(t, r, http.MethodPost, "/login", "", map[string]any{
		"username": "ana12", "password": "xyz789",
	})
	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d / %d, want 401", unknown.Code, wrong.Code)
	}
	if unknownBody["mensaje"] != wrongBody["mensaje"] {
		t.Fatalf("messages differ: %v vs %v", unknownBody["mensaje"], wrongBody["mensaje"])
	}
}

func TestTokenFailureKinds(t *testing.T) {
	r := newTestRouter()

	w, body := doJSON(t, r, http.MethodGet, "/tareas", "", nil)
	if w.Code != http.StatusUnauthorized || body["mensaje"] != "Token de autorizacion faltante" {
		t.Fatalf("missing token: %d %v", w.Code, body)
	}

	w, body = doJSON(t, r, http.MethodGet, "/tareas", "token_invalido_123", nil)
	if w.Code != http.StatusUnauthorized || body["mensaje"] != "Token invalido" {
		t.Fatalf("malformed token: %d %v", w.Code, body)
	}

	shortIssuer := auth.NewTokenIssuer("test-secret", time.Nanosecond)
	expired, err := shortIssuer.Issue(1)
	if err != nil {
		t.Fatalf("issue short-lived token: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	w, body = doJSON(t, r, http.MethodGet, "/tareas", expired, nil)
	if w.Code != http.StatusUnauthorized || body["mensaje"] != "Token expirado" {
		t.Fatalf("expired token: %d %v", w.Code, body)
	}
}

func TestOwnerIsolation(t *testing.T) {
	r := newTestRouter()
	register(t, r, "usera", "a@x.co")
	register(t, r, "userb", "b@x.co")
	tokenA := login(t, r, "usera")
	tokenB := login(t, r, "userb")

	id := createTarea(t, r, tokenA, "Buy milk", "2%", false)

	tareas, _ := listTareas(t, r, tokenB, "")
	if len(tareas) != 0 {
		t.Fatalf("user B sees %d tareas of user A", len(tareas))
	}

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var payload any
		if method == http.MethodPut {
			payload = map[string]any{"titulo": "x", "descripcion": "y"}
		}
		w, body := doJSON(t, r, method, fmt.Sprintf("/tareas/%d", id), tokenB, payload)
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s as user B: status = %d, want 404 (%v)", method, w.Code, body)
		}
		if body["mensaje"] != "Tarea no encontrada" {
			t.Fatalf("%s as user B: mensaje = %v", method, body["mensaje"])
		}
	}

	// The tarea survives untouched for its owner.
	tareas, _ = listTareas(t, r, tokenA, "")
	if len(tareas) != 1 || tareas[0]["titulo"] != "Buy milk" {
		t.Fatalf("owner listing broken: %v", tareas)
	}
}

func TestCreateFetchRoundTrip(t *testing.T) {
	r := newTestRouter()
	register(t, r, "ana12", "ana@x.co")
	token := login(t, r, "ana12")

	id := createTarea(t, r, token, "Aprender SQL", "Consultas basicas", false)
	tareas, _ := listTareas(t, r, token, "")
	if len(tareas) != 1 {
		t.Fatalf("len = %d", len(tareas))
	}
	got := tareas[0]
	if int64(got["id"].(float64)) != id {
		t.Fatalf("id = %v, want %d", got["id"], id)
	}
	if got["titulo"] != "Aprender SQL" || got["descripcion"] != "Consultas basicas" || got["completada"] != false {
		t.Fatalf("round trip mismatch: %v", got)
	}
	if got["fecha_creacion"] == nil || got["fecha_creacion"] == "" {
		t.Fatalf("fecha_creacion missing: %v", got)
	}
}

func TestCreateRejectsWhitespaceTitulo(t *testing.T) {
	r := newTestRouter()
	register(t, r, "ana12", "ana@x.co")
	token := login(t, r, "ana12")

	w, body := doJSON(t, r, http.MethodPost, "/tareas", token, map[string]any{
		"titulo": "   ", "descripcion": "x",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%v)", w.Code, body)
	}
	if body["mensaje"] != "El titulo debe tener entre 1 y 100 caracteres" {
		t.Fatalf("mensaje = %v", body["mensaje"])
	}

	// Nothing with an empty title reached the store.
	tareas, _ := listTareas(t, r, token, "")
	if len(tareas) != 0 {
		t.Fatalf("tarea persisted despite invalid titulo: %v", tareas)
	}
}

func TestUpdateSemantics(t *testing.T) {
	r := newTestRouter()
	register(t, r, "ana12", "ana@x.co")
	token := login(t, r, "ana12")
	id := createTarea(t, r, token, "Tarea", "desc", true)

	// titulo and descripcion are required on every update.
	w, body := doJSON(t, r, http.MethodPut, fmt.Sprintf("/tareas/%d", id), token, map[string]any{
		"descripcion": "solo desc",
	})
	if w.Code != http.StatusBadRequest || body["mensaje"] != "El campo titulo es obligatorio" {
		t.Fatalf("partial update accepted: %d %v", w.Code, body)
	}

	// Omitted completada keeps the stored value.
	w, body = doJSON(t, r, http.MethodPut, fmt.Sprintf("/tareas/%d", id), token, map[string]any{
		"titulo": "Nueva", "descripcion": "otra",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %v", w.Code, body)
	}
	tarea := body["tarea"].(map[string]any)
	if tarea["completada"] != true {
		t.Fatalf("completada flipped: %v", tarea)
	}
}

func TestDeleteReturnsPriorRepresentation(t *testing.T) {
	r := newTestRouter()
	register(t, r, "ana12", "ana@x.co")
	token := login(t, r, "ana12")
	id := createTarea(t, r, token, "Borrar", "luego", true)

	w, body := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/tareas/%d", id), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d %v", w.Code, body)
	}
	tarea := body["tarea"].(map[string]any)
	if tarea["titulo"] != "Borrar" || tarea["completada"] != true {
		t.Fatalf("prior representation missing: %v", tarea)
	}

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/tareas/%d", id), token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d, want 404", w.Code)
	}
}

func TestPaginationScenario(t *testing.T) {
	r := newTestRouter()
	register(t, r, "ana12", "ana@x.co")
	token := login(t, r, "ana12")
	for i := 1; i <= 6; i++ {
		createTarea(t, r, token, fmt.Sprintf("Test %d", i), fmt.Sprintf("tarea %d", i), false)
	}

	tareas, meta := listTareas(t, r, token, "pagina=1&limite=2")
	if len(tareas) != 2 {
		t.Fatalf("page size = %d, want 2", len(tareas))
	}
	if meta["total_paginas"] != float64(3) || meta["total_tareas"] != float64(6) {
		t.Fatalf("meta = %v", meta)
	}
	if meta["tiene_siguiente"] != true || meta["tiene_anterior"] != false {
		t.Fatalf("meta = %v", meta)
	}

	// pagina=0 coerces to 1.
	_, meta = listTareas(t, r, token, "pagina=0&limite=2")
	if meta["pagina_actual"] != float64(1) {
		t.Fatalf("pagina_actual = %v, want 1", meta["pagina_actual"])
	}

	// limite above the ceiling clamps to it.
	_, meta = listTareas(t, r, token, "limite=1000")
	if meta["limite"] != float64(100) {
		t.Fatalf("limite = %v, want 100", meta["limite"])
	}
}

// Concatenating all pages at fixed filters reproduces the full set exactly.
func TestPageConcatenationIsComplete(t *testing.T) {
	r := newTestRouter()
	register(t, r, "ana12", "ana@x.co")
	token := login(t, r, "ana12")
	for i := 1; i <= 7; i++ {
		createTarea(t, r, token, fmt.Sprintf("Test %d", i), "x", i%2 == 0)
	}

	seen := make(map[int64]bool)
	var order []int64
	for page := 1; page <= 4; page++ {
		tareas, _ := listTareas(t, r, token, fmt.Sprintf("pagina=%d&limite=2&orden=asc", page))
		for _, tarea := range tareas {
			id := int64(tarea["id"].(float64))
			if seen[id] {
				t.Fatalf("id %d appeared twice", id)
			}
			seen[id] = true
			order = append(order, id)
		}
	}
	if len(seen) != 7 {
		t.Fatalf("concatenated pages hold %d tareas, want 7", len(seen))
	}
	for i := 1; i < len(order); i++ {
		if order[i] <= order[i-1] {
			t.Fatalf("ordering drifted across pages: %v", order)
		}
	}
}

func TestSearchFilterSortScenario(t *testing.T) {
	r := newTestRouter()
	register(t, r, "ana12", "ana@x.co")
	token := login(t, r, "ana12")

	createTarea(t, r, token, "Aprender Python", "Estudiar sintaxis basica de Python", false)
	createTarea(t, r, token, "Crear API Flask", "Desarrollar API REST", false)
	createTarea(t, r, token, "Proyecto Python", "Aplicacion web con python", true)
	createTarea(t, r, token, "Hacer ejercicio", "Descripcion sobre PYTHON tambien", false)

	// Case-insensitive over titulo OR descripcion.
	tareas, _ := listTareas(t, r, token, "busqueda=Python")
	if len(tareas) != 3 {
		t.Fatalf("busqueda=Python: %d results, want 3", len(tareas))
	}

	// Combined with estado narrows further.
	tareas, _ = listTareas(t, r, token, "busqueda=Python&estado=pendiente")
	if len(tareas) != 2 {
		t.Fatalf("busqueda+pendiente: %d results, want 2", len(tareas))
	}

	// Combined with ordenar_por=titulo orders alphabetically.
	tareas, _ = listTareas(t, r, token, "busqueda=Python&ordenar_por=titulo&orden=asc")
	var titles []string
	for _, tarea := range tareas {
		titles = append(titles, tarea["titulo"].(string))
	}
	if !sort.StringsAreSorted(titles) {
		t.Fatalf("titles not sorted: %v", titles)
	}
}

func TestSortingIsDeterministic(t *testing.T) {
	r := newTestRouter()
	register(t, r, "ana12", "ana@x.co")
	token := login(t, r, "ana12")
	// Identical titles force the tiebreak.
	for i := 0; i < 5; i++ {
		createTarea(t, r, token, "Mismo titulo", "x", false)
	}

	first, _ := listTareas(t, r, token, "ordenar_por=titulo&orden=asc")
	second, _ := listTareas(t, r, token, "ordenar_por=titulo&orden=asc")
	for i := range first {
		if first[i]["id"] != second[i]["id"] {
			t.Fatalf("order changed between identical requests: %v vs %v", first, second)
		}
	}
}

func TestDeleteAccountRemovesTareas(t *testing.T) {
	r := newTestRouter()
	register(t, r, "ana12", "ana@x.co")
	token := login(t, r, "ana12")
	createTarea(t, r, token, "Tarea", "desc", false)

	w, _ := doJSON(t, r, http.MethodDelete, "/cuenta", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete account: %d", w.Code)
	}

	// The login no longer works once the account is gone.
	w, _ = doJSON(t, r, http.MethodPost, "/login", "", map[string]any{
		"username": "ana12", "password": "abc123",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login after delete: %d, want 401", w.Code)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	r := newTestRouter()

	w, body := doJSON(t, r, http.MethodGet, "/ruta_inexistente", "", nil)
	if w.Code != http.StatusNotFound || body["mensaje"] != "Ruta no encontrada" {
		t.Fatalf("unknown route: %d %v", w.Code, body)
	}

	w, body = doJSON(t, r, http.MethodPut, "/registro", "", map[string]any{})
	if w.Code != http.StatusMethodNotAllowed || body["mensaje"] != "Metodo no permitido" {
		t.Fatalf("wrong method: %d %v", w.Code, body)
	}
}
