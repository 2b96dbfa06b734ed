// Package query builds the task listing query. Search, status filter, sort
// and pagination compose into one SELECT whose first predicate is always the
// owner scope; nothing in this package can emit a query that skips it.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Parameter values accepted on the wire.
const (
	EstadoPendiente  = "pendiente"
	EstadoCompletada = "completada"

	OrdenarPorTitulo = "titulo"
	OrdenarPorFecha  = "fecha_creacion"
	OrdenarPorEstado = "estado"

	OrdenAsc  = "asc"
	OrdenDesc = "desc"
)

// Limits holds the configured page size bounds.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

// Params is a normalized listing request. Build one with Parse; a
// zero-value Params is not valid.
type Params struct {
	Busqueda   string
	Estado     string // EstadoPendiente, EstadoCompletada or ""
	OrdenarPor string
	Orden      string
	Pagina     int
	Limite     int
}

// Parse normalizes raw query values into Params. Unknown sort fields and
// directions fall back silently to fecha_creacion desc; pagina and limite
// are clamped rather than rejected.
func Parse(values url.Values, limits Limits) Params {
	p := Params{
		Busqueda:   strings.TrimSpace(values.Get("busqueda")),
		OrdenarPor: OrdenarPorFecha,
		Orden:      OrdenDesc,
		Pagina:     1,
		Limite:     limits.DefaultLimit,
	}

	switch strings.ToLower(strings.TrimSpace(values.Get("estado"))) {
	case EstadoPendiente:
		p.Estado = EstadoPendiente
	case EstadoCompletada:
		p.Estado = EstadoCompletada
	}

	switch strings.ToLower(strings.TrimSpace(values.Get("ordenar_por"))) {
	case OrdenarPorTitulo:
		p.OrdenarPor = OrdenarPorTitulo
	case OrdenarPorEstado:
		p.OrdenarPor = OrdenarPorEstado
	case OrdenarPorFecha:
		p.OrdenarPor = OrdenarPorFecha
	}

	if strings.ToLower(strings.TrimSpace(values.Get("orden"))) == OrdenAsc {
		p.Orden = OrdenAsc
	}

	if n, err := strconv.Atoi(values.Get("pagina")); err == nil && n > 1 {
		p.Pagina = n
	}
	if n, err := strconv.Atoi(values.Get("limite")); err == nil {
		switch {
		case n < 1:
			p.Limite = 1
		case n > limits.MaxLimit:
			p.Limite = limits.MaxLimit
		default:
			p.Limite = n
		}
	}
	return p
}

// CacheKey returns a stable representation of the params for cache keys.
func (p Params) CacheKey() string {
	return strings.Join([]string{
		strings.ToLower(p.Busqueda),
		p.Estado,
		p.OrdenarPor,
		p.Orden,
		strconv.Itoa(p.Pagina),
		strconv.Itoa(p.Limite),
	}, ":")
}

// sortColumns whitelists ORDER BY targets. Values are column expressions,
// never user input.
var sortColumns = map[string]string{
	OrdenarPorTitulo: "titulo",
	OrdenarPorFecha:  "fecha_creacion",
	OrdenarPorEstado: "completada",
}

// where builds the shared predicate list. The owner scope is placed first
// and unconditionally; search and status append after it.
func (p Params) where(ownerID int64) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{ownerID}

	if p.Busqueda != "" {
		args = append(args, "%"+escapeLike(p.Busqueda)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(titulo ILIKE $%d OR descripcion ILIKE $%d)", n, n))
	}
	if p.Estado != "" {
		args = append(args, p.Estado == EstadoCompletada)
		conds = append(conds, fmt.Sprintf("completada = $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

// escapeLike makes the search text literal inside an ILIKE pattern.
var escapeLike = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace

// SelectTareas returns the page query and its arguments.
func (p Params) SelectTareas(ownerID int64) (string, []any) {
	where, args := p.where(ownerID)

	dir := "DESC"
	if p.Orden == OrdenAsc {
		dir = "ASC"
	}
	col, ok := sortColumns[p.OrdenarPor]
	if !ok {
		col = "fecha_creacion"
	}
	// id tiebreak keeps the order stable across identical requests.
	orderBy := col + " " + dir + ", id ASC"

	args = append(args, p.Limite, (p.Pagina-1)*p.Limite)
	q := fmt.Sprintf(`
		SELECT id, user_id, titulo, descripcion, completada, fecha_creacion
		FROM tareas WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		where, orderBy, len(args)-1, len(args))
	return q, args
}

// CountTareas returns the pre-pagination count query over the same filters.
func (p Params) CountTareas(ownerID int64) (string, []any) {
	where, args := p.where(ownerID)
	return "SELECT COUNT(*) FROM tareas WHERE " + where, args
}

// Paginacion is the metadata returned next to a page of results.
type Paginacion struct {
	PaginaActual  int   `json:"pagina_actual"`
	Limite        int   `json:"limite"`
	TotalTareas   int64 `json:"total_tareas"`
	TotalPaginas  int   `json:"total_paginas"`
	TieneSig      bool  `json:"tiene_siguiente"`
	TieneAnterior bool  `json:"tiene_anterior"`
}

// Meta computes pagination metadata from the pre-pagination total.
func (p Params) Meta(total int64) Paginacion {
	totalPaginas := int((total + int64(p.Limite) - 1) / int64(p.Limite))
	return Paginacion{
		PaginaActual:  p.Pagina,
		Limite:        p.Limite,
		TotalTareas:   total,
		TotalPaginas:  totalPaginas,
		TieneSig:      p.Pagina < totalPaginas,
		TieneAnterior: p.Pagina > 1,
	}
}
