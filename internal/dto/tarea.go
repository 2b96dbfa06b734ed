package dto

import (
	"time"

	"github.com/Jairo-Bargas/Api-project/internal/query"
)

type TareaResponse struct {
	ID            int64     `json:"id"`
	Titulo        string    `json:"titulo"`
	Descripcion   string    `json:"descripcion"`
	Completada    bool      `json:"completada"`
	FechaCreacion time.Time `json:"fecha_creacion"`
}

type ListTareasResponse struct {
	Tareas     []TareaResponse  `json:"tareas"`
	Paginacion query.Paginacion `json:"paginacion"`
}
