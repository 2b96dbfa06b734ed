package domain

import "time"

// Tarea is the domain entity for a task. It does not depend on Gin,
// Postgres or Redis.
type Tarea struct {
	ID          int64
	UserID      int64
	Titulo      string
	Descripcion string
	Completada  bool
	CreatedAt   time.Time
}
