package repo

import (
	"context"

	dom "github.com/Jairo-Bargas/Api-project/internal/domain"
	"github.com/Jairo-Bargas/Api-project/internal/query"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TareaRepo provides task persistence. Every lookup is keyed by (id, user_id)
// jointly so a task under a different owner behaves exactly like a missing
// row: the caller sees pgx.ErrNoRows either way.
type TareaRepo interface {
	Create(ctx context.Context, t dom.Tarea) (dom.Tarea, error)
	GetByID(ctx context.Context, userID, id int64) (dom.Tarea, error)
	List(ctx context.Context, userID int64, p query.Params) ([]dom.Tarea, int64, error)
	Update(ctx context.Context, userID, id int64, t dom.Tarea) (dom.Tarea, error)
	Delete(ctx context.Context, userID, id int64) (dom.Tarea, error)
}

type PGTareaRepo struct {
	db *pgxpool.Pool
}

func NewPGTareaRepo(db *pgxpool.Pool) *PGTareaRepo {
	return &PGTareaRepo{db: db}
}

func (r *PGTareaRepo) Create(ctx context.Context, t dom.Tarea) (dom.Tarea, error) {
	q := `
		INSERT INTO tareas (user_id, titulo, descripcion, completada)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, titulo, descripcion, completada, fecha_creacion`
	var out dom.Tarea
	err := r.db.QueryRow(ctx, q, t.UserID, t.Titulo, t.Descripcion, t.Completada).Scan(
		&out.ID, &out.UserID, &out.Titulo, &out.Descripcion, &out.Completada, &out.CreatedAt,
	)
	return out, err
}

func (r *PGTareaRepo) GetByID(ctx context.Context, userID, id int64) (dom.Tarea, error) {
	q := `
		SELECT id, user_id, titulo, descripcion, completada, fecha_creacion
		FROM tareas WHERE id = $1 AND user_id = $2`
	var t dom.Tarea
	err := r.db.QueryRow(ctx, q, id, userID).Scan(
		&t.ID, &t.UserID, &t.Titulo, &t.Descripcion, &t.Completada, &t.CreatedAt,
	)
	return t, err
}

// List runs the composed query and returns the page plus the pre-pagination
// total over the same filters.
func (r *PGTareaRepo) List(ctx context.Context, userID int64, p query.Params) ([]dom.Tarea, int64, error) {
	countSQL, countArgs := p.CountTareas(userID)
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	selectSQL, selectArgs := p.SelectTareas(userID)
	rows, err := r.db.Query(ctx, selectSQL, selectArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []dom.Tarea
	for rows.Next() {
		var t dom.Tarea
		if err := rows.Scan(&t.ID, &t.UserID, &t.Titulo, &t.Descripcion, &t.Completada, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

func (r *PGTareaRepo) Update(ctx context.Context, userID, id int64, t dom.Tarea) (dom.Tarea, error) {
	q := `
		UPDATE tareas SET titulo = $3, descripcion = $4, completada = $5
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, titulo, descripcion, completada, fecha_creacion`
	var out dom.Tarea
	err := r.db.QueryRow(ctx, q, id, userID, t.Titulo, t.Descripcion, t.Completada).Scan(
		&out.ID, &out.UserID, &out.Titulo, &out.Descripcion, &out.Completada, &out.CreatedAt,
	)
	return out, err
}

// Delete hard-deletes the row and returns its prior representation.
func (r *PGTareaRepo) Delete(ctx context.Context, userID, id int64) (dom.Tarea, error) {
	q := `
		DELETE FROM tareas WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, titulo, descripcion, completada, fecha_creacion`
	var t dom.Tarea
	err := r.db.QueryRow(ctx, q, id, userID).Scan(
		&t.ID, &t.UserID, &t.Titulo, &t.Descripcion, &t.Completada, &t.CreatedAt,
	)
	return t, err
}
