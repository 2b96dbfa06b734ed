package dto

import "time"

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UsuarioResponse is the serialized user. The password hash never leaves
// the service.
type UsuarioResponse struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FechaCreacion time.Time `json:"fecha_creacion"`
}
