package models

import "home-layout/internal/layout/models"

// ============================================================
// User Model
// ============================================================

type User struct {
	ID           string `json:"id"`
	Login        string `json:"login"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	CreatedAt    string `json:"created_at"`
}

// ============================================================
// Floor Layout
// ============================================================

// FloorLayout: сохраненная раскладка этажа. Save перезаписывает ее целиком.
type FloorLayout struct {
	FloorID   string        `json:"floorId"`
	OwnerID   string        `json:"ownerId"`
	Rooms     []models.Room `json:"layout"`
	UpdatedAt string        `json:"updatedAt"`
}
