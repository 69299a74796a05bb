package models

import "github.com/google/uuid"

// Location is a named pickup or drop point offered when filling invoice routes.
type Location struct {
	Base
	AccountID uuid.UUID `gorm:"type:char(36);not null;index" json:"-"`
	Name      string    `gorm:"size:100;not null" json:"name"`
}
