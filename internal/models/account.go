package models

// Account is the tenant: the authenticated login that owns every other record.
type Account struct {
	Base
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
}
