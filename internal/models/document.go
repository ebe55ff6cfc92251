package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an owned JSON blob. Identifier is chosen by the caller and is
// unique per owner.
type Document struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Identifier string    `json:"identifier" gorm:"not null;uniqueIndex:idx_documents_owner_identifier"`
	OwnerID    uuid.UUID `json:"ownerId" gorm:"type:uuid;not null;uniqueIndex:idx_documents_owner_identifier"`
	Category   string    `json:"category" gorm:"index"`
	Public     bool      `json:"public" gorm:"default:false;index"`
	Title      string    `json:"title"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (d *Document) Field(name string) (any, bool) {
	switch name {
	case "id":
		return d.ID, true
	case "identifier":
		return d.Identifier, true
	case "owner_id":
		return d.OwnerID, true
	case "category":
		return d.Category, true
	case "public":
		return d.Public, true
	}
	return nil, false
}
