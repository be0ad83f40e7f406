package entity

import (
	"time"

	"github.com/google/uuid"
)

type Base struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Common field names shared by every entity.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

func baseFields() []Field {
	return []Field{
		{Name: FieldID, Column: "id", Kind: KindUUID, Unique: true},
		{Name: FieldCreatedAt, Column: "created_at", Kind: KindTime},
		{Name: FieldUpdatedAt, Column: "updated_at", Kind: KindTime},
	}
}

func (b *Base) baseFieldPtr(name string) any {
	switch name {
	case FieldID:
		return &b.ID
	case FieldCreatedAt:
		return &b.CreatedAt
	case FieldUpdatedAt:
		return &b.UpdatedAt
	}
	return nil
}
