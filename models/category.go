package models

import (
	"time"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ParentID    *int64    `json:"parentId,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

type CategoryTree struct {
	*Category
	Children []*CategoryTree `json:"children,omitempty"`
}

// CategoryInput is the admin create/update body.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parentId" validate:"omitempty,gt=0"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}
