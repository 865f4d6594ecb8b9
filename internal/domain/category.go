package domain

import "time"

type Category struct {
	ID        int32      `json:"id"`
	Name      string     `json:"name"`
	Color     *string    `json:"color,omitempty"`
	Icon      *string    `json:"icon,omitempty"`
	OrderNum  int32      `json:"orderNum"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	GetByID(id int32) (*Category, error)
	GetAll() ([]*Category, error)
	Update(category *Category) (*Category, error)
	SoftDelete(id int32) error
}
