package model

import (
	"time"

	"github.com/google/uuid"
)

const CategoryNameMaxLen = 100

// Category groups products. Names are unique by convention only.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c Category) String() string {
	return c.Name
}
