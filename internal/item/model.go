package item

import (
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID          string    `json:"id" dynamodbav:"id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description" dynamodbav:"description"`
	Price       float64   `json:"price" dynamodbav:"price"`
	Comments    []string  `json:"comments" dynamodbav:"comments"`
	Ratings     []float64 `json:"ratings" dynamodbav:"ratings"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// normalize replaces nil lists so they serialize as [] instead of null.
func (i *Item) normalize() *Item {
	if i.Comments == nil {
		i.Comments = []string{}
	}
	if i.Ratings == nil {
		i.Ratings = []float64{}
	}
	return i
}

// CreateRequest holds the caller supplied fields of a new item. Comments
// and ratings are not accepted here; they only grow through interactions.
type CreateRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil
}

func (p Patch) Apply(i *Item) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Price != nil {
		i.Price = *p.Price
	}
}

// ValidID reports whether id can name a stored item. Every backend keys
// items by UUID, so anything else can never be found.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
