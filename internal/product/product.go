// Package product reads and updates product records on the host platform.
package product

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no product has the requested id.
var ErrNotFound = errors.New("product: not found")

// Product is the subset of a product record the panel works with.
type Product struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Update carries the fields written back to a product.
type Update struct {
	Description string `json:"description"`
}

// Getter loads a product by id.
type Getter interface {
	Get(ctx context.Context, id string) (Product, error)
}

// Updater writes fields of an existing product.
type Updater interface {
	Update(ctx context.Context, id string, u Update) error
}

// Store is a full product collaborator.
type Store interface {
	Getter
	Updater
}

// StatusError is a non-2xx response from the product API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("product: HTTP %d", e.Code)
	}
	return fmt.Sprintf("product: HTTP %d: %s", e.Code, e.Message)
}
