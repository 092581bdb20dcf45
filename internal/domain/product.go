package domain

import (
	"bytes"
	"encoding/json"
)

// Product represents an inventory record
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
	Quantity    int     `json:"quantity" db:"quantity"`
}

// ProductInput carries every mutable attribute of a product
type ProductInput struct {
	Name        string
	Description *string
	Price       float64
	Quantity    int
}

// Apply overwrites all mutable attributes of p
func (in ProductInput) Apply(p *Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Quantity = in.Quantity
}

// ProductPatch holds the attributes explicitly sent in a partial update
type ProductPatch struct {
	Name        Optional[string]  `json:"name"`
	Description Optional[string]  `json:"description"`
	Price       Optional[float64] `json:"price"`
	Quantity    Optional[int]     `json:"quantity"`
}

// IsEmpty reports whether the patch carries no field at all
func (p ProductPatch) IsEmpty() bool {
	return !p.Name.Set && !p.Description.Set && !p.Price.Set && !p.Quantity.Set
}

// Apply copies the present fields onto product, leaving absent ones untouched.
// A null description clears it; nulls on the other fields are rejected before this point.
func (p ProductPatch) Apply(product *Product) {
	if p.Name.Present() {
		product.Name = p.Name.Value
	}
	if p.Description.Set {
		product.Description = p.Description.Ptr()
	}
	if p.Price.Present() {
		product.Price = p.Price.Value
	}
	if p.Quantity.Present() {
		product.Quantity = p.Quantity.Value
	}
}

// Optional is a JSON field that remembers whether it was sent and whether it was null
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns an Optional that was explicitly sent as null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Present reports whether the field was sent with a non-null value
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// Ptr returns a pointer to the value, or nil when absent or null
func (o Optional[T]) Ptr() *T {
	if !o.Present() {
		return nil
	}
	v := o.Value
	return &v
}

// UnmarshalJSON is only invoked for keys present in the document, null included
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON encodes absent and null fields as null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
