package item

import "errors"

var (
	ErrNotFound        = errors.New("item not found")
	ErrInvalidEditMode = errors.New("invalid edit mode")
	ErrInvalidItem     = errors.New("invalid item")
)
