// Package layer implements visibility groupings for items. A layer is toggled
// active or inactive per account; inactive layers hide their items from both
// the calendar expansion and the balance computation.
package layer

import "errors"

var ErrNotFound = errors.New("layer not found")

type Layer struct {
	ID        int64
	AccountID int64
	Name      string
	IsActive  bool
}

// Clone returns a copy of the layer.
func (l *Layer) Clone() *Layer {
	c := *l
	return &c
}
