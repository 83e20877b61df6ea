// Package model holds the persisted records of the to-do service.
package model

// List is a named container of items with its own completion flag.
type List struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Completed bool   `db:"completed" json:"completed"`

	// Relationships
	Items []Item `db:"-" json:"items"`
}

// Item is a single to-do entry. ListID never changes after creation.
type Item struct {
	ID          int64  `db:"id" json:"id"`
	Description string `db:"description" json:"description"`
	Completed   bool   `db:"completed" json:"completed"`
	ListID      int64  `db:"list_id" json:"listId"`
}

// Done counts the completed items currently loaded on the list.
func (l List) Done() int {
	n := 0
	for _, it := range l.Items {
		if it.Completed {
			n++
		}
	}
	return n
}
