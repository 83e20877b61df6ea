package store

import "github.com/Masterminds/squirrel"

// Column represents a type-safe database column reference
type Column[T any] struct {
	Name string
}

func (c Column[T]) String() string {
	return c.Name
}

// Eq creates an equality condition
func (c Column[T]) Eq(value T) Condition {
	return Condition{squirrel.Eq{c.Name: value}}
}

// In creates an IN condition
func (c Column[T]) In(values ...T) Condition {
	return Condition{squirrel.Eq{c.Name: values}}
}

// Asc creates an ascending order expression
func (c Column[T]) Asc() string {
	return c.Name + " ASC"
}

// Condition wraps squirrel conditions for type safety
type Condition struct {
	condition squirrel.Sqlizer
}

func (c Condition) ToSqlizer() squirrel.Sqlizer {
	return c.condition
}

// Table provides table-level metadata
type Table struct {
	Name       string
	PrimaryKey string
	Columns    []string
}

var listTable = Table{
	Name:       "todolist",
	PrimaryKey: "id",
	Columns:    []string{"id", "name", "completed"},
}

var itemTable = Table{
	Name:       "todoitem",
	PrimaryKey: "id",
	Columns:    []string{"id", "description", "completed", "list_id"},
}

// Lists holds the typed columns of the todolist table.
var Lists = struct {
	ID        Column[int64]
	Name      Column[string]
	Completed Column[bool]
}{
	ID:        Column[int64]{Name: "id"},
	Name:      Column[string]{Name: "name"},
	Completed: Column[bool]{Name: "completed"},
}

// Items holds the typed columns of the todoitem table.
var Items = struct {
	ID          Column[int64]
	Description Column[string]
	Completed   Column[bool]
	ListID      Column[int64]
}{
	ID:          Column[int64]{Name: "id"},
	Description: Column[string]{Name: "description"},
	Completed:   Column[bool]{Name: "completed"},
	ListID:      Column[int64]{Name: "list_id"},
}
