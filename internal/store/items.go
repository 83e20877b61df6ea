package store

import (
	"context"

	"github.com/eleven-am/todolist/internal/model"
)

// FindItems returns the items of one list ordered by id.
func (s *Store) FindItems(ctx context.Context, listID int64) ([]model.Item, error) {
	q := psql.Select(itemTable.Columns...).
		From(itemTable.Name).
		Where(Items.ListID.Eq(listID).ToSqlizer()).
		OrderBy(Items.ID.Asc())

	var items []model.Item
	err := s.run(ctx, OpFind, itemTable.Name, q, func(query string, args []interface{}) error {
		return s.executor.SelectContext(ctx, &items, query, args...)
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// LoadItems fills Items on every list with a single query.
func (s *Store) LoadItems(ctx context.Context, lists []model.List) error {
	if len(lists) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(lists))
	for _, l := range lists {
		ids = append(ids, l.ID)
	}

	q := psql.Select(itemTable.Columns...).
		From(itemTable.Name).
		Where(Items.ListID.In(ids...).ToSqlizer()).
		OrderBy(Items.ID.Asc())

	var items []model.Item
	err := s.run(ctx, OpFind, itemTable.Name, q, func(query string, args []interface{}) error {
		return s.executor.SelectContext(ctx, &items, query, args...)
	})
	if err != nil {
		return err
	}

	grouped := make(map[int64][]model.Item, len(lists))
	for _, it := range items {
		grouped[it.ListID] = append(grouped[it.ListID], it)
	}
	for i := range lists {
		if group, ok := grouped[lists[i].ID]; ok {
			lists[i].Items = group
		} else {
			lists[i].Items = []model.Item{}
		}
	}
	return nil
}

// InsertItem stores a new item and sets its ID.
func (s *Store) InsertItem(ctx context.Context, item *model.Item) error {
	q := psql.Insert(itemTable.Name).
		Columns(Items.Description.String(), Items.Completed.String(), Items.ListID.String()).
		Values(item.Description, item.Completed, item.ListID).
		Suffix("RETURNING " + itemTable.PrimaryKey)

	return s.run(ctx, OpInsert, itemTable.Name, q, func(query string, args []interface{}) error {
		return s.executor.GetContext(ctx, &item.ID, query, args...)
	})
}

// UpdateItemCompleted sets the completed flag of one item.
func (s *Store) UpdateItemCompleted(ctx context.Context, id int64, completed bool) error {
	q := psql.Update(itemTable.Name).
		Set(Items.Completed.String(), completed).
		Where(Items.ID.Eq(id).ToSqlizer())

	rows, err := s.exec(ctx, OpUpdate, itemTable.Name, q)
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound(string(OpUpdate), itemTable.Name)
	}
	return nil
}

// UpdateItemsCompletedByList sets the completed flag on every item of a list.
func (s *Store) UpdateItemsCompletedByList(ctx context.Context, listID int64, completed bool) (int64, error) {
	q := psql.Update(itemTable.Name).
		Set(Items.Completed.String(), completed).
		Where(Items.ListID.Eq(listID).ToSqlizer())

	return s.exec(ctx, OpUpdate, itemTable.Name, q)
}

// DeleteItem removes one item row.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	q := psql.Delete(itemTable.Name).
		Where(Items.ID.Eq(id).ToSqlizer())

	rows, err := s.exec(ctx, OpDelete, itemTable.Name, q)
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound(string(OpDelete), itemTable.Name)
	}
	return nil
}

// DeleteItemsByList removes every item of a list.
func (s *Store) DeleteItemsByList(ctx context.Context, listID int64) (int64, error) {
	q := psql.Delete(itemTable.Name).
		Where(Items.ListID.Eq(listID).ToSqlizer())

	return s.exec(ctx, OpDelete, itemTable.Name, q)
}
