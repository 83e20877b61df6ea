package store

import (
	"context"

	"github.com/eleven-am/todolist/internal/model"
)

// FindLists returns every list ordered by id. Items are not loaded.
func (s *Store) FindLists(ctx context.Context) ([]model.List, error) {
	q := psql.Select(listTable.Columns...).
		From(listTable.Name).
		OrderBy(Lists.ID.Asc())

	var lists []model.List
	err := s.run(ctx, OpFind, listTable.Name, q, func(query string, args []interface{}) error {
		return s.executor.SelectContext(ctx, &lists, query, args...)
	})
	if err != nil {
		return nil, err
	}
	if lists == nil {
		lists = []model.List{}
	}
	return lists, nil
}

// FindList returns the list with the given id or an ErrNotFound error.
func (s *Store) FindList(ctx context.Context, id int64) (*model.List, error) {
	q := psql.Select(listTable.Columns...).
		From(listTable.Name).
		Where(Lists.ID.Eq(id).ToSqlizer())

	var list model.List
	err := s.run(ctx, OpFind, listTable.Name, q, func(query string, args []interface{}) error {
		return s.executor.GetContext(ctx, &list, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// InsertList stores a new list and sets its ID.
func (s *Store) InsertList(ctx context.Context, list *model.List) error {
	q := psql.Insert(listTable.Name).
		Columns(Lists.Name.String(), Lists.Completed.String()).
		Values(list.Name, list.Completed).
		Suffix("RETURNING " + listTable.PrimaryKey)

	return s.run(ctx, OpInsert, listTable.Name, q, func(query string, args []interface{}) error {
		return s.executor.GetContext(ctx, &list.ID, query, args...)
	})
}

// UpdateListCompleted sets the completed flag of one list. Child items are
// left alone; see UpdateItemsCompletedByList.
func (s *Store) UpdateListCompleted(ctx context.Context, id int64, completed bool) error {
	q := psql.Update(listTable.Name).
		Set(Lists.Completed.String(), completed).
		Where(Lists.ID.Eq(id).ToSqlizer())

	rows, err := s.exec(ctx, OpUpdate, listTable.Name, q)
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound(string(OpUpdate), listTable.Name)
	}
	return nil
}

// DeleteList removes one list row.
func (s *Store) DeleteList(ctx context.Context, id int64) error {
	q := psql.Delete(listTable.Name).
		Where(Lists.ID.Eq(id).ToSqlizer())

	rows, err := s.exec(ctx, OpDelete, listTable.Name, q)
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound(string(OpDelete), listTable.Name)
	}
	return nil
}
