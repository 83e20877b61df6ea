// Package todo implements the list and item operations on top of a
// transactional repository.
package todo

import (
	"context"
	"fmt"

	"github.com/eleven-am/todolist/internal/logger"
	"github.com/eleven-am/todolist/internal/model"
	"github.com/eleven-am/todolist/internal/store"
)

// Repository is the storage the service needs. *store.Store satisfies it.
type Repository interface {
	store.Queries
	WithTransaction(ctx context.Context, fn func(store.Queries) error) error
	Ping(ctx context.Context) error
}

var _ Repository = (*store.Store)(nil)

// Page is everything the list view renders.
type Page struct {
	Lists    []model.List
	Items    []model.Item
	ActiveID int64
	Active   *model.List
}

// Service performs one read or one atomic mutation per call.
type Service struct {
	repo Repository
	log  logger.Logger
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.Service()}
}

// View loads all lists and the items of listID. An unknown listID yields an
// empty item set and a nil Active list, not an error.
func (s *Service) View(ctx context.Context, listID int64) (*Page, error) {
	lists, err := s.repo.FindLists(ctx)
	if err != nil {
		return nil, translate(err, "lists")
	}

	items, err := s.repo.FindItems(ctx, listID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("items of list %d", listID))
	}

	page := &Page{Lists: lists, Items: items, ActiveID: listID}
	for i := range lists {
		if lists[i].ID == listID {
			page.Active = &lists[i]
			break
		}
	}
	return page, nil
}

// GetList returns one list with its items loaded.
func (s *Service) GetList(ctx context.Context, listID int64) (*model.List, error) {
	if err := validateID("list_id", listID); err != nil {
		return nil, err
	}

	list, err := s.repo.FindList(ctx, listID)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("list %d", listID))
	}

	loaded := []model.List{*list}
	if err := s.repo.LoadItems(ctx, loaded); err != nil {
		return nil, translate(err, fmt.Sprintf("items of list %d", listID))
	}
	return &loaded[0], nil
}

// CreateList inserts a new, not completed, list. The name is stored as given;
// surrounding whitespace only matters to validation.
func (s *Service) CreateList(ctx context.Context, req CreateListRequest) (*model.List, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	list := &model.List{Name: *req.Name, Items: []model.Item{}}
	err := s.repo.WithTransaction(ctx, func(q store.Queries) error {
		return q.InsertList(ctx, list)
	})
	if err != nil {
		return nil, s.fail("create list", translate(err, "list"))
	}

	s.log.Info("list created", "list_id", list.ID, "name", list.Name)
	return list, nil
}

// DeleteList removes the items of the list, then the list, atomically.
func (s *Service) DeleteList(ctx context.Context, listID int64) error {
	if err := validateID("list_id", listID); err != nil {
		return err
	}

	var removed int64
	err := s.repo.WithTransaction(ctx, func(q store.Queries) error {
		if _, err := q.FindList(ctx, listID); err != nil {
			return err
		}
		n, err := q.DeleteItemsByList(ctx, listID)
		if err != nil {
			return err
		}
		removed = n
		return q.DeleteList(ctx, listID)
	})
	if err != nil {
		return s.fail("delete list", translate(err, fmt.Sprintf("list %d", listID)), "list_id", listID)
	}

	s.log.Info("list deleted", "list_id", listID, "items_removed", removed)
	return nil
}

// UpdateList sets the list's completed flag and cascades it to every item
// currently on the list, in one transaction.
func (s *Service) UpdateList(ctx context.Context, listID int64, req UpdateCompletionRequest) error {
	if err := validateID("list_id", listID); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	completed := *req.Completed
	var cascaded int64
	err := s.repo.WithTransaction(ctx, func(q store.Queries) error {
		if err := q.UpdateListCompleted(ctx, listID, completed); err != nil {
			return err
		}
		n, err := q.UpdateItemsCompletedByList(ctx, listID, completed)
		cascaded = n
		return err
	})
	if err != nil {
		return s.fail("update list", translate(err, fmt.Sprintf("list %d", listID)), "list_id", listID)
	}

	s.log.Info("list updated", "list_id", listID, "completed", completed, "items_updated", cascaded)
	return nil
}

// CreateItem inserts a new, not completed, item on an existing list.
func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest) (*model.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item := &model.Item{
		Description: *req.Description,
		ListID:      *req.ListID,
	}
	err := s.repo.WithTransaction(ctx, func(q store.Queries) error {
		if _, err := q.FindList(ctx, item.ListID); err != nil {
			return err
		}
		return q.InsertItem(ctx, item)
	})
	if err != nil {
		return nil, s.fail("create item", translate(err, fmt.Sprintf("list %d", item.ListID)), "list_id", item.ListID)
	}

	s.log.Info("item created", "item_id", item.ID, "list_id", item.ListID)
	return item, nil
}

// UpdateItem sets the completed flag of one item.
func (s *Service) UpdateItem(ctx context.Context, itemID int64, req UpdateCompletionRequest) error {
	if err := validateID("todo_id", itemID); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(q store.Queries) error {
		return q.UpdateItemCompleted(ctx, itemID, *req.Completed)
	})
	if err != nil {
		return s.fail("update item", translate(err, fmt.Sprintf("item %d", itemID)), "item_id", itemID)
	}

	s.log.Info("item updated", "item_id", itemID, "completed", *req.Completed)
	return nil
}

// DeleteItem removes one item. Its list and sibling items are untouched.
func (s *Service) DeleteItem(ctx context.Context, itemID int64) error {
	if err := validateID("todo_id", itemID); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(q store.Queries) error {
		return q.DeleteItem(ctx, itemID)
	})
	if err != nil {
		return s.fail("delete item", translate(err, fmt.Sprintf("item %d", itemID)), "item_id", itemID)
	}

	s.log.Info("item deleted", "item_id", itemID)
	return nil
}

// Ready reports whether the storage backend answers.
func (s *Service) Ready(ctx context.Context) error {
	return translate(s.repo.Ping(ctx), "database")
}

func (s *Service) fail(op string, err error, fields ...interface{}) error {
	args := append([]interface{}{"op", op, "error", err}, fields...)
	if isStorageError(err) {
		s.log.Error("operation failed", args...)
	} else {
		s.log.Debug("operation rejected", args...)
	}
	return err
}
