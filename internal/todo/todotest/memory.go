// Package todotest provides an in-memory repository for exercising the
// service and HTTP layers without a database.
package todotest

import (
	"context"
	"sort"
	"sync"

	"github.com/eleven-am/todolist/internal/model"
	"github.com/eleven-am/todolist/internal/store"
)

// Memory mimics the Postgres store: serial ids that are never reused, a
// cascading foreign key from items to lists and all-or-nothing transactions.
type Memory struct {
	mu       sync.Mutex
	lists    map[int64]model.List
	items    map[int64]model.Item
	nextList int64
	nextItem int64

	// FailOn makes the named method return the error instead of running.
	FailOn map[string]error
	// PingErr is returned by Ping.
	PingErr error
}

var _ store.Queries = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		lists:    make(map[int64]model.List),
		items:    make(map[int64]model.Item),
		nextList: 1,
		nextItem: 1,
		FailOn:   make(map[string]error),
	}
}

func (m *Memory) fail(method string) error {
	if err, ok := m.FailOn[method]; ok {
		return err
	}
	return nil
}

func notFound(op, table string) error {
	return &store.Error{Op: op, Table: table, Err: store.ErrNotFound}
}

// Ping returns PingErr.
func (m *Memory) Ping(context.Context) error {
	return m.PingErr
}

// WithTransaction restores the previous state when fn fails or panics.
func (m *Memory) WithTransaction(_ context.Context, fn func(store.Queries) error) error {
	m.mu.Lock()
	lists := make(map[int64]model.List, len(m.lists))
	for k, v := range m.lists {
		lists[k] = v
	}
	items := make(map[int64]model.Item, len(m.items))
	for k, v := range m.items {
		items[k] = v
	}
	m.mu.Unlock()

	committed := false
	defer func() {
		if committed {
			return
		}
		m.mu.Lock()
		m.lists = lists
		m.items = items
		m.mu.Unlock()
	}()

	if err := fn(m); err != nil {
		return err
	}
	if err := m.fail("Commit"); err != nil {
		return err
	}
	committed = true
	return nil
}

func (m *Memory) FindLists(context.Context) ([]model.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("FindLists"); err != nil {
		return nil, err
	}

	lists := make([]model.List, 0, len(m.lists))
	for _, l := range m.lists {
		lists = append(lists, l)
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].ID < lists[j].ID })
	return lists, nil
}

func (m *Memory) FindList(_ context.Context, id int64) (*model.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("FindList"); err != nil {
		return nil, err
	}

	l, ok := m.lists[id]
	if !ok {
		return nil, notFound("find", "todolist")
	}
	return &l, nil
}

func (m *Memory) InsertList(_ context.Context, list *model.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("InsertList"); err != nil {
		return err
	}

	list.ID = m.nextList
	m.nextList++
	stored := *list
	stored.Items = nil
	m.lists[list.ID] = stored
	return nil
}

func (m *Memory) UpdateListCompleted(_ context.Context, id int64, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateListCompleted"); err != nil {
		return err
	}

	l, ok := m.lists[id]
	if !ok {
		return notFound("update", "todolist")
	}
	l.Completed = completed
	m.lists[id] = l
	return nil
}

func (m *Memory) DeleteList(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteList"); err != nil {
		return err
	}

	if _, ok := m.lists[id]; !ok {
		return notFound("delete", "todolist")
	}
	delete(m.lists, id)
	for itemID, it := range m.items {
		if it.ListID == id {
			delete(m.items, itemID)
		}
	}
	return nil
}

func (m *Memory) FindItems(_ context.Context, listID int64) ([]model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("FindItems"); err != nil {
		return nil, err
	}
	return m.itemsOf(listID), nil
}

func (m *Memory) itemsOf(listID int64) []model.Item {
	items := []model.Item{}
	for _, it := range m.items {
		if it.ListID == listID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (m *Memory) LoadItems(_ context.Context, lists []model.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("LoadItems"); err != nil {
		return err
	}

	for i := range lists {
		lists[i].Items = m.itemsOf(lists[i].ID)
	}
	return nil
}

func (m *Memory) InsertItem(_ context.Context, item *model.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("InsertItem"); err != nil {
		return err
	}

	if _, ok := m.lists[item.ListID]; !ok {
		return &store.Error{Op: "insert", Table: "todoitem", Err: store.ErrForeignKey, Constraint: "todoitem_list_id_fkey"}
	}
	item.ID = m.nextItem
	m.nextItem++
	m.items[item.ID] = *item
	return nil
}

func (m *Memory) UpdateItemCompleted(_ context.Context, id int64, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateItemCompleted"); err != nil {
		return err
	}

	it, ok := m.items[id]
	if !ok {
		return notFound("update", "todoitem")
	}
	it.Completed = completed
	m.items[id] = it
	return nil
}

func (m *Memory) UpdateItemsCompletedByList(_ context.Context, listID int64, completed bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateItemsCompletedByList"); err != nil {
		return 0, err
	}

	var n int64
	for id, it := range m.items {
		if it.ListID == listID {
			it.Completed = completed
			m.items[id] = it
			n++
		}
	}
	return n, nil
}

func (m *Memory) DeleteItem(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteItem"); err != nil {
		return err
	}

	if _, ok := m.items[id]; !ok {
		return notFound("delete", "todoitem")
	}
	delete(m.items, id)
	return nil
}

func (m *Memory) DeleteItemsByList(_ context.Context, listID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteItemsByList"); err != nil {
		return 0, err
	}

	var n int64
	for id, it := range m.items {
		if it.ListID == listID {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

// Item returns a stored item, for assertions.
func (m *Memory) Item(id int64) (model.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	return it, ok
}

// List returns a stored list, for assertions.
func (m *Memory) List(id int64) (model.List, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	return l, ok
}
