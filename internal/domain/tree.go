package domain

import (
	"strings"
	"sync"
	"time"
)

// FilterKey selects a view of the top-level tasks.
type FilterKey string

const (
	FilterAll       FilterKey = "all"
	FilterToday     FilterKey = "today"
	FilterCompleted FilterKey = "completed"
)

// ParseFilterKey validates a filter name. Empty means FilterAll.
func ParseFilterKey(s string) (FilterKey, error) {
	switch FilterKey(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterToday:
		return FilterToday, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", ErrInvalidFilter
	}
}

// TaskStats summarizes the whole collection.
type TaskStats struct {
	Total     int
	Completed int
	Today     int
}

// TaskTree is the in-memory cache of the task collection.
// It starts empty and is filled by Replace. Every mutation swaps the whole
// slice, so readers never observe a partially applied change.
type TaskTree struct {
	tasks []*Task
	mu    sync.RWMutex
}

// NewTaskTree creates an empty tree.
func NewTaskTree() *TaskTree {
	return &TaskTree{}
}

// Replace swaps in a freshly loaded collection, preserving its order.
func (t *TaskTree) Replace(tasks []*Task) {
	next := make([]*Task, 0, len(tasks))
	for _, task := range tasks {
		next = append(next, task.Clone())
	}
	t.mu.Lock()
	t.tasks = next
	t.mu.Unlock()
}

// Len returns the number of cached tasks.
func (t *TaskTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tasks)
}

// All returns every cached task.
func (t *TaskTree) All() []*Task {
	return t.collect(func(*Task) bool { return true })
}

// Get returns the task with the given ID, or nil.
func (t *TaskTree) Get(id string) *Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, task := range t.tasks {
		if task.ID == id {
			return task.Clone()
		}
	}
	return nil
}

// Resolve finds a task by full ID or unique ID prefix.
func (t *TaskTree) Resolve(ref string) (*Task, error) {
	if ref == "" {
		return nil, ErrTaskNotFound
	}
	if task := t.Get(ref); task != nil {
		return task, nil
	}
	matches := t.collect(func(task *Task) bool {
		return strings.HasPrefix(task.ID, ref)
	})
	switch len(matches) {
	case 0:
		return nil, ErrTaskNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, ErrAmbiguousTaskID
	}
}

// TopLevel returns the tasks without a parent, in cache order.
func (t *TaskTree) TopLevel() []*Task {
	return t.collect((*Task).IsTopLevel)
}

// ChildrenOf returns the direct children of id, in cache order.
func (t *TaskTree) ChildrenOf(id string) []*Task {
	return t.collect(func(task *Task) bool { return task.IsChildOf(id) })
}

// Filter returns the top-level tasks matching key.
// FilterToday matches tasks due on now's calendar date.
func (t *TaskTree) Filter(key FilterKey, now time.Time) []*Task {
	return t.collect(func(task *Task) bool {
		if !task.IsTopLevel() {
			return false
		}
		switch key {
		case FilterToday:
			return task.IsDueOn(now)
		case FilterCompleted:
			return task.IsCompleted()
		default:
			return true
		}
	})
}

// Stats counts all tasks, completed tasks and tasks due on now's date.
func (t *TaskTree) Stats(now time.Time) TaskStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := TaskStats{Total: len(t.tasks)}
	for _, task := range t.tasks {
		if task.IsCompleted() {
			stats.Completed++
		}
		if task.IsDueOn(now) {
			stats.Today++
		}
	}
	return stats
}

// CascadeDeleteIDs returns rootID and the IDs of all its descendants.
// Nodes already visited are skipped, so malformed parent links cannot
// cause an endless walk.
func (t *TaskTree) CascadeDeleteIDs(rootID string) map[string]struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make(map[string]struct{})
	stack := []string{rootID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := ids[current]; seen {
			continue
		}
		ids[current] = struct{}{}
		for _, task := range t.tasks {
			if task.IsChildOf(current) {
				stack = append(stack, task.ID)
			}
		}
	}
	return ids
}

// RecordCreated prepends a newly created task.
func (t *TaskTree) RecordCreated(task *Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make([]*Task, 0, len(t.tasks)+1)
	next = append(next, task.Clone())
	next = append(next, t.tasks...)
	t.tasks = next
}

// RecordUpdated replaces the cached task with the same ID.
// Unknown IDs are ignored.
func (t *TaskTree) RecordUpdated(task *Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make([]*Task, len(t.tasks))
	for i, cur := range t.tasks {
		if cur.ID == task.ID {
			next[i] = task.Clone()
		} else {
			next[i] = cur
		}
	}
	t.tasks = next
}

// RecordDeletedSet removes every task whose ID is in ids.
func (t *TaskTree) RecordDeletedSet(ids map[string]struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make([]*Task, 0, len(t.tasks))
	for _, task := range t.tasks {
		if _, drop := ids[task.ID]; !drop {
			next = append(next, task)
		}
	}
	t.tasks = next
}

func (t *TaskTree) collect(keep func(*Task) bool) []*Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []*Task
	for _, task := range t.tasks {
		if keep(task) {
			result = append(result, task.Clone())
		}
	}
	return result
}
