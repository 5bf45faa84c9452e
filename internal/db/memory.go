package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/BorisDmv/my-todo-api/internal/models"
)

// MemoryStore keeps posts and tasks in process memory. Data is lost on
// restart; it backs STORE_DRIVER=memory and the handler tests.
type MemoryStore struct {
	mu sync.RWMutex

	nextPostID int64
	nextTaskID int64

	posts map[int64]models.Post
	tasks map[int64]models.Task

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextPostID: 1,
		nextTaskID: 1,
		posts:      make(map[int64]models.Post),
		tasks:      make(map[int64]models.Task),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func clonePost(p models.Post) models.Post {
	out := p
	if p.Content != nil {
		c := *p.Content
		out.Content = &c
	}
	return out
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) Close() {}

func (m *MemoryStore) ListPublishedPosts(context.Context) ([]models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if !p.Published {
			continue
		}
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (m *MemoryStore) CreatePost(_ context.Context, title string, content *string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextPostID
	m.nextPostID++

	post := clonePost(models.Post{
		ID:        id,
		Title:     title,
		Content:   content,
		Published: true,
		CreatedAt: m.now(),
	})
	m.posts[id] = post

	out := clonePost(post)
	return &out, nil
}

func (m *MemoryStore) ListTasks(context.Context) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (m *MemoryStore) CreateTask(_ context.Context, title string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextTaskID
	m.nextTaskID++

	task := models.Task{
		ID:        id,
		Title:     title,
		CreatedAt: m.now(),
	}
	m.tasks[id] = task
	return &task, nil
}

func (m *MemoryStore) SetTaskCompleted(_ context.Context, id int64, completed bool) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("update task %d: %w", id, ErrNotFound)
	}
	task.Completed = completed
	m.tasks[id] = task
	return &task, nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	delete(m.tasks, id)
	return nil
}

// newerFirst orders by creation time descending, then id descending.
func newerFirst(aAt time.Time, aID int64, bAt time.Time, bID int64) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return aID > bID
}
