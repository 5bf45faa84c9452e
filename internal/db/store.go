package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BorisDmv/my-todo-api/internal/models"
)

// ErrNotFound is returned when an update or delete targets a missing row.
var ErrNotFound = errors.New("not found")

var errNotInitialized = errors.New("db not initialized")

//go:embed migrations/001_init.sql
var initSchema string

type Store struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying pgxpool.Pool
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errNotInitialized
	}
	return s.pool.Ping(ctx)
}

// Migrate creates the posts and tasks tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s.pool == nil {
		return errNotInitialized
	}
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, initSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) ListPublishedPosts(ctx context.Context) ([]models.Post, error) {
	if s.pool == nil {
		return nil, errNotInitialized
	}

	const query = `
		SELECT id, title, content, published, created_at
		FROM posts
		WHERE published = true
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.Published,
			&post.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (s *Store) CreatePost(ctx context.Context, title string, content *string) (*models.Post, error) {
	if s.pool == nil {
		return nil, errNotInitialized
	}

	const query = `
		INSERT INTO posts (title, content, published)
		VALUES ($1, $2, true)
		RETURNING id, title, content, published, created_at
	`
	var created models.Post
	err := s.pool.QueryRow(ctx, query, title, content).Scan(
		&created.ID,
		&created.Title,
		&created.Content,
		&created.Published,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &created, nil
}

func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	if s.pool == nil {
		return nil, errNotInitialized
	}

	const query = `
		SELECT id, title, completed, created_at
		FROM tasks
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Completed, &task.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tasks, nil
}

func (s *Store) CreateTask(ctx context.Context, title string) (*models.Task, error) {
	if s.pool == nil {
		return nil, errNotInitialized
	}

	const query = `
		INSERT INTO tasks (title)
		VALUES ($1)
		RETURNING id, title, completed, created_at
	`
	var created models.Task
	err := s.pool.QueryRow(ctx, query, title).Scan(
		&created.ID,
		&created.Title,
		&created.Completed,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &created, nil
}

func (s *Store) SetTaskCompleted(ctx context.Context, id int64, completed bool) (*models.Task, error) {
	if s.pool == nil {
		return nil, errNotInitialized
	}

	const query = `
		UPDATE tasks
		SET completed = $2
		WHERE id = $1
		RETURNING id, title, completed, created_at
	`
	var updated models.Task
	err := s.pool.QueryRow(ctx, query, id, completed).Scan(
		&updated.ID,
		&updated.Title,
		&updated.Completed,
		&updated.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update task %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &updated, nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	if s.pool == nil {
		return errNotInitialized
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	return nil
}
