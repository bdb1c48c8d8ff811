package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/postboard/internal/domain"
)

// postRepo implements domain.PostRepository using SQLite. Comments live in
// their own table and are loaded back in insertion order.
type postRepo struct {
	db *sql.DB
}

func (r *postRepo) Create(ctx context.Context, post *domain.Post) error {
	now := time.Now().UTC()
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, author, title, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, post.AuthorID, post.Author, post.Title, post.Content, now,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	post.ID = id
	post.CreatedAt = now
	if post.Comments == nil {
		post.Comments = []domain.Comment{}
	}
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	p := &domain.Post{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, author_id, author, title, content, created_at
		 FROM posts WHERE id = ?`, id,
	).Scan(&p.ID, &p.AuthorID, &p.Author, &p.Title, &p.Content, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	comments, err := r.loadComments(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Comments = comments
	return p, nil
}

func (r *postRepo) ListByAuthor(ctx context.Context, author string) ([]domain.Post, error) {
	return r.list(ctx,
		`SELECT id, author_id, author, title, content, created_at
		 FROM posts WHERE author = ? ORDER BY rowid`, author)
}

func (r *postRepo) ListAll(ctx context.Context) ([]domain.Post, error) {
	return r.list(ctx,
		`SELECT id, author_id, author, title, content, created_at
		 FROM posts ORDER BY rowid`)
}

func (r *postRepo) list(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := []domain.Post{}
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Author, &p.Title, &p.Content, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	// The pool holds one connection, so rows must be released before the
	// comment queries below can run.
	rows.Close()

	for i := range posts {
		comments, err := r.loadComments(ctx, posts[i].ID)
		if err != nil {
			return nil, err
		}
		posts[i].Comments = comments
	}
	return posts, nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendComment inserts the comment in a single statement guarded by the
// existence of the post, so concurrent appends never overwrite each other.
func (r *postRepo) AppendComment(ctx context.Context, postID string, comment *domain.Comment) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (post_id, author, text, created_at)
		 SELECT ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM posts WHERE id = ?)`,
		postID, comment.Author, comment.Text, now, postID,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	comment.CreatedAt = now
	return nil
}

func (r *postRepo) loadComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT author, text, created_at FROM comments WHERE post_id = ? ORDER BY id`, postID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.Author, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
