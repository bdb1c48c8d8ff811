package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/postboard/internal/domain"
)

// PostService implements the post and comment lifecycle on behalf of a
// session principal.
type PostService struct {
	posts     domain.PostRepository
	validator *Validator
}

// NewPostService creates a new PostService.
func NewPostService(posts domain.PostRepository) *PostService {
	return &PostService{posts: posts, validator: NewValidator()}
}

// Create validates and stores a post authored by user.
func (s *PostService) Create(ctx context.Context, user *domain.User, title, content string) (*domain.Post, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := s.validator.Struct(postInput{Title: title, Content: content}); err != nil {
		return nil, err
	}

	post := &domain.Post{
		AuthorID: user.ID,
		Author:   domain.ResolveAuthorName(user),
		Title:    title,
		Content:  content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// ListMine returns the posts stamped with user's resolved author name, oldest first.
func (s *PostService) ListMine(ctx context.Context, user *domain.User) ([]domain.Post, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	posts, err := s.posts.ListByAuthor(ctx, domain.ResolveAuthorName(user))
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return posts, nil
}

// ListAll returns every post, oldest first.
func (s *PostService) ListAll(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Get returns one post with its comments.
func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// Delete removes a post owned by user.
func (s *PostService) Delete(ctx context.Context, user *domain.User, id string) error {
	if user == nil {
		return domain.ErrUnauthorized
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != user.ID {
		return domain.ErrForbidden
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// AddComment appends a comment by user to the post. Surrounding whitespace
// is dropped before validation.
func (s *PostService) AddComment(ctx context.Context, user *domain.User, postID, text string) (*domain.Comment, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}

	text = strings.TrimSpace(text)
	if err := s.validator.Struct(commentInput{Text: text}); err != nil {
		return nil, err
	}

	comment := &domain.Comment{Author: domain.ResolveAuthorName(user), Text: text}
	if err := s.posts.AppendComment(ctx, postID, comment); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("append comment: %w", err)
	}
	return comment, nil
}
