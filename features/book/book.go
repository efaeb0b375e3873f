// Package book owns the books table: model, validation and CRUD.
package book

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"libris/internal/apperr"
)

// Book is the external JSON shape: exactly id, title, author, year.
// Year marshals as null when absent.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   *int   `json:"year"`
}

type Repository interface {
	List(ctx context.Context) ([]Book, error)
	Get(ctx context.Context, id int64) (*Book, error)
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// OptionalInt distinguishes an absent JSON field from an explicit null:
// absent leaves the stored value alone, null clears it.
type OptionalInt struct {
	Present bool
	Value   *int
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// CreateInput is the accepted creation payload; unknown fields are ignored
// by the JSON decoder.
type CreateInput struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   *int   `json:"year"`
}

// UpdateInput is a partial update; only supplied fields overwrite.
type UpdateInput struct {
	Title  *string     `json:"title"`
	Author *string     `json:"author"`
	Year   OptionalInt `json:"year"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Book, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Book, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.New(apperr.Validation, "title is required")
	}
	if strings.TrimSpace(in.Author) == "" {
		return nil, apperr.New(apperr.Validation, "author is required")
	}

	b := &Book{Title: in.Title, Author: in.Author, Year: in.Year}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Book, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		b.Title = *in.Title
	}
	if in.Author != nil {
		b.Author = *in.Author
	}
	if in.Year.Present {
		b.Year = in.Year.Value
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes the record and returns the deleted book for the
// confirmation message.
func (s *Service) Delete(ctx context.Context, id int64) (*Book, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
