package book

import (
	"context"
	"database/sql"
	"errors"

	"libris/internal/apperr"
)

// SQLiteRepo persists books in the service's local database file.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

func (r *SQLiteRepo) List(ctx context.Context) ([]Book, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, author, year FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

func (r *SQLiteRepo) Get(ctx context.Context, id int64) (*Book, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, title, author, year FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.NotFound, "book %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, b *Book) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO books (title, author, year) VALUES (?, ?, ?)`,
		b.Title, b.Author, yearArg(b.Year))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *SQLiteRepo) Update(ctx context.Context, b *Book) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books SET title = ?, author = ?, year = ? WHERE id = ?`,
		b.Title, b.Author, yearArg(b.Year), b.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.NotFound, "book %d not found", b.ID)
	}
	return nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.NotFound, "book %d not found", id)
	}
	return nil
}

func (r *SQLiteRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (*Book, error) {
	var b Book
	var year sql.NullInt64
	if err := s.Scan(&b.ID, &b.Title, &b.Author, &year); err != nil {
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		b.Year = &y
	}
	return &b, nil
}

func yearArg(year *int) any {
	if year == nil {
		return nil
	}
	return *year
}
