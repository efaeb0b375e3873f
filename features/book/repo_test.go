package book_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/features/book"
	"libris/internal/apperr"
)

func TestSQLiteRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "title", "author", "year"}).
		AddRow(1, "Dune", "Herbert", 1965).
		AddRow(2, "Neuromancer", "Gibson", nil)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, author, year FROM books ORDER BY id`)).
		WillReturnRows(rows)

	repo := book.NewSQLiteRepo(db)
	books, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)
	require.NotNil(t, books[0].Year)
	assert.Equal(t, 1965, *books[0].Year)
	assert.Nil(t, books[1].Year)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepo_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, author, year FROM books WHERE id = ?`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author", "year"}))

	repo := book.NewSQLiteRepo(db)
	_, err = repo.Get(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepo_Create_AssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO books (title, author, year) VALUES (?, ?, ?)`)).
		WithArgs("Dune", "Herbert", nil).
		WillReturnResult(sqlmock.NewResult(7, 1))

	repo := book.NewSQLiteRepo(db)
	b := &book.Book{Title: "Dune", Author: "Herbert"}
	require.NoError(t, repo.Create(context.Background(), b))
	assert.EqualValues(t, 7, b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepo_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE books SET title = ?, author = ?, year = ? WHERE id = ?`)).
		WithArgs("Dune", "Herbert", 1965, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := book.NewSQLiteRepo(db)
	year := 1965
	err = repo.Update(context.Background(), &book.Book{ID: 9, Title: "Dune", Author: "Herbert", Year: &year})
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM books WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := book.NewSQLiteRepo(db)
	require.NoError(t, repo.Delete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM books`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	repo := book.NewSQLiteRepo(db)
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
