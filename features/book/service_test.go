package book_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"libris/features/book"
	"libris/internal/apperr"
)

// MockRepo implements book.Repository
type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) List(ctx context.Context) ([]book.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]book.Book), args.Error(1)
}
func (m *MockRepo) Get(ctx context.Context, id int64) (*book.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*book.Book), args.Error(1)
}
func (m *MockRepo) Create(ctx context.Context, b *book.Book) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = 1
	}
	return args.Error(0)
}
func (m *MockRepo) Update(ctx context.Context, b *book.Book) error {
	return m.Called(ctx, b).Error(0)
}
func (m *MockRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestCreate_Validation(t *testing.T) {
	repo := new(MockRepo)
	svc := book.NewService(repo)

	_, err := svc.Create(context.Background(), book.CreateInput{Author: "Herbert"})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = svc.Create(context.Background(), book.CreateInput{Title: "Dune", Author: "  "})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	repo.AssertNotCalled(t, "Create")
}

func TestCreate_YearDefaultsToAbsent(t *testing.T) {
	repo := new(MockRepo)
	svc := book.NewService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	b, err := svc.Create(context.Background(), book.CreateInput{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, b.ID)
	assert.Nil(t, b.Year)
}

func TestUpdate_PartialLeavesOtherFields(t *testing.T) {
	repo := new(MockRepo)
	svc := book.NewService(repo)

	year := 1965
	stored := &book.Book{ID: 1, Title: "Dune", Author: "Herbert", Year: &year}
	repo.On("Get", mock.Anything, int64(1)).Return(stored, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	author := "X"
	b, err := svc.Update(context.Background(), 1, book.UpdateInput{Author: &author})
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "X", b.Author)
	require.NotNil(t, b.Year)
	assert.Equal(t, 1965, *b.Year)
}

func TestUpdate_ExplicitNullYearClears(t *testing.T) {
	repo := new(MockRepo)
	svc := book.NewService(repo)

	year := 1965
	stored := &book.Book{ID: 1, Title: "Dune", Author: "Herbert", Year: &year}
	repo.On("Get", mock.Anything, int64(1)).Return(stored, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	var in book.UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"year": null}`), &in))
	assert.True(t, in.Year.Present)

	b, err := svc.Update(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Nil(t, b.Year)
	assert.Equal(t, "Dune", b.Title)
}

func TestUpdate_AbsentYearPreserved(t *testing.T) {
	repo := new(MockRepo)
	svc := book.NewService(repo)

	year := 1965
	stored := &book.Book{ID: 1, Title: "Dune", Author: "Herbert", Year: &year}
	repo.On("Get", mock.Anything, int64(1)).Return(stored, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	var in book.UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"title": "Dune Messiah"}`), &in))
	assert.False(t, in.Year.Present)

	b, err := svc.Update(context.Background(), 1, in)
	require.NoError(t, err)
	require.NotNil(t, b.Year)
	assert.Equal(t, 1965, *b.Year)
	assert.Equal(t, "Dune Messiah", b.Title)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := new(MockRepo)
	svc := book.NewService(repo)

	repo.On("Get", mock.Anything, int64(99)).Return(nil, apperr.New(apperr.NotFound, "book 99 not found"))

	_, err := svc.Update(context.Background(), 99, book.UpdateInput{})
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestDelete_ReturnsDeletedBook(t *testing.T) {
	repo := new(MockRepo)
	svc := book.NewService(repo)

	stored := &book.Book{ID: 1, Title: "Dune", Author: "Herbert"}
	repo.On("Get", mock.Anything, int64(1)).Return(stored, nil)
	repo.On("Delete", mock.Anything, int64(1)).Return(nil)

	b, err := svc.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	repo.AssertExpectations(t)
}
