package mock

import (
	"context"

	"github.com/fwojciec/shelf"
)

var _ shelf.BookService = (*BookService)(nil)

// BookService is a mock implementation of shelf.BookService.
type BookService struct {
	CreateBookFn    func(ctx context.Context, book *shelf.Book) error
	FindBookByIDFn  func(ctx context.Context, id string) (*shelf.Book, error)
	FindBookByURLFn func(ctx context.Context, url string) (*shelf.Book, error)
	FindBooksFn     func(ctx context.Context, filter shelf.BookFilter) ([]*shelf.Book, error)
	UpdateBookFn    func(ctx context.Context, id string, upd shelf.BookUpdate) (*shelf.Book, error)
	DeleteBookFn    func(ctx context.Context, id string) error
}

func (s *BookService) CreateBook(ctx context.Context, book *shelf.Book) error {
	return s.CreateBookFn(ctx, book)
}

func (s *BookService) FindBookByID(ctx context.Context, id string) (*shelf.Book, error) {
	return s.FindBookByIDFn(ctx, id)
}

func (s *BookService) FindBookByURL(ctx context.Context, url string) (*shelf.Book, error) {
	return s.FindBookByURLFn(ctx, url)
}

func (s *BookService) FindBooks(ctx context.Context, filter shelf.BookFilter) ([]*shelf.Book, error) {
	return s.FindBooksFn(ctx, filter)
}

func (s *BookService) UpdateBook(ctx context.Context, id string, upd shelf.BookUpdate) (*shelf.Book, error) {
	return s.UpdateBookFn(ctx, id, upd)
}

func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	return s.DeleteBookFn(ctx, id)
}
