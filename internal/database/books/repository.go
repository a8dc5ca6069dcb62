// Package books provides database operations for the book catalog.
//
// This package implements the BookCatalog interface defined in
// internal/reading/service.go and the BookStore interface defined in
// internal/http/books.go.
//
// # Interface Implementation
//
//	var _ reading.BookCatalog = (*Repository)(nil)
//	var _ http.BookStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID(bookID)
package books

import (
	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/entities"
)

// Repository handles all book catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a book by ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Create persists a new book.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// List returns all books ordered by title.
func (r *Repository) List() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("title ASC").Find(&books).Error
	return books, err
}

// UpdateTotalPages sets the book's page count.
func (r *Repository) UpdateTotalPages(id uint, totalPages int) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Update("total_pages", totalPages)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetRating records the user's rating for the book, or clears it when rating
// is nil.
func (r *Repository) SetRating(id uint, rating *int) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Update("rating", rating)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
