package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/tasks"
)

// BookStore defines database operations for book management.
type BookStore interface {
	GetByID(id uint) (*entities.Book, error)
	Create(book *entities.Book) error
	List() ([]entities.Book, error)
	UpdateTotalPages(id uint, totalPages int) error
	SetRating(id uint, rating *int) error
}

// PageReader reports the highest recorded page across a book's active sessions.
type PageReader interface {
	HighestCurrentPage(bookID uint) (int, error)
}

// Recalculator recomputes stored percentages synchronously when the task
// queue is not available.
type Recalculator interface {
	RecalculatePercentages(bookID uint, totalPages int) (int64, error)
}

type BooksController struct {
	store        BookStore
	pages        PageReader
	recalculator Recalculator
	taskClient   *tasks.Client
}

func NewBooksController(store BookStore, pages PageReader, recalculator Recalculator, taskClient *tasks.Client) *BooksController {
	return &BooksController{
		store:        store,
		pages:        pages,
		recalculator: recalculator,
		taskClient:   taskClient,
	}
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title      string `json:"title" binding:"required"`
	Author     string `json:"author"`
	ISBN       string `json:"isbn"`
	CoverURL   string `json:"cover_url"`
	TotalPages *int   `json:"total_pages"`
}

// CreateBook adds a new book to the library
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	if req.TotalPages != nil && *req.TotalPages <= 0 {
		respondBadRequest(c, "total_pages must be positive")
		return
	}

	book := &entities.Book{
		Title:      req.Title,
		Author:     req.Author,
		ISBN:       req.ISBN,
		CoverURL:   req.CoverURL,
		TotalPages: req.TotalPages,
	}
	if err := bc.store.Create(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	respondCreated(c, book)
}

// GetAllBooks returns every book in the library
// GET /api/books
func (bc *BooksController) GetAllBooks(c *gin.Context) {
	books, err := bc.store.List()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetBook returns a single book
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetByID(id)
	if err != nil {
		respondNotFound(c, "book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// UpdatePagesRequest is the request body for correcting a book's page count.
type UpdatePagesRequest struct {
	TotalPages int `json:"total_pages" binding:"required"`
}

// UpdateTotalPages corrects a book's page count and recomputes the stored
// percentage of every progress entry in its active sessions. The recompute
// runs on the task queue when one is configured, inline otherwise.
// PUT /api/books/:id/pages
func (bc *BooksController) UpdateTotalPages(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdatePagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "total_pages is required")
		return
	}
	if req.TotalPages <= 0 {
		respondBadRequest(c, "total_pages must be positive")
		return
	}

	if err := bc.store.UpdateTotalPages(id, req.TotalPages); err != nil {
		respondNotFound(c, "book")
		return
	}

	if bc.taskClient != nil {
		task := tasks.RecalculatePercentagesTask{BookID: id, TotalPages: req.TotalPages}
		ids, err := bc.taskClient.Add(task).Save()
		if err != nil {
			respondInternalError(c, err, "enqueue percentage recalculation")
			return
		}
		log.Printf("Enqueued RecalculatePercentagesTask for book %d with ID: %s", id, ids[0])
		respondAccepted(c, "page count updated, recalculation queued", gin.H{"task_id": ids[0]})
		return
	}

	updated, err := bc.recalculator.RecalculatePercentages(id, req.TotalPages)
	if err != nil {
		respondInternalError(c, err, "recalculate percentages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "page count updated",
		"updated_entries": updated,
	})
}

// RateBookRequest is the request body for rating a book. A null rating
// clears the current one.
type RateBookRequest struct {
	Rating *int `json:"rating"`
}

// RateBook sets or clears a book's rating
// PATCH /api/books/:id/rating
func (bc *BooksController) RateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		respondBadRequest(c, "rating must be between 1 and 5")
		return
	}

	if err := bc.store.SetRating(id, req.Rating); err != nil {
		respondNotFound(c, "book")
		return
	}

	book, err := bc.store.GetByID(id)
	if err != nil {
		respondSuccess(c, "rating updated")
		return
	}

	c.JSON(http.StatusOK, book)
}

// GetCurrentPage returns the furthest page recorded across the book's
// active sessions, 0 when nothing is logged
// GET /api/books/:id/current-page
func (bc *BooksController) GetCurrentPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := bc.store.GetByID(id); err != nil {
		respondNotFound(c, "book")
		return
	}

	page, err := bc.pages.HighestCurrentPage(id)
	if err != nil {
		respondInternalError(c, err, "get current page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"book_id": id, "current_page": page})
}
