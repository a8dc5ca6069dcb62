// Command generate_demo creates a demo database with sample reading history.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/database"
	"github.com/mrlokans/readtrack/internal/database/books"
	"github.com/mrlokans/readtrack/internal/database/progress"
	"github.com/mrlokans/readtrack/internal/database/sessions"
	"github.com/mrlokans/readtrack/internal/dates"
	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/reading"
	"github.com/mrlokans/readtrack/internal/timeline"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	// Seed through the lifecycle service so session numbering, queue order
	// and timeline ordering hold in the generated data.
	bookRepo := books.NewRepository(db.DB)
	sessionRepo := sessions.NewRepository(db.DB)
	progressRepo := progress.NewRepository(db.DB)
	validator := timeline.NewValidator(progressRepo)
	service := reading.NewService(bookRepo, sessionRepo, progressRepo, validator, time.UTC)

	gen := &generator{db: db.DB, books: bookRepo, service: service}

	gen.finishedBook()
	gen.rereadBook()
	gen.currentPageBook()
	gen.currentPercentBook()
	gen.abandonedBook()
	gen.queuedBooks()
	gen.wishlistBook()
	gen.legacyImportBook()

	log.Println("Demo database generated successfully!")
}

type generator struct {
	db      *gorm.DB
	books   *books.Repository
	service *reading.Service
}

// daysAgo renders the calendar day n days before today (UTC).
func daysAgo(n int) string {
	return time.Now().UTC().AddDate(0, 0, -n).Format(dates.Layout)
}

func (g *generator) createBook(title, author string, totalPages int) *entities.Book {
	book := &entities.Book{Title: title, Author: author}
	if totalPages > 0 {
		book.TotalPages = &totalPages
	}
	if err := g.books.Create(book); err != nil {
		log.Fatalf("Failed to create book %q: %v", title, err)
	}
	log.Printf("Saved: %s by %s", title, author)
	return book
}

func (g *generator) setStatus(bookID uint, status entities.ReadingStatus, date, review string) *entities.ReadingSession {
	session, err := g.service.SetStatus(bookID, reading.StatusChange{Status: status, Date: date, Review: review})
	if err != nil {
		log.Fatalf("Failed to set status %s on book %d: %v", status, bookID, err)
	}
	return session
}

func (g *generator) logPage(sessionID uint, page int, date, notes string) {
	_, err := g.service.LogProgress(sessionID, reading.ProgressInput{Page: &page, Date: date, Notes: notes})
	if err != nil {
		log.Fatalf("Failed to log page %d on session %d: %v", page, sessionID, err)
	}
}

func (g *generator) logPercent(sessionID uint, percentage int, date, notes string) {
	_, err := g.service.LogProgress(sessionID, reading.ProgressInput{Percentage: &percentage, Date: date, Notes: notes})
	if err != nil {
		log.Fatalf("Failed to log %d%% on session %d: %v", percentage, sessionID, err)
	}
}

func (g *generator) rate(bookID uint, rating int) {
	if err := g.books.SetRating(bookID, &rating); err != nil {
		log.Fatalf("Failed to rate book %d: %v", bookID, err)
	}
}

// finishedBook seeds a complete read with a review and a rating.
func (g *generator) finishedBook() {
	book := g.createBook("The Left Hand of Darkness", "Ursula K. Le Guin", 304)

	session := g.setStatus(book.ID, entities.StatusReading, daysAgo(40), "")
	g.logPage(session.ID, 45, daysAgo(38), "Slow start, but the Gethen worldbuilding lands")
	g.logPage(session.ID, 120, daysAgo(35), "")
	g.logPage(session.ID, 213, daysAgo(31), "The ice crossing chapters are extraordinary")
	g.logPage(session.ID, 270, daysAgo(28), "")
	g.setStatus(book.ID, entities.StatusRead, daysAgo(27),
		"Genuinely great. The kemmer chapters reframe everything that came before.")
	g.rate(book.ID, 5)
}

// rereadBook seeds a book finished long ago with a second session in flight.
func (g *generator) rereadBook() {
	book := g.createBook("Piranesi", "Susanna Clarke", 245)

	first := g.setStatus(book.ID, entities.StatusReading, daysAgo(400), "")
	g.logPage(first.ID, 80, daysAgo(398), "")
	g.logPage(first.ID, 190, daysAgo(393), "The House is the best character of the year")
	g.setStatus(book.ID, entities.StatusRead, daysAgo(390), "The beauty of the House is immeasurable.")
	g.rate(book.ID, 4)

	second, err := g.service.StartReread(book.ID, daysAgo(6))
	if err != nil {
		log.Fatalf("Failed to start reread of %q: %v", book.Title, err)
	}
	g.logPage(second.ID, 60, daysAgo(4), "")
	g.logPage(second.ID, 112, daysAgo(2), "Rereading with the ending in mind changes all the journal entries")
}

// currentPageBook seeds an in-flight read tracked by page.
func (g *generator) currentPageBook() {
	book := g.createBook("A Memory Called Empire", "Arkady Martine", 462)

	session := g.setStatus(book.ID, entities.StatusReading, daysAgo(12), "")
	g.logPage(session.ID, 30, daysAgo(11), "")
	g.logPage(session.ID, 85, daysAgo(8), "Imperial poetry as a plot device, somehow it works")
	g.logPage(session.ID, 140, daysAgo(5), "")
	g.logPage(session.ID, 228, daysAgo(1), "")
}

// currentPercentBook seeds an in-flight read tracked by percentage only,
// the way audiobooks and fixed-layout ebooks are logged.
func (g *generator) currentPercentBook() {
	book := g.createBook("Project Hail Mary", "Andy Weir", 0)

	session := g.setStatus(book.ID, entities.StatusReading, daysAgo(15), "")
	g.logPercent(session.ID, 25, daysAgo(13), "")
	g.logPercent(session.ID, 55, daysAgo(9), "Rocky might be the best first contact ever written")
	g.logPercent(session.ID, 80, daysAgo(2), "")
}

// abandonedBook seeds a did-not-finish with some recorded progress.
func (g *generator) abandonedBook() {
	book := g.createBook("Ulysses", "James Joyce", 730)

	session := g.setStatus(book.ID, entities.StatusReading, daysAgo(90), "")
	g.logPage(session.ID, 68, daysAgo(85), "")
	g.logPage(session.ID, 102, daysAgo(80), "")
	g.setStatus(book.ID, entities.StatusDNF, daysAgo(78), "Lost momentum in the newspaper chapter. Another year.")
}

// queuedBooks seeds the read-next queue, with the last addition promoted to
// the top of the queue.
func (g *generator) queuedBooks() {
	dispossessed := g.createBook("The Dispossessed", "Ursula K. Le Guin", 387)
	annihilation := g.createBook("Annihilation", "Jeff VanderMeer", 195)
	fifthSeason := g.createBook("The Fifth Season", "N.K. Jemisin", 468)

	g.setStatus(dispossessed.ID, entities.StatusReadNext, daysAgo(20), "")
	g.setStatus(annihilation.ID, entities.StatusReadNext, daysAgo(14), "")
	promoted := g.setStatus(fifthSeason.ID, entities.StatusReadNext, daysAgo(3), "")

	if _, err := g.service.MoveToTop(promoted.ID); err != nil {
		log.Fatalf("Failed to move session %d to the top of the queue: %v", promoted.ID, err)
	}
}

// wishlistBook seeds a plain to-read entry with no progress.
func (g *generator) wishlistBook() {
	book := g.createBook("Middlemarch", "George Eliot", 880)
	g.setStatus(book.ID, entities.StatusToRead, daysAgo(60), "")
}

// legacyImportBook seeds a book finished years ago by an importer that wrote
// epoch seconds into the date columns. These rows are deliberately written
// raw: scoped stats exclude them and the consistency sweep reports them.
func (g *generator) legacyImportBook() {
	book := g.createBook("Snow Crash", "Neal Stephenson", 440)

	session := &entities.ReadingSession{
		BookID:        book.ID,
		SessionNumber: 1,
		Status:        entities.StatusRead,
		IsActive:      false,
		StartedDate:   strPtr("2016-02-11"),
		CompletedDate: strPtr("1456704000"),
	}
	if err := g.db.Create(session).Error; err != nil {
		log.Fatalf("Failed to seed legacy session for %q: %v", book.Title, err)
	}

	entry := &entities.ProgressLog{
		BookID:       book.ID,
		SessionID:    session.ID,
		CurrentPage:  440,
		ProgressDate: "1456617600",
		PagesRead:    440,
	}
	if err := g.db.Create(entry).Error; err != nil {
		log.Fatalf("Failed to seed legacy progress for %q: %v", book.Title, err)
	}
}

func strPtr(s string) *string {
	return &s
}
