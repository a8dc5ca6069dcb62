package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readtrack/internal/database"
	"github.com/mrlokans/readtrack/internal/database/books"
	"github.com/mrlokans/readtrack/internal/database/progress"
	"github.com/mrlokans/readtrack/internal/database/sessions"
	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/reading"
	"github.com/mrlokans/readtrack/internal/timeline"
)

func setupSessionsTest(t *testing.T) (*database.Database, *gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_sessions_api_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	progressRepo := progress.NewRepository(db.DB)
	service := reading.NewService(
		books.NewRepository(db.DB),
		sessions.NewRepository(db.DB),
		progressRepo,
		timeline.NewValidator(progressRepo),
		time.UTC,
	)

	controller := NewSessionsController(service)
	router := gin.New()
	router.POST("/api/books/:id/status", controller.SetStatus)
	router.POST("/api/books/:id/reread", controller.StartReread)
	router.GET("/api/books/:id/sessions", controller.GetHistory)
	router.GET("/api/books/:id/sessions/active", controller.GetActiveSession)
	router.GET("/api/sessions", controller.ListByStatus)
	router.GET("/api/sessions/queue", controller.GetQueue)
	router.POST("/api/sessions/:id/move-to-top", controller.MoveToTop)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, router, cleanup
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSessionsController_SetStatus(t *testing.T) {
	t.Run("creates the first session for a book", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "First"}).Error)

		w := postJSON(router, "/api/books/1/status", `{"status": "reading", "date": "2026-03-01"}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var session entities.ReadingSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, 1, session.SessionNumber)
		assert.Equal(t, entities.StatusReading, session.Status)
		assert.True(t, session.IsActive)
		require.NotNil(t, session.StartedDate)
		assert.Equal(t, "2026-03-01", *session.StartedDate)
	})

	t.Run("completes a session with review", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "Finished"}).Error)
		postJSON(router, "/api/books/1/status", `{"status": "reading", "date": "2026-03-01"}`)

		w := postJSON(router, "/api/books/1/status", `{"status": "read", "date": "2026-03-20", "review": "Loved it"}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var session entities.ReadingSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, entities.StatusRead, session.Status)
		assert.False(t, session.IsActive)
		require.NotNil(t, session.CompletedDate)
		assert.Equal(t, "2026-03-20", *session.CompletedDate)
		assert.Equal(t, "Loved it", session.Review)
	})

	t.Run("returns 404 for unknown book", func(t *testing.T) {
		_, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		w := postJSON(router, "/api/books/9999/status", `{"status": "reading"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "X"}).Error)

		w := postJSON(router, "/api/books/1/status", `{"status": "paused"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), `"valid":false`)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "X"}).Error)

		w := postJSON(router, "/api/books/1/status", `{"status": "reading", "date": "841276800"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("returns 400 when status field is missing", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "X"}).Error)

		w := postJSON(router, "/api/books/1/status", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionsController_StartReread(t *testing.T) {
	t.Run("opens a second session after the first is read", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "Again"}).Error)
		postJSON(router, "/api/books/1/status", `{"status": "read", "date": "2026-01-15"}`)

		w := postJSON(router, "/api/books/1/reread", `{"date": "2026-05-01"}`)

		assert.Equal(t, http.StatusCreated, w.Code)

		var session entities.ReadingSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, 2, session.SessionNumber)
		assert.Equal(t, entities.StatusReading, session.Status)
		assert.True(t, session.IsActive)
	})

	t.Run("conflicts when the book was never finished", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "Unread"}).Error)

		w := postJSON(router, "/api/books/1/reread", `{}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("conflicts when an active session exists", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "Busy"}).Error)
		postJSON(router, "/api/books/1/status", `{"status": "read", "date": "2026-01-15"}`)
		postJSON(router, "/api/books/1/reread", `{"date": "2026-05-01"}`)

		w := postJSON(router, "/api/books/1/reread", `{"date": "2026-06-01"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSessionsController_Queue(t *testing.T) {
	t.Run("move-to-top reorders the queue", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		for _, title := range []string{"One", "Two", "Three"} {
			require.NoError(t, db.DB.Create(&entities.Book{Title: title}).Error)
		}
		postJSON(router, "/api/books/1/status", `{"status": "read-next"}`)
		postJSON(router, "/api/books/2/status", `{"status": "read-next"}`)
		w := postJSON(router, "/api/books/3/status", `{"status": "read-next"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var third entities.ReadingSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &third))

		w = postJSON(router, "/api/sessions/"+uintToString(third.ID)+"/move-to-top", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var promoted entities.ReadingSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &promoted))
		assert.Equal(t, 0, promoted.ReadNextOrder)

		queueW := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/sessions/queue", nil)
		router.ServeHTTP(queueW, req)

		assert.Equal(t, http.StatusOK, queueW.Code)

		var response struct {
			Sessions []entities.ReadingSession `json:"sessions"`
			Count    int                       `json:"count"`
		}
		require.NoError(t, json.Unmarshal(queueW.Body.Bytes(), &response))
		require.Equal(t, 3, response.Count)
		assert.Equal(t, uint(3), response.Sessions[0].BookID)
		assert.Equal(t, uint(1), response.Sessions[1].BookID)
		assert.Equal(t, uint(2), response.Sessions[2].BookID)
	})

	t.Run("move-to-top conflicts for sessions outside the queue", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "Reading"}).Error)
		w := postJSON(router, "/api/books/1/status", `{"status": "reading"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var session entities.ReadingSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))

		w = postJSON(router, "/api/sessions/"+uintToString(session.ID)+"/move-to-top", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSessionsController_ActiveSession(t *testing.T) {
	t.Run("returns the active session", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "Active"}).Error)
		postJSON(router, "/api/books/1/status", `{"status": "reading"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/1/sessions/active", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var session entities.ReadingSession
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.True(t, session.IsActive)
	})

	t.Run("returns 404 when all sessions are archived", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "Done"}).Error)
		postJSON(router, "/api/books/1/status", `{"status": "read", "date": "2026-01-15"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/1/sessions/active", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSessionsController_History(t *testing.T) {
	t.Run("lists every attempt in order", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "History"}).Error)
		postJSON(router, "/api/books/1/status", `{"status": "read", "date": "2026-01-15"}`)
		postJSON(router, "/api/books/1/reread", `{"date": "2026-05-01"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/1/sessions", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Sessions []entities.ReadingSession `json:"sessions"`
			Count    int                       `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, 2, response.Count)
		assert.Equal(t, 1, response.Sessions[0].SessionNumber)
		assert.Equal(t, 2, response.Sessions[1].SessionNumber)
	})
}

func TestSessionsController_ListByStatus(t *testing.T) {
	t.Run("requires the status parameter", func(t *testing.T) {
		_, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/sessions", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns one session per book", func(t *testing.T) {
		db, router, cleanup := setupSessionsTest(t)
		defer cleanup()

		require.NoError(t, db.DB.Create(&entities.Book{Title: "A"}).Error)
		require.NoError(t, db.DB.Create(&entities.Book{Title: "B"}).Error)
		postJSON(router, "/api/books/1/status", `{"status": "read", "date": "2026-01-15"}`)
		postJSON(router, "/api/books/2/status", `{"status": "reading"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/sessions?status=read", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Sessions []entities.ReadingSession `json:"sessions"`
			Count    int                       `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, 1, response.Count)
		assert.Equal(t, uint(1), response.Sessions[0].BookID)
	})
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
