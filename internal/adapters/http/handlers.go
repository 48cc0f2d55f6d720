package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"yourtrainer/internal/adapters/http/middleware"
	clientStore "yourtrainer/internal/adapters/storage/client"
	lessonStore "yourtrainer/internal/adapters/storage/lesson"
	"yourtrainer/internal/application/orchestrators"
	"yourtrainer/internal/application/projections"
	clientDomain "yourtrainer/internal/domain/client"
	lessonDomain "yourtrainer/internal/domain/lesson"
	"yourtrainer/internal/domain/schedule"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleDomainError maps known domain and storage errors to HTTP statuses.
// Unrecognized errors are treated as internal.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lessonStore.ErrNotFound), errors.Is(err, clientStore.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, lessonDomain.ErrInvalidTransition), errors.Is(err, lessonStore.ErrReplaceConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, schedule.ErrHorizonExceeded):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, schedule.ErrEmptyDaySet),
		errors.Is(err, schedule.ErrInvalidDay),
		errors.Is(err, schedule.ErrDuplicateDay),
		errors.Is(err, clientDomain.ErrInvalidTotal),
		errors.Is(err, clientDomain.ErrEmptyStartDate),
		errors.Is(err, clientDomain.ErrAlreadyArchived),
		errors.Is(err, clientDomain.ErrNotArchived),
		errors.Is(err, lessonDomain.ErrInvalidRating),
		errors.Is(err, lessonDomain.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		internalError(w, err)
	}
}

// requireSession extracts the authenticated session or writes a 401.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

// parseDate parses a YYYY-MM-DD value.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// parseOptionalDate parses a YYYY-MM-DD value, returning nil when empty.
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/csrf", handleCSRFToken)
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)

	mux.HandleFunc("/api/clients", handleClients)
	mux.HandleFunc("/api/clients/detail", handleClientDetail)
	mux.HandleFunc("/api/clients/update", handleClientUpdate)
	mux.HandleFunc("/api/clients/enrollment", handleClientEnrollment)
	mux.HandleFunc("/api/clients/archive", handleClientArchive)
	mux.HandleFunc("/api/clients/restore", handleClientRestore)
	mux.HandleFunc("/api/clients/delete", handleClientDelete)
	mux.HandleFunc("/api/clients/stats", handleClientStats)

	mux.HandleFunc("/api/lessons", handleLessonAdd)
	mux.HandleFunc("/api/lessons/detail", handleLessonDetail)
	mux.HandleFunc("/api/lessons/complete", handleLessonComplete)
	mux.HandleFunc("/api/lessons/cancel", handleLessonCancel)
	mux.HandleFunc("/api/lessons/no-show", handleLessonNoShow)
	mux.HandleFunc("/api/lessons/edit", handleLessonEdit)
	mux.HandleFunc("/api/lessons/delete", handleLessonDelete)

	mux.HandleFunc("/api/plan/reconcile", handlePlanReconcile)

	mux.HandleFunc("/api/schedule/day", handleDaySchedule)
	mux.HandleFunc("/api/schedule/upcoming", handleUpcomingLessons)
	mux.HandleFunc("/api/dashboard", handleDashboard)

	mux.HandleFunc("/api/reminders/send", handleSendReminders)
	mux.HandleFunc("/api/perf", handlePerfSnapshot)
}

// handleCSRFToken handles GET /api/csrf, issuing a token for form clients.
func handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": csrf.Token(r)})
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.LoginInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]string{
		"account_id": result.AccountID,
		"email":      result.Email,
		"role":       result.Role,
	})
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(middleware.SessionCookieName()); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleClients handles GET (list) and POST (register) for /api/clients
func handleClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == "GET" {
		filter := clientStore.ListFilter{Status: r.URL.Query().Get("status")}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Offset = n
			}
		}

		clients, err := stores.ClientStore.List(ctx, filter)
		if err != nil {
			internalError(w, err)
			return
		}
		if clients == nil {
			clients = []clientDomain.Client{}
		}
		writeJSON(w, http.StatusOK, clients)
		return
	}

	if r.Method == "POST" {
		var req struct {
			Name         string
			Email        string
			Phone        string
			StartDate    string
			TotalLessons int
			WeeklyDays   []string
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		startDate, err := parseDate(req.StartDate)
		if err != nil {
			http.Error(w, "StartDate must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		result, err := orchestrators.ExecuteRegisterClient(ctx, orchestrators.RegisterClientInput{
			TrainerID:    sess.AccountID,
			Name:         req.Name,
			Email:        req.Email,
			Phone:        req.Phone,
			StartDate:    startDate,
			TotalLessons: req.TotalLessons,
			WeeklyDays:   req.WeeklyDays,
		}, orchestrators.RegisterClientDeps{
			ClientStore: stores.ClientStore,
			LessonStore: stores.LessonStore,
			GenerateID:  generateID,
			Now:         timeNow,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":      result.ID,
			"lessons": result.Client.Lessons,
		})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleClientDetail handles GET /api/clients/detail?id=<id>
func handleClientDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	c, err := stores.ClientStore.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	lessons, err := stores.LessonStore.ListByClientID(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}
	if lessons == nil {
		lessons = []lessonDomain.Lesson{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"client":  c,
		"lessons": lessons,
	})
}

// handleClientUpdate handles POST /api/clients/update (contact details only)
func handleClientUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var input orchestrators.UpdateClientInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	c, err := orchestrators.ExecuteUpdateClient(r.Context(), input, orchestrators.UpdateClientDeps{
		ClientStore: stores.ClientStore,
		Now:         timeNow,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleClientEnrollment handles POST /api/clients/enrollment
// Changing the enrollment reconciles the lesson plan in the same request.
func handleClientEnrollment(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req struct {
		ClientID     string
		StartDate    *string
		TotalLessons *int
		WeeklyDays   *[]string
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	input := orchestrators.UpdateEnrollmentInput{
		ClientID:     req.ClientID,
		TotalLessons: req.TotalLessons,
		WeeklyDays:   req.WeeklyDays,
	}
	if req.StartDate != nil {
		d, err := parseDate(*req.StartDate)
		if err != nil {
			http.Error(w, "StartDate must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		input.StartDate = &d
	}

	result, err := orchestrators.ExecuteUpdateEnrollment(r.Context(), input, orchestrators.UpdateEnrollmentDeps{
		ClientStore: stores.ClientStore,
		LessonStore: stores.LessonStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"preserved": result.Preserved,
		"removed":   result.Removed,
		"created":   len(result.Created),
	})
}

// decodeIDRequest reads a {ClientID} or {LessonID}-style single-id body.
type idRequest struct {
	ClientID string `json:",omitempty"`
	LessonID string `json:",omitempty"`
}

// handleClientArchive handles POST /api/clients/archive
func handleClientArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req idRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteArchiveClient(r.Context(), orchestrators.ArchiveClientInput{ClientID: req.ClientID},
		orchestrators.ArchiveClientDeps{ClientStore: stores.ClientStore, Now: timeNow})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClientRestore handles POST /api/clients/restore
func handleClientRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req idRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteRestoreClient(r.Context(), orchestrators.RestoreClientInput{ClientID: req.ClientID},
		orchestrators.RestoreClientDeps{ClientStore: stores.ClientStore, Now: timeNow})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClientDelete handles POST /api/clients/delete
// Deleting a client also removes every lesson that references them.
func handleClientDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req idRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteDeleteClient(r.Context(), orchestrators.DeleteClientInput{ClientID: req.ClientID},
		orchestrators.DeleteClientDeps{ClientStore: stores.ClientStore, LessonStore: stores.LessonStore})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClientStats handles GET /api/clients/stats?id=<id>
// Without an id the stats cover every lesson of the logged-in trainer.
func handleClientStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	query := projections.GetLessonStatsQuery{ClientID: r.URL.Query().Get("id")}
	if query.ClientID == "" {
		query.TrainerID = sess.AccountID
	}

	stats, err := projections.QueryGetLessonStats(r.Context(), query,
		projections.GetLessonStatsDeps{LessonStore: stores.LessonStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
