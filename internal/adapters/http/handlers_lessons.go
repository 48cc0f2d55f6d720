package web

import (
	"bytes"
	"net/http"

	"yourtrainer/internal/application/orchestrators"
)

// handleLessonAdd handles POST /api/lessons, creating a one-off lesson
// outside the generated plan.
func handleLessonAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req struct {
		ClientID    string
		PlannedDate string
		PlannedTime string
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	date, err := parseDate(req.PlannedDate)
	if err != nil {
		http.Error(w, "PlannedDate must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	l, err := orchestrators.ExecuteAddLesson(r.Context(), orchestrators.AddLessonInput{
		ClientID:    req.ClientID,
		PlannedDate: date,
		PlannedTime: req.PlannedTime,
	}, orchestrators.AddLessonDeps{
		ClientStore: stores.ClientStore,
		LessonStore: stores.LessonStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// handleLessonDetail handles GET /api/lessons/detail?id=<id>
// Notes are markdown; the response carries both the raw text and rendered HTML.
func handleLessonDetail(w http.ResponseWriter, r *http.Request) {
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

	l, err := stores.LessonStore.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	var notesHTML bytes.Buffer
	if l.Notes != "" {
		if err := mdRenderer.Convert([]byte(l.Notes), &notesHTML); err != nil {
			internalError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lesson":     l,
		"notes_html": notesHTML.String(),
	})
}

// handleLessonComplete handles POST /api/lessons/complete
func handleLessonComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req struct {
		LessonID   string
		ActualDate string
		ActualTime string
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	input := orchestrators.CompleteLessonInput{LessonID: req.LessonID, ActualTime: req.ActualTime}
	if req.ActualDate != "" {
		d, err := parseDate(req.ActualDate)
		if err != nil {
			http.Error(w, "ActualDate must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		input.ActualDate = d
	}

	l, err := orchestrators.ExecuteCompleteLesson(r.Context(), input, orchestrators.CompleteLessonDeps{
		LessonStore: stores.LessonStore,
		Now:         timeNow,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleLessonCancel handles POST /api/lessons/cancel
func handleLessonCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req struct {
		LessonID string
		Reason   string
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	l, err := orchestrators.ExecuteCancelLesson(r.Context(), orchestrators.CancelLessonInput{
		LessonID: req.LessonID,
		Reason:   req.Reason,
	}, orchestrators.CancelLessonDeps{
		LessonStore: stores.LessonStore,
		Now:         timeNow,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleLessonNoShow handles POST /api/lessons/no-show
func handleLessonNoShow(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req struct {
		LessonID   string
		ActualDate string
		ActualTime string
		Reason     string
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	input := orchestrators.MarkNoShowInput{LessonID: req.LessonID, ActualTime: req.ActualTime, Reason: req.Reason}
	if req.ActualDate != "" {
		d, err := parseDate(req.ActualDate)
		if err != nil {
			http.Error(w, "ActualDate must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		input.ActualDate = d
	}

	l, err := orchestrators.ExecuteMarkLessonNoShow(r.Context(), input, orchestrators.MarkNoShowDeps{
		LessonStore: stores.LessonStore,
		Now:         timeNow,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleLessonEdit handles POST /api/lessons/edit
// Absent fields are left unchanged; editing is allowed in any status.
func handleLessonEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req struct {
		LessonID          string
		PlannedDate       *string
		PlannedTime       *string
		ActualDate        *string
		ActualTime        *string
		Status            *string
		Notes             *string
		Exercises         *[]string
		DifficultyRating  *int
		PerformanceRating *int
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	input := orchestrators.EditLessonInput{
		LessonID:          req.LessonID,
		PlannedTime:       req.PlannedTime,
		ActualTime:        req.ActualTime,
		Status:            req.Status,
		Notes:             req.Notes,
		Exercises:         req.Exercises,
		DifficultyRating:  req.DifficultyRating,
		PerformanceRating: req.PerformanceRating,
	}
	if req.PlannedDate != nil {
		d, err := parseDate(*req.PlannedDate)
		if err != nil {
			http.Error(w, "PlannedDate must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		input.PlannedDate = &d
	}
	if req.ActualDate != nil {
		d, err := parseDate(*req.ActualDate)
		if err != nil {
			http.Error(w, "ActualDate must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		input.ActualDate = &d
	}

	l, err := orchestrators.ExecuteEditLesson(r.Context(), input, orchestrators.EditLessonDeps{
		LessonStore: stores.LessonStore,
		Now:         timeNow,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleLessonDelete handles POST /api/lessons/delete
func handleLessonDelete(w http.ResponseWriter, r *http.Request) {
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

	err := orchestrators.ExecuteDeleteLesson(r.Context(), orchestrators.DeleteLessonInput{LessonID: req.LessonID},
		orchestrators.DeleteLessonDeps{LessonStore: stores.LessonStore})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePlanReconcile handles POST /api/plan/reconcile, rebuilding a client's
// planned lessons against their current enrollment.
func handlePlanReconcile(w http.ResponseWriter, r *http.Request) {
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

	result, err := orchestrators.ExecuteReconcilePlan(r.Context(), orchestrators.ReconcilePlanInput{ClientID: req.ClientID},
		orchestrators.ReconcilePlanDeps{
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
