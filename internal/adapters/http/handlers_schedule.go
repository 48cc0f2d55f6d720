package web

import (
	"net/http"
	"strconv"
	"time"

	"yourtrainer/internal/adapters/http/middleware"
	"yourtrainer/internal/application/orchestrators"
	"yourtrainer/internal/application/projections"
)

// handleDaySchedule handles GET /api/schedule/day?date=YYYY-MM-DD[&all=1]
// By default the schedule is scoped to the signed-in trainer; all=1 widens it.
func handleDaySchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	dateParam := r.URL.Query().Get("date")
	date := timeNow()
	if dateParam != "" {
		var err error
		date, err = parseDate(dateParam)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	trainerID := sess.AccountID
	if r.URL.Query().Get("all") == "1" && middleware.IsAdmin(r.Context()) {
		trainerID = ""
	}

	entries, err := projections.QueryGetDaySchedule(r.Context(), projections.GetDayScheduleQuery{
		Date:      date,
		TrainerID: trainerID,
	}, projections.GetDayScheduleDeps{
		LessonStore: stores.LessonStore,
		ClientStore: stores.ClientStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleUpcomingLessons handles GET /api/schedule/upcoming?days=N
func handleUpcomingLessons(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = n
	}

	lessons, err := projections.QueryGetUpcomingLessons(r.Context(), projections.GetUpcomingLessonsQuery{
		TrainerID: sess.AccountID,
		Days:      days,
		Now:       timeNow(),
	}, projections.GetUpcomingLessonsDeps{LessonStore: stores.LessonStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

// handleDashboard handles GET /api/dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		TrainerID: sess.AccountID,
		Now:       timeNow(),
	}, projections.GetDashboardDeps{
		ScheduleDeps: projections.GetDayScheduleDeps{
			LessonStore: stores.LessonStore,
			ClientStore: stores.ClientStore,
		},
		ClientStore: stores.ClientStore,
		LessonStore: stores.LessonStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSendReminders handles POST /api/reminders/send {Date}
// Date defaults to tomorrow when absent.
func handleSendReminders(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if emailSender == nil {
		http.Error(w, "email sending is not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Date string
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	date := timeNow().AddDate(0, 0, 1)
	if req.Date != "" {
		var err error
		date, err = parseDate(req.Date)
		if err != nil {
			http.Error(w, "Date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	result, err := orchestrators.ExecuteSendLessonReminders(r.Context(), orchestrators.SendRemindersInput{
		TrainerID: sess.AccountID,
		Date:      date,
	}, orchestrators.SendRemindersDeps{
		LessonStore: stores.LessonStore,
		ClientStore: stores.ClientStore,
		EmailSender: emailSender,
		FromAddress: emailFromAddress,
		ReplyTo:     emailReplyTo,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"sent":    result.Sent,
		"skipped": result.Skipped,
	})
}

// handlePerfSnapshot handles GET /api/perf?minutes=N (admin only)
func handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}
	if !middleware.IsAdmin(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusServiceUnavailable)
		return
	}

	minutes := 15
	if v := r.URL.Query().Get("minutes"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			minutes = n
		}
	}

	snap := perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), 10)
	writeJSON(w, http.StatusOK, snap)
}
