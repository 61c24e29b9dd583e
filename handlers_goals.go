package main

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
)

// GoalView pairs a goal with its clamped progress percentage.
type GoalView struct {
	GoalRow
	Progress float64
}

func (a *App) handleGoals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}

	userID := getUserID(r)
	goals, err := listGoals(a.db, userID)
	if err != nil {
		log.Printf("Error listing goals: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}

	views := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, GoalView{
			GoalRow:  g,
			Progress: GoalProgress(g.CurrentCents, g.TargetCents),
		})
	}

	categories, err := listCategories(a.db, userID, KindExpense)
	if err != nil {
		log.Printf("Error listing categories: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}

	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "goals.html", map[string]any{
		"User":       currentUser(r),
		"Goals":      views,
		"Categories": categories,
		"Flash":      flash,
		"FlashType":  flashType,
		"CSRFToken":  a.getCSRFToken(r),
	})
}

func (a *App) parseGoalForm(r *http.Request) (FinancialGoal, error) {
	var g FinancialGoal
	g.UserID = getUserID(r)

	g.Name = html.EscapeString(strings.TrimSpace(r.FormValue("name")))
	if g.Name == "" {
		return g, fmt.Errorf("goal name is required")
	}

	var err error
	g.TargetCents, err = parseAmountCents(r.FormValue("target"))
	if err != nil {
		return g, fmt.Errorf("target amount: %v", err)
	}
	g.Deadline, err = parseDate(r.FormValue("deadline"))
	if err != nil {
		return g, fmt.Errorf("invalid deadline")
	}

	g.CategoryID, err = parseOptionalID(r.FormValue("category_id"))
	if err != nil {
		return g, fmt.Errorf("invalid category")
	}
	if g.CategoryID.Valid {
		if _, err := getCategory(a.db, g.UserID, g.CategoryID.Int64); err != nil {
			return g, fmt.Errorf("category not found")
		}
	}

	g.Priority = r.FormValue("priority")
	if !validPriorities[g.Priority] {
		return g, fmt.Errorf("invalid priority")
	}
	return g, nil
}

func (a *App) handleGoalCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	g, err := a.parseGoalForm(r)
	if err != nil {
		a.setFlash(w, "Invalid goal: "+err.Error(), true)
		http.Redirect(w, r, "/goals", http.StatusSeeOther)
		return
	}

	if _, err := createGoal(a.db, g); err != nil {
		log.Printf("Error creating goal: %v", err)
		a.setFlash(w, "Failed to create goal", true)
		http.Redirect(w, r, "/goals", http.StatusSeeOther)
		return
	}
	a.setFlash(w, "Goal created successfully", false)
	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

func (a *App) handleGoalEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}
	id, err := parseInt64(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "bad id", 400)
		return
	}
	userID := getUserID(r)
	g, err := getGoal(a.db, userID, id)
	if err != nil {
		http.Error(w, "Goal not found", 404)
		return
	}
	categories, err := listCategories(a.db, userID, KindExpense)
	if err != nil {
		log.Printf("Error listing categories: %v", err)
		http.Error(w, "Internal server error", 500)
		return
	}
	flash, flashType := a.getFlash(r)
	a.render(w, http.StatusOK, "goal_edit.html", map[string]any{
		"User":       currentUser(r),
		"Goal":       g,
		"Categories": categories,
		"Flash":      flash,
		"FlashType":  flashType,
		"CSRFToken":  a.getCSRFToken(r),
	})
}

func (a *App) handleGoalUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	id, err := parseInt64(r.FormValue("id"))
	if err != nil {
		http.Error(w, "bad id", 400)
		return
	}
	g, err := a.parseGoalForm(r)
	if err != nil {
		a.setFlash(w, "Invalid goal: "+err.Error(), true)
		http.Redirect(w, r, fmt.Sprintf("/goals/edit?id=%d", id), http.StatusSeeOther)
		return
	}
	g.ID = id

	if err := updateGoal(a.db, g); err != nil {
		log.Printf("Error updating goal %d: %v", id, err)
		a.setFlash(w, "Failed to update goal", true)
		http.Redirect(w, r, fmt.Sprintf("/goals/edit?id=%d", id), http.StatusSeeOther)
		return
	}
	a.setFlash(w, "Goal updated successfully", false)
	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

// handleGoalProgress records the amount saved so far; the status flips to
// completed when the target is reached and back when it no longer is.
func (a *App) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	id, err := parseInt64(r.FormValue("id"))
	if err != nil {
		http.Error(w, "bad id", 400)
		return
	}
	current, err := parseAmountCents(r.FormValue("current"))
	if err != nil {
		a.setFlash(w, "Invalid amount: "+err.Error(), true)
		http.Redirect(w, r, "/goals", http.StatusSeeOther)
		return
	}

	userID := getUserID(r)
	if err := updateGoalProgress(a.db, userID, id, current); err != nil {
		log.Printf("Error updating goal progress %d: %v", id, err)
		a.setFlash(w, "Failed to update goal progress", true)
		http.Redirect(w, r, "/goals", http.StatusSeeOther)
		return
	}

	g, err := getGoal(a.db, userID, id)
	if err == nil && g.Status == StatusCompleted {
		a.setFlash(w, fmt.Sprintf("Congratulations! Goal %q is complete.", g.Name), false)
	} else {
		a.setFlash(w, "Goal progress updated", false)
	}
	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

func (a *App) handleGoalDelete(w http.ResponseWriter, r *http.Request) {
	a.confirmThenDelete(w, r, deleteTarget{
		Title:    "Delete goal",
		Action:   "/goals/delete",
		Redirect: "/goals",
		Success:  "Goal deleted",
		Load: func(userID, id int64) (string, error) {
			g, err := getGoal(a.db, userID, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (%s of %s)", g.Name, money(g.CurrentCents), money(g.TargetCents)), nil
		},
		Delete: func(userID, id int64) error {
			return deleteGoal(a.db, userID, id)
		},
	})
}
