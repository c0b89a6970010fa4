package web

import (
	"net/http"
	"testing"
	"time"

	"github.com/Olprog59/go-familyhub/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_CRUDAndRange(t *testing.T) {
	s := newTestServer(t)
	s.signUp("admin@family.test")
	alice := s.signUp("alice@family.test")
	bob := s.signUp("bob@family.test")

	now := time.Now().UTC().Truncate(time.Second)
	soon := now.Add(48 * time.Hour)
	later := now.Add(40 * 24 * time.Hour)

	var birthday dto.EventDTOResponse
	alice.call(http.MethodPost, "/api/events", dto.EventDTOReq{Title: "Grandpa's birthday", StartsAt: soon, Location: "Lyon"}, http.StatusCreated, &birthday)
	alice.call(http.MethodPost, "/api/events", dto.EventDTOReq{Title: "Summer trip", StartsAt: later}, http.StatusCreated, nil)

	end := soon.Add(-time.Hour)
	var invalid struct {
		Fields map[string]string `json:"fields"`
	}
	alice.call(http.MethodPost, "/api/events", dto.EventDTOReq{Title: "Backwards", StartsAt: soon, EndsAt: &end}, http.StatusBadRequest, &invalid)
	assert.Contains(t, invalid.Fields, "ends_at")

	var week dto.ListDTOResponse[dto.EventDTOResponse]
	bob.call(http.MethodGet, "/api/events?from="+now.Format(time.RFC3339)+"&to="+now.Add(7*24*time.Hour).Format(time.RFC3339), nil, http.StatusOK, &week)
	require.Len(t, week.Items, 1)
	assert.Equal(t, birthday.ID, week.Items[0].ID)

	var upcoming []dto.EventDTOResponse
	bob.call(http.MethodGet, "/api/events/upcoming?limit=1", nil, http.StatusOK, &upcoming)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Grandpa's birthday", upcoming[0].Title)

	bob.call(http.MethodGet, "/api/events?from=yesterday", nil, http.StatusBadRequest, nil)

	path := "/api/events/" + itoa(birthday.ID)
	bob.call(http.MethodPatch, path, map[string]string{"location": "Paris"}, http.StatusForbidden, nil)

	var moved dto.EventDTOResponse
	alice.call(http.MethodPatch, path, map[string]string{"location": "Paris"}, http.StatusOK, &moved)
	assert.Equal(t, "Paris", moved.Location)
	assert.Equal(t, "Grandpa's birthday", moved.Title)

	alice.call(http.MethodDelete, path, nil, http.StatusNoContent, nil)
	bob.call(http.MethodGet, path, nil, http.StatusNotFound, nil)
}

func TestGoals_Progress(t *testing.T) {
	s := newTestServer(t)
	s.signUp("admin@family.test")
	alice := s.signUp("alice@family.test")
	bob := s.signUp("bob@family.test")

	var goal dto.GoalDTOResponse
	alice.call(http.MethodPost, "/api/goals", map[string]any{
		"title":         "Holiday savings",
		"target_amount": "400",
		"unit":          "EUR",
	}, http.StatusCreated, &goal)
	require.True(t, goal.TargetAmount.Valid)
	assert.True(t, goal.Progress.IsZero())
	base := "/api/goals/" + itoa(goal.ID)

	bob.call(http.MethodPost, base+"/progress", dto.ProgressDTOReq{Amount: decimal.RequireFromString("10")}, http.StatusForbidden, nil)

	tests := []struct {
		name          string
		amount        string
		wantProgress  string
		wantPercent   string
		wantCompleted bool
	}{
		{"first deposit", "50.25", "50.25", "12.56", false},
		{"withdrawal floors at zero", "-100", "0", "0", false},
		{"reaching the target completes", "400", "400", "100", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var updated dto.GoalDTOResponse
			alice.call(http.MethodPost, base+"/progress", dto.ProgressDTOReq{Amount: decimal.RequireFromString(tt.amount)}, http.StatusOK, &updated)
			assert.True(t, decimal.RequireFromString(tt.wantProgress).Equal(updated.Progress), "progress %s", updated.Progress)
			require.NotNil(t, updated.ProgressPercent)
			assert.True(t, decimal.RequireFromString(tt.wantPercent).Equal(*updated.ProgressPercent), "percent %s", updated.ProgressPercent)
			assert.Equal(t, tt.wantCompleted, updated.Completed)
		})
	}

	var open dto.ListDTOResponse[dto.GoalDTOResponse]
	bob.call(http.MethodGet, "/api/goals?status=open", nil, http.StatusOK, &open)
	assert.Empty(t, open.Items)

	var reopened dto.GoalDTOResponse
	alice.call(http.MethodPost, base+"/reopen", nil, http.StatusOK, &reopened)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)

	bob.call(http.MethodGet, "/api/goals?status=open", nil, http.StatusOK, &open)
	assert.Len(t, open.Items, 1)
	bob.call(http.MethodGet, "/api/goals?status=someday", nil, http.StatusBadRequest, nil)

	var done dto.GoalDTOResponse
	alice.call(http.MethodPost, base+"/complete", nil, http.StatusOK, &done)
	assert.True(t, done.Completed)

	alice.call(http.MethodDelete, base, nil, http.StatusNoContent, nil)
	alice.call(http.MethodGet, base, nil, http.StatusNotFound, nil)
}
