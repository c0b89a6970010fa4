package web

import (
	"net/http"
	"testing"

	"github.com/Olprog59/go-familyhub/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpRequests_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	s.signUp("admin@family.test")
	alice := s.signUp("alice@family.test")
	bob := s.signUp("bob@family.test")
	carol := s.signUp("carol@family.test")

	var req dto.HelpRequestDTOResponse
	alice.call(http.MethodPost, "/api/help-requests", map[string]string{"title": "Need a ride to the station"}, http.StatusCreated, &req)
	assert.Equal(t, "open", req.Status)
	base := "/api/help-requests/" + itoa(req.ID)

	steps := []struct {
		name       string
		client     *testClient
		step       string
		wantStatus int
		wantState  string
	}{
		{"requester cannot claim own request", alice, "claim", http.StatusBadRequest, ""},
		{"bob claims", bob, "claim", http.StatusOK, "claimed"},
		{"carol cannot claim a claimed request", carol, "claim", http.StatusConflict, ""},
		{"carol cannot release bob's claim", carol, "unclaim", http.StatusForbidden, ""},
		{"bob releases", bob, "unclaim", http.StatusOK, "open"},
		{"unclaim twice", bob, "unclaim", http.StatusConflict, ""},
		{"carol claims", carol, "claim", http.StatusOK, "claimed"},
		{"helper resolves", carol, "resolve", http.StatusOK, "resolved"},
		{"resolved cannot be claimed", bob, "claim", http.StatusConflict, ""},
		{"only the requester reopens", bob, "reopen", http.StatusForbidden, ""},
		{"requester reopens", alice, "reopen", http.StatusOK, "open"},
		{"reopen twice", alice, "reopen", http.StatusConflict, ""},
	}
	for _, tt := range steps {
		var out dto.HelpRequestDTOResponse
		tt.client.call(http.MethodPost, base+"/"+tt.step, nil, tt.wantStatus, &out)
		if tt.wantState != "" {
			assert.Equal(t, tt.wantState, out.Status, tt.name)
		}
	}

	var current dto.HelpRequestDTOResponse
	bob.call(http.MethodGet, base, nil, http.StatusOK, &current)
	assert.Equal(t, "open", current.Status)
	assert.Nil(t, current.Helper, "reopening clears the helper")
	assert.Nil(t, current.ResolvedAt)
}

func TestHelpRequests_ListAndEdit(t *testing.T) {
	s := newTestServer(t)
	s.signUp("admin@family.test")
	alice := s.signUp("alice@family.test")
	bob := s.signUp("bob@family.test")

	var first, second dto.HelpRequestDTOResponse
	alice.call(http.MethodPost, "/api/help-requests", map[string]string{"title": "Fix the gate"}, http.StatusCreated, &first)
	alice.call(http.MethodPost, "/api/help-requests", map[string]string{"title": "Walk the dog"}, http.StatusCreated, &second)
	bob.call(http.MethodPost, "/api/help-requests/"+itoa(second.ID)+"/claim", nil, http.StatusOK, nil)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all", "", 2},
		{"open", "?status=open", 1},
		{"claimed", "?status=claimed", 1},
		{"by helper", "?helper_id=" + itoa(bob.me().ID), 1},
		{"by requester", "?requester_id=" + itoa(alice.me().ID), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list dto.ListDTOResponse[dto.HelpRequestDTOResponse]
			bob.call(http.MethodGet, "/api/help-requests"+tt.query, nil, http.StatusOK, &list)
			assert.Len(t, list.Items, tt.want)
		})
	}
	bob.call(http.MethodGet, "/api/help-requests?status=lost", nil, http.StatusBadRequest, nil)

	path := "/api/help-requests/" + itoa(first.ID)
	bob.call(http.MethodPatch, path, map[string]string{"title": "Mine now"}, http.StatusForbidden, nil)

	var edited dto.HelpRequestDTOResponse
	alice.call(http.MethodPatch, path, map[string]string{"description": "The latch is broken"}, http.StatusOK, &edited)
	assert.Equal(t, "Fix the gate", edited.Title)
	assert.Equal(t, "The latch is broken", edited.Description)

	alice.call(http.MethodPost, "/api/help-requests", map[string]string{"title": ""}, http.StatusBadRequest, nil)

	bob.call(http.MethodDelete, path, nil, http.StatusForbidden, nil)
	alice.call(http.MethodDelete, path, nil, http.StatusNoContent, nil)

	var list dto.ListDTOResponse[dto.HelpRequestDTOResponse]
	alice.call(http.MethodGet, "/api/help-requests", nil, http.StatusOK, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, second.ID, list.Items[0].ID)
}
