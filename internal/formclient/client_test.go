package formclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nirvista/leadcapture/internal/leads"
	"github.com/nirvista/leadcapture/pkg/logging"
)

type readyStub struct{}

func (readyStub) Ready() bool { return true }

func TestNewClient_DefaultEndpoint(t *testing.T) {
	assert.Equal(t, DefaultEndpoint, NewClient("  ", nil).Endpoint())
	assert.Equal(t, "http://api.example.com/api/leads", NewClient("http://api.example.com/api/leads", nil).Endpoint())
}

func TestClient_CreateLeadAgainstLeadHandler(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	handler := leads.NewHandler(repo, readyStub{}, nil, logging.New("error"))
	srv := httptest.NewServer(http.HandlerFunc(handler.CreateLead))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, srv.Client())
	lead, err := client.CreateLead(context.Background(), Values{
		Name:  "Sarah Johnson",
		Email: "sarah@company.com",
		Phone: "+15551234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sarah Johnson", lead.Name)
	assert.NotEmpty(t, lead.ID)
	assert.Len(t, repo.List(), 1)
}

func TestClient_CreateLeadSendsJSON(t *testing.T) {
	var got Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"abc","name":"Ann","email":"ann@example.com","phone":"1"}}`))
	}))
	t.Cleanup(srv.Close)

	lead, err := NewClient(srv.URL, srv.Client()).CreateLead(context.Background(), Values{Name: "Ann", Email: "ann@example.com", Phone: "1"})
	require.NoError(t, err)
	assert.Equal(t, "abc", lead.ID)
	assert.Equal(t, Values{Name: "Ann", Email: "ann@example.com", Phone: "1"}, got)
}

func TestClient_CreateLeadAPIErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"validation", http.StatusBadRequest, `{"message":"Please provide all fields"}`, "Please provide all fields"},
		{"not connected", http.StatusServiceUnavailable, `{"message":"Database not connected. Please check server logs."}`, "Database not connected. Please check server logs."},
		{"server error", http.StatusInternalServerError, `{"success":false,"message":"Server Error","error":"boom"}`, "Server Error"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, ""},
		{"ok without success", http.StatusOK, `{"success":false}`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			_, err := NewClient(srv.URL, srv.Client()).CreateLead(context.Background(), Values{Name: "A", Email: "b", Phone: "c"})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.message, apiErr.Message)
		})
	}
}

func TestClient_CreateLeadTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).CreateLead(context.Background(), Values{Name: "A", Email: "b", Phone: "c"})
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "formclient: lead api returned status 400: Please provide all fields",
		(&APIError{StatusCode: 400, Message: "Please provide all fields"}).Error())
	assert.Equal(t, "formclient: lead api returned status 502", (&APIError{StatusCode: 502}).Error())
}
