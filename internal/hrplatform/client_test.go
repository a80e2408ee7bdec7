package hrplatform

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"offboard/internal/platform/config"
	dErrors "offboard/pkg/domainerrors"
)

type HRPlatformSuite struct {
	suite.Suite
	mux      *http.ServeMux
	server   *httptest.Server
	client   *Client
	requests []*http.Request
	bodies   []map[string]string
}

func TestHRPlatformSuite(t *testing.T) {
	suite.Run(t, new(HRPlatformSuite))
}

func (s *HRPlatformSuite) SetupTest() {
	s.mux = http.NewServeMux()
	s.requests = nil
	s.bodies = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests = append(s.requests, r)
		var body map[string]string
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &body)
		}
		s.bodies = append(s.bodies, body)
		s.mux.ServeHTTP(w, r)
	}))
	s.T().Cleanup(s.server.Close)

	s.client = NewClient(config.HRPlatformConfig{
		BaseURL: s.server.URL,
		Token:   "dGVzdA==",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *HRPlatformSuite) serveUser(status string) {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{
				"id":        "u-1",
				"firstName": "Alice",
				"lastName":  "Souza",
				"position":  "Analyst",
				"status":    status,
				"profile":   map[string]string{"workemail": "alice@example.com", "employeeid": "12345"},
			}},
		})
	})
}

func (s *HRPlatformSuite) TestSearchFindsUser() {
	s.serveUser(StatusActivated)

	user, err := s.client.Search(context.Background(), "12345")
	s.Require().NoError(err)
	s.Equal("u-1", user.PlatformID)
	s.Equal("Alice Souza", user.Name)
	s.Equal("alice@example.com", user.Email)
	s.True(user.Active())

	s.Require().NotEmpty(s.requests)
	s.Equal("Basic dGVzdA==", s.requests[0].Header.Get("Authorization"))
	s.Contains(s.requests[0].URL.Query().Get("filter"), `profile.employeeid eq "12345"`)
}

func (s *HRPlatformSuite) TestSearchAcceptsBareArray() {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"id": "u-2", "firstName": "Bob", "lastName": "Lima", "status": StatusInvited,
		}})
	})

	user, err := s.client.Search(context.Background(), "999")
	s.Require().NoError(err)
	s.Equal("u-2", user.PlatformID)
	s.Equal(StatusInvited, user.Status)
}

func (s *HRPlatformSuite) TestSearchNotFound() {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})

	_, err := s.client.Search(context.Background(), "12345")
	s.ErrorIs(err, ErrNotFound)
}

func (s *HRPlatformSuite) TestSearchUpstreamError() {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusBadGateway)
	})

	_, err := s.client.Search(context.Background(), "12345")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
}

func (s *HRPlatformSuite) TestDeactivateActivatedUser() {
	s.serveUser(StatusActivated)
	s.mux.HandleFunc("PUT /u-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	outcome, err := s.client.Deactivate(context.Background(), "12345")
	s.Require().NoError(err)
	s.Equal("deactivated", outcome.Action)
	s.Contains(outcome.Message, "Alice Souza")

	s.Require().Len(s.requests, 2)
	put := s.requests[1]
	s.Equal(http.MethodPut, put.Method)
	s.Equal(userUpdateContentType, put.Header.Get("Content-Type"))
	s.Equal(map[string]string{"status": "deactivated"}, s.bodies[1])
}

func (s *HRPlatformSuite) TestDeactivateDeletesPendingInvitation() {
	s.serveUser(StatusPending)
	s.mux.HandleFunc("DELETE /u-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	outcome, err := s.client.Deactivate(context.Background(), "12345")
	s.Require().NoError(err)
	s.Equal("deleted", outcome.Action)
	s.Equal(http.MethodDelete, s.requests[1].Method)
}

func (s *HRPlatformSuite) TestDeactivateProtectedStatusIsNoOp() {
	for _, status := range []string{StatusContact, StatusDeactivated} {
		s.Run(status, func() {
			s.SetupTest()
			s.serveUser(status)

			outcome, err := s.client.Deactivate(context.Background(), "12345")
			s.Require().NoError(err)
			s.Equal("none", outcome.Action)
			s.Len(s.requests, 1, "only the search call may happen")
		})
	}
}

func (s *HRPlatformSuite) TestDeactivateRefusesUnknownStatus() {
	s.serveUser("suspended")

	_, err := s.client.Deactivate(context.Background(), "12345")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Len(s.requests, 1)
}

func (s *HRPlatformSuite) TestActivateDeactivatedUser() {
	s.serveUser(StatusDeactivated)
	s.mux.HandleFunc("PUT /u-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	outcome, err := s.client.Activate(context.Background(), "12345")
	s.Require().NoError(err)
	s.Equal("activated", outcome.Action)
	s.Equal(map[string]string{"status": "activated"}, s.bodies[1])
}

func (s *HRPlatformSuite) TestActivateAlreadyActive() {
	s.serveUser(StatusActivated)

	outcome, err := s.client.Activate(context.Background(), "12345")
	s.Require().NoError(err)
	s.Equal("none", outcome.Action)
}

func (s *HRPlatformSuite) TestActivateRefusesOtherStatuses() {
	s.serveUser(StatusPending)

	_, err := s.client.Activate(context.Background(), "12345")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
