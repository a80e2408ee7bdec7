package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"offboard/internal/audit"
	"offboard/internal/audit/export"
	"offboard/internal/hrplatform"
	"offboard/internal/offboarding"
	"offboard/internal/offboarding/mocks"
	"offboard/internal/platform/middleware"
	httptransport "offboard/internal/transport/http"
	dErrors "offboard/pkg/domainerrors"
)

const signingKey = "router-test-key"

type RouterSuite struct {
	suite.Suite

	ctrl       *gomock.Controller
	directory  *mocks.MockDirectoryClient
	hr         *mocks.MockHRClient
	turnstiles *mocks.MockTurnstileClient
	notifier   *mocks.MockNotifier

	auditStore *audit.MemoryStore
	recorder   *audit.Recorder
	exportDir  string
	runner     *export.Runner
	router     http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.ctrl = gomock.NewController(s.T())
	s.directory = mocks.NewMockDirectoryClient(s.ctrl)
	s.hr = mocks.NewMockHRClient(s.ctrl)
	s.turnstiles = mocks.NewMockTurnstileClient(s.ctrl)
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.notifier.EXPECT().Enqueue(gomock.Any()).AnyTimes()

	s.auditStore = audit.NewMemoryStore()
	s.recorder = audit.NewRecorder(s.auditStore, nil, logger, nil)

	s.exportDir = s.T().TempDir()
	s.runner = export.NewRunner(s.auditStore, s.exportDir, logger, nil)
	s.runner.Start(context.Background())
	s.T().Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.runner.Drain(ctx)
	})

	resolver, err := export.NewResolver(s.exportDir)
	s.Require().NoError(err)

	service := offboarding.NewService(
		s.directory, s.hr, s.turnstiles,
		offboarding.NewMemoryStore(), s.recorder, s.notifier,
		logger, nil, time.Second,
	)

	handler := httptransport.NewHandler(
		logger, s.recorder, service, s.runner, resolver,
		middleware.NewHMACValidator(signingKey),
	)
	s.router = httptransport.NewRouter(handler)
}

func (s *RouterSuite) token(role string) string {
	claims := jwt.MapClaims{
		"sub":      uuid.NewString(),
		"username": "alice",
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	s.Require().NoError(err)
	return signed
}

func (s *RouterSuite) do(method, target, role string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(role))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *RouterSuite) seedEntries(n int) {
	for i := 0; i < n; i++ {
		s.recorder.Record(context.Background(), audit.Entry{
			Action:        audit.ActionSystemLogin,
			Status:        audit.StatusSuccess,
			ActorUsername: "alice",
			Message:       "logged in",
		})
	}
}

func (s *RouterSuite) TestHealthIsOpen() {
	w := s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestLogsRequireAuth() {
	w := s.do(http.MethodGet, "/logs", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestLogsRequireAdmin() {
	w := s.do(http.MethodGet, "/logs", "operator", nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *RouterSuite) TestListLogs() {
	s.seedEntries(3)

	w := s.do(http.MethodGet, "/logs?limit=2", "admin", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Equal(float64(3), body["total"])
	s.Equal(float64(1), body["page"])
	s.Equal(float64(2), body["limit"])
	s.Equal(float64(2), body["pages"])
	s.Len(body["items"], 2)

	first := body["items"].([]any)[0].(map[string]any)
	s.Equal("system_login", first["action"])
	s.Equal("SUCCESS", first["status"])
	s.Equal("alice", first["username"])
}

func (s *RouterSuite) TestListLogsRejectsInvertedRange() {
	w := s.do(http.MethodGet, "/logs?date_from=2026-02-01&date_to=2026-01-01", "admin", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(string(dErrors.CodeValidation), s.decode(w)["error"])
}

func (s *RouterSuite) TestListLogsRejectsBadTimestamp() {
	w := s.do(http.MethodGet, "/logs?date_from=yesterday", "admin", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestStartExportWritesFileAndAudits() {
	s.seedEntries(2)

	w := s.do(http.MethodPost, "/logs/export", "admin", map[string]any{"format": "csv"})
	s.Require().Equal(http.StatusAccepted, w.Code)

	body := s.decode(w)
	s.Equal("processing", body["status"])
	s.Equal("csv", body["format"])

	jobID := body["job_id"].(string)
	filename := "audit_logs_" + jobID + ".csv"
	s.Equal("/logs/export/"+filename, body["download_url"])

	path := filepath.Join(s.exportDir, filename)
	s.Require().Eventually(func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	entries, _, err := s.auditStore.List(context.Background(), audit.ListFilters{
		Action: audit.ActionExportAuditLogs, Page: 1, Limit: 10,
	})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(audit.StatusSuccess, entries[0].Status)
	s.Equal("Audit log export started (csv format)", entries[0].Message)
	s.Equal(filename, entries[0].Resource)
	s.Equal("alice", entries[0].ActorUsername)
}

func (s *RouterSuite) TestStartExportRejectsUnknownFormat() {
	w := s.do(http.MethodPost, "/logs/export", "admin", map[string]any{"format": "docx"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestDownloadHostileFilenameIsAudited() {
	w := s.do(http.MethodGet, "/logs/export/secret.txt", "admin", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	entries, _, err := s.auditStore.List(context.Background(), audit.ListFilters{
		Action: audit.ActionExportAuditLogs, Page: 1, Limit: 10,
	})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(audit.StatusFailed, entries[0].Status)
	s.Equal("Path traversal attempt detected: secret.txt", entries[0].Message)
}

func (s *RouterSuite) TestDownloadMissingFileIsNotReady() {
	w := s.do(http.MethodGet, "/logs/export/audit_logs_missing.csv", "admin", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("File not ready", s.decode(w)["detail"])
}

func (s *RouterSuite) TestDownloadServesFinishedExport() {
	content := []byte("id,action\n1,system_login\n")
	s.Require().NoError(os.WriteFile(filepath.Join(s.exportDir, "audit_logs_ready.csv"), content, 0o644))

	w := s.do(http.MethodGet, "/logs/export/audit_logs_ready.csv", "admin", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(content, w.Body.Bytes())
	s.Contains(w.Header().Get("Content-Disposition"), "audit_logs_ready.csv")
}

func (s *RouterSuite) TestSearchReportsActiveSystems() {
	s.hr.EXPECT().Search(gomock.Any(), "12345").
		Return(hrplatform.User{Status: hrplatform.StatusActivated}, nil)
	s.directory.EXPECT().Search(gomock.Any(), "12345").Return(nil, nil)
	s.turnstiles.EXPECT().Exists(gomock.Any(), "12345").Return(true, nil)

	w := s.do(http.MethodGet, "/offboarding/search/12345", "operator", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Equal("12345", body["registration"])
	s.Equal([]any{"InTouch", "Turnstiles"}, body["systems"])
}

func (s *RouterSuite) TestExecuteUnknownTarget() {
	s.hr.EXPECT().Search(gomock.Any(), "99999").
		Return(hrplatform.User{}, hrplatform.ErrNotFound)

	w := s.do(http.MethodPost, "/offboarding/execute/99999", "operator", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("user not found", s.decode(w)["detail"])
}

func (s *RouterSuite) TestExecuteRevokesActiveSystems() {
	target := hrplatform.User{PlatformID: "u-1", Name: "Bob", Status: hrplatform.StatusActivated}
	s.hr.EXPECT().Search(gomock.Any(), "12345").Return(target, nil).Times(2)
	s.directory.EXPECT().Search(gomock.Any(), "12345").Return(nil, nil)
	s.turnstiles.EXPECT().Exists(gomock.Any(), "12345").Return(false, nil)
	s.hr.EXPECT().Deactivate(gomock.Any(), "12345").
		Return(hrplatform.Outcome{Action: "deactivated", Message: "User Bob was successfully deactivated."}, nil)

	w := s.do(http.MethodPost, "/offboarding/execute/12345", "operator", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Equal(true, body["success"])
	s.Equal([]any{"InTouch"}, body["details"])
}

func (s *RouterSuite) TestHistoryRequiresAdmin() {
	w := s.do(http.MethodGet, "/offboarding/history", "operator", nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *RouterSuite) TestHistoryEnvelope() {
	w := s.do(http.MethodGet, "/offboarding/history", "admin", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Equal(float64(0), body["total"])
	s.Equal(float64(1), body["page"])
	s.Equal(float64(1), body["pages"])
	s.Empty(body["items"])
}
