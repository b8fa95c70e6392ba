package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/sugarbeard/sugarbeardd/internal/authseam"
	"github.com/sugarbeard/sugarbeardd/internal/eventbus"
	"github.com/sugarbeard/sugarbeardd/internal/orchestrator"
)

// fakeCore is a minimal Credentials implementation standing in for the
// orchestrator, the way the teacher's integration suite stands in a
// MockPMAAdapter for its unified service.
type fakeCore struct {
	username, password string
	timeout             time.Duration
	snap                orchestrator.Snapshot
}

func (f *fakeCore) Credentials() (string, string, time.Duration) {
	return f.username, f.password, f.timeout
}

func (f *fakeCore) Snapshot() orchestrator.Snapshot {
	return f.snap
}

type HTTPAPITestSuite struct {
	suite.Suite
	router *gin.Engine
	core   *fakeCore
	seam   *authseam.Seam
}

func (s *HTTPAPITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	s.core = &fakeCore{
		username: "admin",
		password: "secret",
		timeout:  time.Minute,
		snap:     orchestrator.Snapshot{Model: "PiSugar 3", Voltage: 3.9, Level: 87},
	}
	s.seam = authseam.New([]byte("test-signing-secret"))

	bus := eventbus.New()
	metrics := NewMetrics()
	router := NewRouter(s.core, bus, s.seam, metrics, log)
	s.router = router.Engine
}

func (s *HTTPAPITestSuite) TestHealthz() {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var body map[string]interface{}
	assert.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(s.T(), body["success"].(bool))
}

func (s *HTTPAPITestSuite) TestStatusReflectsSnapshot() {
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var body map[string]interface{}
	assert.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body))
	data := body["data"].(map[string]interface{})
	assert.Equal(s.T(), "PiSugar 3", data["model"])
	assert.Equal(s.T(), 87.0, data["level"])
}

func (s *HTTPAPITestSuite) TestSessionRejectsBadCredentials() {
	payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *HTTPAPITestSuite) TestSessionIssuesVerifiableToken() {
	payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)

	var body map[string]interface{}
	assert.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body))
	data := body["data"].(map[string]interface{})
	token, ok := data["token"].(string)
	assert.True(s.T(), ok)
	assert.NotEmpty(s.T(), token)

	subject, err := s.seam.Verify(token)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "admin", subject)
}

func TestHTTPAPISuite(t *testing.T) {
	suite.Run(t, new(HTTPAPITestSuite))
}
