package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixsecurity/fixsentry/internal/anomaly"
	"github.com/fixsecurity/fixsentry/internal/compliance"
	"github.com/fixsecurity/fixsentry/internal/fix"
	"github.com/fixsecurity/fixsentry/internal/messaging"
	"github.com/fixsecurity/fixsentry/internal/platform"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	store := anomaly.NewStore()
	service := platform.NewService(
		logger,
		fix.NewDecoder(),
		compliance.NewEngine(logger),
		anomaly.NewDetector(store, anomaly.DefaultConfig(), logger),
		messaging.NopProducer{},
	)
	return NewServer(logger, service, store, NewMessageStore(100), "1000-M")
}

func wireMessage(fields ...string) string {
	body := strings.Join(fields, fix.SOH) + fix.SOH
	sum := 0
	for i := 0; i < len(body); i++ {
		sum += int(body[i])
	}
	return body + fmt.Sprintf("10=%03d", sum%256) + fix.SOH
}

func wireOrder(seqNum int) string {
	return wireMessage(
		"8=FIX.4.4", "9=120", "35=D", "49=BANKA", "56=BANKB",
		fmt.Sprintf("34=%d", seqNum), "52=20240101-00:00:00",
		"55=AAPL", "54=1", "38=100", "44=150.00",
	)
}

func postMessage(t *testing.T, srv *Server, raw string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"message": raw})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func getJSON(t *testing.T, srv *Server, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]any
	rec := getJSON(t, srv, "/api/v1/health", &body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestIngestMessage(t *testing.T) {
	srv := newTestServer(t)

	rec := postMessage(t, srv, wireOrder(1))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var stored Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "BANKA-BANKB", stored.SessionID)
	assert.Equal(t, "D", stored.Message.MsgType)
	assert.True(t, stored.Compliance.Compliant)
	assert.False(t, stored.Anomalies.HasAnomalies)
}

func TestIngestRejectsInvalidWire(t *testing.T) {
	srv := newTestServer(t)

	rec := postMessage(t, srv, "garbage")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(fix.KindMalformedField), body["kind"])
}

func TestIngestRejectsChecksumMismatch(t *testing.T) {
	srv := newTestServer(t)

	corrupted := strings.Replace(wireOrder(1), "55=AAPL", "55=AAPX", 1)
	rec := postMessage(t, srv, corrupted)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(fix.KindChecksumMismatch), body["kind"])
}

func TestIngestRequiresMessageField(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages",
		strings.NewReader(`{"message": ""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAndFilterMessages(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusCreated, postMessage(t, srv, wireOrder(1)).Code)
	require.Equal(t, http.StatusCreated, postMessage(t, srv, wireOrder(2)).Code)
	require.Equal(t, http.StatusCreated, postMessage(t, srv, wireMessage(
		"8=FIX.4.4", "9=80", "35=A", "49=BANKC", "56=BANKB", "34=1",
		"52=20240101-00:00:00", "98=0", "108=30",
	)).Code)

	var all struct {
		Messages []Record `json:"messages"`
		Total    int      `json:"total"`
	}
	rec := getJSON(t, srv, "/api/v1/messages", &all)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, all.Total)

	var orders struct {
		Messages []Record `json:"messages"`
		Total    int      `json:"total"`
	}
	getJSON(t, srv, "/api/v1/messages?msg_type=D", &orders)
	assert.Equal(t, 2, orders.Total)

	var session struct {
		Messages []Record `json:"messages"`
		Total    int      `json:"total"`
	}
	getJSON(t, srv, "/api/v1/messages?session_id=BANKC-BANKB", &session)
	require.Equal(t, 1, session.Total)
	assert.Equal(t, "A", session.Messages[0].Message.MsgType)
}

func TestListMessagesPagination(t *testing.T) {
	srv := newTestServer(t)
	for i := 1; i <= 5; i++ {
		require.Equal(t, http.StatusCreated, postMessage(t, srv, wireOrder(i)).Code)
	}

	var page struct {
		Messages []Record `json:"messages"`
		Total    int      `json:"total"`
		Offset   int      `json:"offset"`
	}
	getJSON(t, srv, "/api/v1/messages?limit=2&offset=3", &page)
	assert.Equal(t, 5, page.Total)
	assert.Len(t, page.Messages, 2)
	assert.Equal(t, 3, page.Offset)
}

func TestGetMessageByID(t *testing.T) {
	srv := newTestServer(t)

	created := postMessage(t, srv, wireOrder(1))
	require.Equal(t, http.StatusCreated, created.Code)
	var stored Record
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &stored))

	var fetched Record
	rec := getJSON(t, srv, "/api/v1/messages/"+stored.ID, &fetched)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, stored.ID, fetched.ID)

	rec = getJSON(t, srv, "/api/v1/messages/unknown-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSessions(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusCreated, postMessage(t, srv, wireOrder(1)).Code)
	require.Equal(t, http.StatusCreated, postMessage(t, srv, wireOrder(2)).Code)

	var body struct {
		Sessions []anomaly.BaselineSnapshot `json:"sessions"`
		Total    int                        `json:"total"`
	}
	rec := getJSON(t, srv, "/api/v1/sessions", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "BANKA-BANKB", body.Sessions[0].SessionID)
	assert.Equal(t, int64(2), body.Sessions[0].MessageCount)
	assert.Equal(t, 2, body.Sessions[0].LastSeqNum)
}

func TestComplianceStatus(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusCreated, postMessage(t, srv, wireOrder(1)).Code)
	oversized := wireMessage(
		"8=FIX.4.4", "9=120", "35=D", "49=BANKA", "56=BANKB", "34=2",
		"52=20240101-00:00:00", "55=AAPL", "54=1", "38=2000000", "44=150.00",
	)
	require.Equal(t, http.StatusCreated, postMessage(t, srv, oversized).Code)

	var body struct {
		Evaluated int            `json:"evaluated_messages"`
		Compliant int            `json:"compliant_messages"`
		Rate      float64        `json:"compliance_rate"`
		ByRule    map[string]int `json:"violations_by_rule"`
	}
	rec := getJSON(t, srv, "/api/v1/compliance", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, body.Evaluated)
	assert.Equal(t, 1, body.Compliant)
	assert.InDelta(t, 0.5, body.Rate, 1e-9)
	assert.Equal(t, 1, body.ByRule["PRE-TRADE-001"])
}

func TestPlatformStats(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusCreated, postMessage(t, srv, wireOrder(1)).Code)
	require.Equal(t, http.StatusCreated, postMessage(t, srv, wireMessage(
		"8=FIX.4.4", "9=80", "35=A", "49=BANKC", "56=BANKB", "34=1",
		"52=20240101-00:00:00", "98=0", "108=30",
	)).Code)

	var body struct {
		Total     int            `json:"total_messages"`
		ByType    map[string]int `json:"messages_by_type"`
		Anomalous int            `json:"anomalous_messages"`
		Sessions  int            `json:"tracked_sessions"`
	}
	rec := getJSON(t, srv, "/api/v1/stats", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, 1, body.ByType["D"])
	assert.Equal(t, 1, body.ByType["A"])
	assert.Equal(t, 2, body.Sessions)
}

func TestMessageStoreCap(t *testing.T) {
	store := NewMessageStore(2)
	msg := &fix.Message{MsgType: "D", SenderCompID: "A", TargetCompID: "B"}
	for i := 0; i < 3; i++ {
		store.Add(&platform.Result{
			Message:    msg,
			Compliance: &compliance.Result{Compliant: true},
			Anomalies:  &anomaly.Result{},
		})
	}
	assert.Len(t, store.Filter("", ""), 2)
}
