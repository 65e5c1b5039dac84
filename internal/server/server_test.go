package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/domain"
	"github.com/kapu/aion2-character-go/internal/service/aion2"
	"github.com/kapu/aion2-character-go/internal/util"
	"github.com/kapu/aion2-character-go/pkg/errors"
)

var fixedNow = time.Date(2025, 11, 20, 9, 30, 0, 0, time.UTC)

type lookupCall struct {
	Server, Name, Class string
	Force               bool
}

type fakeCharacters struct {
	lookups []lookupCall
	queries []aion2.AbyssQuery
	err     error
	records []*domain.CharacterRecord
	status  *util.CircuitBreakerStatus
}

func (f *fakeCharacters) Lookup(_ context.Context, server, name, classHint string, force bool) (*domain.CharacterRecord, error) {
	f.lookups = append(f.lookups, lookupCall{server, name, classHint, force})
	if f.err != nil {
		return nil, f.err
	}
	r := domain.NewCharacterRecord(server, name, fixedNow)
	r.ClassName = domain.OrUnknown(classHint)
	return r, nil
}

func (f *fakeCharacters) LookupByURL(_ context.Context, detailURL, server, name string) (*domain.CharacterRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := domain.NewCharacterRecord(server, name, fixedNow)
	r.CharacterImageURL = detailURL
	return r, nil
}

func (f *fakeCharacters) CollectAbyssTargets(_ context.Context, q aion2.AbyssQuery) ([]domain.RankingTarget, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return []domain.RankingTarget{{Name: "Able", ClassHint: "Gladiator"}, {Name: "Baker"}}, nil
}

func (f *fakeCharacters) SyncAbyss(_ context.Context, q aion2.AbyssQuery) ([]*domain.CharacterRecord, error) {
	f.queries = append(f.queries, q)
	return f.records, f.err
}

func (f *fakeCharacters) StreamAbyss(_ context.Context, q aion2.AbyssQuery, handle aion2.RecordHandler) error {
	f.queries = append(f.queries, q)
	for _, record := range f.records {
		if err := handle(record); err != nil {
			return err
		}
	}
	return f.err
}

func (f *fakeCharacters) BreakerStatus() *util.CircuitBreakerStatus {
	return f.status
}

func newTestServer(characters CharacterService) *Server {
	return New(":0", characters, zap.NewNop())
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	fake := &fakeCharacters{status: &util.CircuitBreakerStatus{State: util.CircuitStateOpen, FailureCount: 3}}
	rec := do(t, newTestServer(fake), http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "degraded" {
		t.Fatalf("open breaker should report degraded, got %v", body)
	}
}

func TestGetCharacter(t *testing.T) {
	fake := &fakeCharacters{}
	rec := do(t, newTestServer(fake), http.MethodGet, "/characters/Siel/Able?class=Gladiator&force_refresh=true", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var record domain.CharacterRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.Name != "Able" || record.ClassName != "Gladiator" {
		t.Fatalf("unexpected record %+v", record)
	}
	if diff := cmp.Diff([]lookupCall{{"Siel", "Able", "Gladiator", true}}, fake.lookups); diff != "" {
		t.Fatalf("lookup args mismatch (-want +got):\n%s", diff)
	}
}

func TestGetCharacterMapsErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{errors.NewValidationError("name required", "name", ""), http.StatusBadRequest, errors.CodeValidation},
		{errors.NewNavigationError("timeout", "https://aion2.test", nil), http.StatusBadGateway, errors.CodeNavigation},
		{errors.NewUnavailableError("circuit open", nil), http.StatusServiceUnavailable, errors.CodeUnavailable},
	}
	for _, tt := range tests {
		rec := do(t, newTestServer(&fakeCharacters{err: tt.err}), http.MethodGet, "/characters/Siel/Able", "")
		if rec.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.status)
			continue
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["code"] != tt.code {
			t.Errorf("code = %q, want %q", body["code"], tt.code)
		}
	}
}

func TestGetCharacterByURL(t *testing.T) {
	s := newTestServer(&fakeCharacters{})

	rec := do(t, s, http.MethodPost, "/characters/by-url", `{"url":"https://aion2.test/c/1","server":"Siel","name":"Able"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/characters/by-url", `{"server":"Siel"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing url should be rejected, status = %d", rec.Code)
	}
}

func TestListAbyssTargetsDefaultsLimit(t *testing.T) {
	fake := &fakeCharacters{}
	rec := do(t, newTestServer(fake), http.MethodGet, "/rankings/abyss?server=Siel&race=%EC%B2%9C%EC%A1%B1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Targets []domain.RankingTarget `json:"targets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Targets) != 2 || body.Targets[0].ClassHint != "Gladiator" {
		t.Fatalf("unexpected targets %+v", body.Targets)
	}
	if diff := cmp.Diff([]aion2.AbyssQuery{{Server: "Siel", Race: "천족", Limit: 10}}, fake.queries); diff != "" {
		t.Fatalf("query mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, newTestServer(fake), http.MethodGet, "/rankings/abyss?limit=many", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit should be rejected, status = %d", rec.Code)
	}
}

func TestSyncAbyss(t *testing.T) {
	fake := &fakeCharacters{records: []*domain.CharacterRecord{
		domain.NewCharacterRecord("Siel", "Able", fixedNow),
	}}
	rec := do(t, newTestServer(fake), http.MethodPost, "/rankings/abyss/sync", `{"server":"Siel","race":"마족","limit":1}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Records []domain.CharacterRecord `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Records) != 1 || body.Records[0].Name != "Able" {
		t.Fatalf("unexpected records %+v", body.Records)
	}
}

func TestStreamAbyss(t *testing.T) {
	fake := &fakeCharacters{records: []*domain.CharacterRecord{
		domain.NewCharacterRecord("Siel", "Able", fixedNow),
		domain.NewCharacterRecord("Siel", "Charlie", fixedNow),
	}}
	ts := httptest.NewServer(newTestServer(fake).Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rankings/abyss?server=Siel&limit=2"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var got []string
	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == "done" {
			if msg.Count == nil || *msg.Count != 2 {
				t.Fatalf("done count = %v", msg.Count)
			}
			break
		}
		if msg.Type != "record" || msg.Record == nil {
			t.Fatalf("unexpected frame %+v", msg)
		}
		got = append(got, msg.Record.Name)
	}

	if diff := cmp.Diff([]string{"Able", "Charlie"}, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestStreamAbyssEmptyBatchReportsZeroCount(t *testing.T) {
	ts := httptest.NewServer(newTestServer(&fakeCharacters{}).Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rankings/abyss?server=Siel"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"type": "done", "count": float64(0)}, frame); diff != "" {
		t.Fatalf("done frame mismatch (-want +got):\n%s", diff)
	}
}
