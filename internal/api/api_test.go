package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/infoservices/clara/internal/agentstate"
	"github.com/infoservices/clara/internal/directory"
	"github.com/infoservices/clara/internal/facematch"
	"github.com/infoservices/clara/internal/flow"
	"github.com/infoservices/clara/internal/models"
	"github.com/infoservices/clara/internal/otp"
	"github.com/infoservices/clara/internal/signal"
	"github.com/infoservices/clara/internal/store"
)

type memBlob struct {
	data []byte
}

func (m *memBlob) Read(ctx context.Context) ([]byte, error) { return m.data, nil }

func (m *memBlob) Write(ctx context.Context, data []byte) error {
	m.data = append([]byte(nil), data...)
	return nil
}

type stubDialogue struct {
	reply string
	err   error
}

func (s *stubDialogue) GenerateReply(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.reply, s.err
}

type testServer struct {
	server   *Server
	agent    *agentstate.Manager
	flow     *flow.Manager
	dialogue *stubDialogue
	http     *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st := store.NewInMemoryStore()
	if err := st.UpsertEmployee(models.EmployeeRecord{
		EmployeeID: "E100", Name: "Asha", Email: "asha@example.com", Phone: "+14155550100",
	}); err != nil {
		t.Fatalf("UpsertEmployee failed: %v", err)
	}

	agent := agentstate.NewManager(st)
	sig := signal.NewRegister()
	dir := directory.NewService(st)
	otpSvc := otp.NewService(st, dir, otp.WithDevMode(true))
	flowMgr := flow.NewManager(st, agent, sig, dir, otpSvc)
	engine := facematch.NewEngine(&memBlob{}, facematch.WithNameResolver(dir))
	dialogue := &stubDialogue{reply: "Our office hours are 9 to 5."}

	srv := NewServer(flowMgr, agent, sig, engine, dialogue)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testServer{server: srv, agent: agent, flow: flowMgr, dialogue: dialogue, http: ts}
}

func (ts *testServer) post(t *testing.T, path string, body interface{}) (*http.Response, models.APIResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(ts.http.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp, decodeResponse(t, resp)
}

func (ts *testServer) get(t *testing.T, path string) (*http.Response, models.APIResponse) {
	t.Helper()
	resp, err := http.Get(ts.http.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp, decodeResponse(t, resp)
}

func decodeResponse(t *testing.T, resp *http.Response) models.APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var body models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestWakeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.post(t, "/wake", map[string]string{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body.Message, "Clara") {
		t.Errorf("message = %q, want introduction", body.Message)
	}
	if !ts.agent.IsAwake() {
		t.Error("wake endpoint should wake the agent")
	}
}

func TestWakeEndpointRejectsGet(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.http.URL + "/wake")
	if err != nil {
		t.Fatalf("GET /wake failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestUtteranceGating(t *testing.T) {
	ts := newTestServer(t)

	// Asleep: arbitrary text produces no response at all.
	_, body := ts.post(t, "/utterance", map[string]string{"text": "what time is it"})
	result := body.Result.(map[string]interface{})
	if result["respond"] == true {
		t.Error("sleeping agent must not respond to arbitrary text")
	}

	// Wake phrase gets the canned acknowledgement.
	_, body = ts.post(t, "/utterance", map[string]string{"text": "hey clara"})
	result = body.Result.(map[string]interface{})
	if result["respond"] != true || result["reply"] == "" {
		t.Errorf("wake phrase should yield a canned reply, got %+v", result)
	}

	// Awake pass-through goes to the dialogue client.
	_, body = ts.post(t, "/utterance", map[string]string{"text": "what are your office hours"})
	result = body.Result.(map[string]interface{})
	if result["reply"] != ts.dialogue.reply {
		t.Errorf("reply = %v, want dialogue stub output", result["reply"])
	}
}

func TestClassifyAndSignalPoll(t *testing.T) {
	ts := newTestServer(t)
	ts.post(t, "/wake", nil)

	_, body := ts.post(t, "/classify", map[string]string{"text": "I am an employee"})
	if body.Status != string(models.APIStatusOK) {
		t.Fatalf("classify status = %q", body.Status)
	}

	_, sigBody := ts.get(t, "/signal?clear=1")
	sig, ok := sigBody.Result.(map[string]interface{})
	if !ok || sig["name"] != models.SignalStartFaceCapture {
		t.Fatalf("expected pending %s signal, got %v", models.SignalStartFaceCapture, sigBody.Result)
	}

	// The slot was cleared by the previous poll.
	_, sigBody = ts.get(t, "/signal?clear=1")
	if sigBody.Result != nil {
		t.Errorf("expected empty slot, got %v", sigBody.Result)
	}
}

func TestFaceRegisterAndMatch(t *testing.T) {
	ts := newTestServer(t)
	embedding := []float64{0.1, 0.2, 0.3}

	resp, _ := ts.post(t, "/face/register", map[string]interface{}{
		"employee_id": "E100", "embedding": embedding,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register status = %d, want 200", resp.StatusCode)
	}

	// Duplicate registration is refused.
	resp, _ = ts.post(t, "/face/register", map[string]interface{}{
		"employee_id": "E100", "embedding": embedding,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", resp.StatusCode)
	}

	ts.post(t, "/wake", nil)
	ts.post(t, "/classify", map[string]string{"text": "employee"})

	_, body := ts.post(t, "/face/match", map[string]interface{}{"embedding": embedding})
	if !strings.Contains(body.Message, "Asha") {
		t.Errorf("match message = %q, want greeting by name", body.Message)
	}
	result := body.Result.(map[string]interface{})
	if result["verified"] != true {
		t.Errorf("verified = %v, want true", result["verified"])
	}

	sess := ts.flow.CurrentSession()
	if sess == nil || sess.CurrentState != models.StateEmployeeVerified {
		t.Errorf("flow session not verified after match: %+v", sess)
	}
}

func TestFaceMatchUnknownEmbeddingDegrades(t *testing.T) {
	ts := newTestServer(t)
	ts.post(t, "/wake", nil)
	ts.post(t, "/classify", map[string]string{"text": "employee"})

	_, body := ts.post(t, "/face/match", map[string]interface{}{
		"embedding": []float64{0.9, 0.9, 0.9},
	})
	result := body.Result.(map[string]interface{})
	if result["verified"] == true {
		t.Error("empty gallery must not verify")
	}

	sess := ts.flow.CurrentSession()
	if sess == nil || sess.CurrentState != models.StateManualVerification {
		t.Errorf("expected manual verification fallback, got %+v", sess)
	}
}

func TestManualVerifyEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.post(t, "/wake", nil)
	ts.post(t, "/classify", map[string]string{"text": "employee"})
	ts.post(t, "/face/result", models.FaceResult{Status: models.FaceNotRecognized})

	resp, _ := ts.post(t, "/verify/manual", map[string]string{"name": "Asha"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing employee id status = %d, want 400", resp.StatusCode)
	}

	resp, _ = ts.post(t, "/verify/manual", map[string]string{"employee_id": "E999"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown employee status = %d, want 404", resp.StatusCode)
	}

	resp, body := ts.post(t, "/verify/manual", map[string]string{"employee_id": "E100"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("OTP issue status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body.Message, "Asha") {
		t.Errorf("dispatch message = %q, want employee name", body.Message)
	}
}

func TestVisitorInfoEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.post(t, "/wake", nil)
	ts.post(t, "/classify", map[string]string{"text": "I am a visitor"})

	_, body := ts.post(t, "/visitor/info", map[string]string{"name": "Kumar"})
	if !strings.Contains(strings.ToLower(body.Message), "phone") {
		t.Errorf("message = %q, want phone prompt", body.Message)
	}
}

func TestAccessCheckEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.post(t, "/wake", nil)

	_, body := ts.post(t, "/access/check", map[string]string{"tool": "send_email"})
	result := body.Result.(map[string]interface{})
	if result["allowed"] == true {
		t.Error("unverified user must not get tool access")
	}
}

func TestStatusAndSessionEnd(t *testing.T) {
	ts := newTestServer(t)
	ts.post(t, "/wake", nil)

	_, body := ts.get(t, "/status")
	status := body.Result.(map[string]interface{})
	if _, ok := status["flow"]; !ok {
		t.Error("status should include the flow snapshot")
	}
	if _, ok := status["agent"]; !ok {
		t.Error("status should include the agent snapshot")
	}

	resp, _ := ts.post(t, "/session/end", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session end status = %d, want 200", resp.StatusCode)
	}
	if ts.flow.CurrentSession() != nil {
		t.Error("session should be discarded")
	}
}
