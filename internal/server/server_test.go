package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/docchat/internal/db"
	"github.com/ziadkadry99/docchat/internal/embeddings"
	"github.com/ziadkadry99/docchat/internal/llm"
	"github.com/ziadkadry99/docchat/internal/qa"
	"github.com/ziadkadry99/docchat/internal/vectordb"
)

// scriptedProvider returns its replies in order, repeating the last one.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []string
	calls   int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	if i >= len(p.replies) {
		i = len(p.replies) - 1
	}
	p.calls++
	return &llm.CompletionResponse{Content: p.replies[i]}, nil
}

type testEnv struct {
	srv      *Server
	db       *db.DB
	dataDir  string
	provider *scriptedProvider
	sleeps   []time.Duration
}

func setupTest(t *testing.T, replies ...string) *testEnv {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if len(replies) == 0 {
		replies = []string{"Here is your answer."}
	}
	env := &testEnv{db: database, dataDir: t.TempDir(), provider: &scriptedProvider{replies: replies}}
	env.srv = newTestServer(t, env)
	return env
}

func newTestServer(t *testing.T, env *testEnv) *Server {
	t.Helper()
	store, err := vectordb.NewChromemStore(embeddings.NewHashEmbedder())
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	chain := qa.NewChain(store, env.provider, qa.Options{K: 3})
	srv := New(Config{
		DataDir:      env.dataDir,
		AllowedTypes: []string{"*.txt", "*.md", "*.pdf"},
	}, env.db, store, chain)
	srv.sleep = func(_ context.Context, d time.Duration) error {
		env.sleeps = append(env.sleeps, d)
		return nil
	}
	return srv
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(req)
}

func (e *testEnv) chat(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)
	w := env.do(httptest.NewRequest("GET", "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := decode(t, w); body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	env := setupTest(t)
	store, _ := vectordb.NewChromemStore(embeddings.NewHashEmbedder())
	env.srv = New(Config{AllowAll: true, DataDir: env.dataDir}, env.db, store, qa.NewChain(store, nil, qa.Options{}))

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := env.do(req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestUpload_NoFilePart(t *testing.T) {
	env := setupTest(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("other", "x")
	mw.Close()

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := env.do(req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := decode(t, w)["error"]; got != msgNoFilePart {
		t.Errorf("error = %v", got)
	}
}

func TestUpload_NotMultipart(t *testing.T) {
	env := setupTest(t)
	w := env.do(httptest.NewRequest("POST", "/upload", strings.NewReader("plain")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := decode(t, w)["error"]; got != msgNoFilePart {
		t.Errorf("error = %v", got)
	}
}

func TestUpload_NoSelectedFile(t *testing.T) {
	env := setupTest(t)
	w := env.upload(t, "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := decode(t, w)["error"]; got != msgNoSelected {
		t.Errorf("error = %v", got)
	}
}

func TestUpload_TypeNotAllowed(t *testing.T) {
	env := setupTest(t)
	w := env.upload(t, "tool.exe", "MZ")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got, _ := decode(t, w)["error"].(string); !strings.HasPrefix(got, "File type not allowed") {
		t.Errorf("error = %q", got)
	}
}

func TestUpload_Success(t *testing.T) {
	env := setupTest(t)
	w := env.upload(t, "../My Notes.txt", "Meeting is on Tuesday.\n\nBring the slides.")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["filename"] != "My_Notes.txt" {
		t.Errorf("filename = %v", body["filename"])
	}
	if body["status"] != "file processed successfully" {
		t.Errorf("status = %v", body["status"])
	}
	want := "✓ Welcome! 'My_Notes.txt' has been loaded successfully. You can now ask questions about it."
	if body["initial_reply"] != want {
		t.Errorf("initial_reply = %v", body["initial_reply"])
	}

	if _, err := os.Stat(filepath.Join(env.dataDir, "uploads", "My_Notes.txt")); err != nil {
		t.Errorf("uploaded file not saved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.dataDir, "vectors", vectordb.SnapshotFile)); err != nil {
		t.Errorf("vector index not persisted: %v", err)
	}
	if env.srv.Documents().Len() != 1 {
		t.Errorf("expected 1 document, got %d", env.srv.Documents().Len())
	}

	uploads, err := listUploads(t.Context(), env.db)
	if err != nil {
		t.Fatalf("listUploads: %v", err)
	}
	if len(uploads) != 1 || uploads[0].Filename != "My_Notes.txt" || uploads[0].Chunks != 1 {
		t.Errorf("unexpected uploads %+v", uploads)
	}
}

func TestChat_NoDocument(t *testing.T) {
	env := setupTest(t)
	w := env.chat(`{"message":"hi"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := decode(t, w)["error"]; got != msgNoDocument {
		t.Errorf("error = %v", got)
	}
}

func TestChat_MissingMessage(t *testing.T) {
	env := setupTest(t)
	env.upload(t, "a.txt", "content")

	for _, body := range []string{`{}`, `not json`, `{"message":""}`} {
		w := env.chat(body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
			continue
		}
		if got := decode(t, w)["error"]; got != msgMissingQuery {
			t.Errorf("%s: error = %v", body, got)
		}
	}
}

func TestChat_AcceptsMessageOrQuery(t *testing.T) {
	env := setupTest(t, "The meeting is on Tuesday.")
	env.upload(t, "a.txt", "Meeting is on Tuesday.")

	for _, body := range []string{`{"message":"When?"}`, `{"query":"When?"}`} {
		w := env.chat(body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", body, w.Code, w.Body.String())
		}
		if got := decode(t, w)["response"]; got != "The meeting is on Tuesday." {
			t.Errorf("%s: response = %v", body, got)
		}
	}
	if len(env.sleeps) != 0 {
		t.Errorf("expected no retries, slept %v", env.sleeps)
	}
}

func TestChat_RetriesPlaceholderAnswers(t *testing.T) {
	env := setupTest(t, "none", "  N/A ", "Tuesday.")
	env.upload(t, "a.txt", "Meeting is on Tuesday.")

	w := env.chat(`{"message":"When?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["response"]; got != "Tuesday." {
		t.Errorf("response = %v", got)
	}
	want := []time.Duration{250 * time.Millisecond, 500 * time.Millisecond}
	if len(env.sleeps) != len(want) || env.sleeps[0] != want[0] || env.sleeps[1] != want[1] {
		t.Errorf("sleeps = %v, want %v", env.sleeps, want)
	}
}

func TestChat_AllAttemptsFail(t *testing.T) {
	env := setupTest(t, "not found")
	env.upload(t, "a.txt", "Meeting is on Tuesday.")

	w := env.chat(`{"message":"When?"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] != msgChatFailed {
		t.Errorf("error = %v", body["error"])
	}
	if body["detail"] != errPlaceholder.Error() {
		t.Errorf("detail = %v", body["detail"])
	}
	if env.provider.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", env.provider.calls)
	}
	if len(env.sleeps) != 2 {
		t.Errorf("expected no sleep after the final attempt, slept %v", env.sleeps)
	}
}

func TestProfile(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest("POST", "/profile", strings.NewReader(`{"name":"Ada Lovelace","email":"ada@example.com"}`))
	w := env.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["status"] != "success" || body["message"] != "Profile saved successfully" {
		t.Errorf("unexpected body %v", body)
	}
	p, _ := body["profile"].(map[string]any)
	if p["name"] != "Ada Lovelace" || p["phone"] != "" {
		t.Errorf("profile = %v", p)
	}

	w = env.do(httptest.NewRequest("GET", "/profile", nil))
	body = decode(t, w)
	if body["message"] != "Profile endpoint ready" {
		t.Errorf("message = %v", body["message"])
	}
	if p, _ := body["profile"].(map[string]any); p["email"] != "ada@example.com" {
		t.Errorf("stored profile = %v", body["profile"])
	}

	w = env.do(httptest.NewRequest("POST", "/profile", strings.NewReader(`{bad`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed profile, got %d", w.Code)
	}
}

func TestDebugRetrieval(t *testing.T) {
	env := setupTest(t)

	w := env.do(httptest.NewRequest("GET", "/debug_retrieval?query=x", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 before upload, got %d", w.Code)
	}

	env.upload(t, "a.txt", "Alpha paragraph.\n\nBeta paragraph.")

	w = env.do(httptest.NewRequest("GET", "/debug_retrieval", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without query, got %d", w.Code)
	}

	w = env.do(httptest.NewRequest("GET", "/debug_retrieval?query=alpha&k=bogus", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["query"] != "alpha" {
		t.Errorf("query = %v", body["query"])
	}
	results, _ := body["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %v", body["results"])
	}
	item := results[0].(map[string]any)
	if item["text"] != "Alpha paragraph.\n\nBeta paragraph." {
		t.Errorf("text = %v", item["text"])
	}
	if item["source"] != "a.txt" {
		t.Errorf("source = %v", item["source"])
	}
	if sources, _ := body["sources"].([]any); len(sources) != 1 || sources[0] != "a.txt" {
		t.Errorf("sources = %v", body["sources"])
	}
}

func TestIndexPage(t *testing.T) {
	env := setupTest(t)
	w := env.do(httptest.NewRequest("GET", "/", nil))
	if !strings.Contains(w.Body.String(), "No documents loaded yet") {
		t.Errorf("expected empty list, got %s", w.Body.String())
	}

	env.upload(t, "report.md", "# Report")
	w = env.do(httptest.NewRequest("GET", "/", nil))
	if !strings.Contains(w.Body.String(), "report.md") {
		t.Errorf("expected document in page, got %s", w.Body.String())
	}

	w = env.do(httptest.NewRequest("GET", "/documents", nil))
	var docs []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &docs); err != nil || len(docs) != 1 {
		t.Errorf("documents = %s (%v)", w.Body.String(), err)
	}
}

func TestMetrics(t *testing.T) {
	env := setupTest(t)
	env.upload(t, "a.txt", "content")
	env.do(httptest.NewRequest("GET", "/healthz", nil))

	w := env.do(httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	out := w.Body.String()
	for _, want := range []string{
		`http_requests_total{method="GET",path="/healthz",status="200"} 1`,
		`http_requests_total{method="POST",path="/upload",status="200"} 1`,
		`docchat_uploads_total{result="ok"} 1`,
		`docchat_indexed_chunks_total 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestWebSocketChat(t *testing.T) {
	env := setupTest(t, "Tuesday.")
	ts := httptest.NewServer(env.srv.Router())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/chat", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var resp wsResponse
	conn.WriteJSON(wsRequest{Content: "When?"})
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "error" || resp.Content != msgNoDocument {
		t.Errorf("expected no-document error, got %+v", resp)
	}

	env.upload(t, "a.txt", "Meeting is on Tuesday.")

	conn.WriteJSON(wsRequest{Content: "When?"})
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "response" || resp.Content != "Tuesday." {
		t.Errorf("unexpected response %+v", resp)
	}

	conn.WriteMessage(websocket.TextMessage, []byte("{"))
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "error" {
		t.Errorf("expected error for malformed message, got %+v", resp)
	}
}

func TestRestore(t *testing.T) {
	env := setupTest(t)
	env.upload(t, "kept.txt", "Persisted content.")

	restored := newTestServer(t, env)
	if err := restored.Restore(t.Context()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Documents().Len() != 1 {
		t.Fatalf("expected 1 restored document, got %d", restored.Documents().Len())
	}
	if restored.store.Count() != 1 {
		t.Errorf("expected 1 restored chunk, got %d", restored.store.Count())
	}
}

func TestUpload_SameFilenameListedOnce(t *testing.T) {
	env := setupTest(t)
	env.upload(t, "notes.txt", "First revision.")
	if w := env.upload(t, "notes.txt", "Second revision."); w.Code != http.StatusOK {
		t.Fatalf("re-upload: status %d: %s", w.Code, w.Body.String())
	}

	if n := env.srv.Documents().Len(); n != 1 {
		t.Errorf("documents listed = %d, want 1", n)
	}
	uploads, err := listUploads(t.Context(), env.db)
	if err != nil {
		t.Fatalf("listUploads: %v", err)
	}
	if len(uploads) != 1 {
		t.Fatalf("upload rows = %d, want 1", len(uploads))
	}

	restored := newTestServer(t, env)
	if err := restored.Restore(t.Context()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if n := restored.Documents().Len(); n != 1 {
		t.Errorf("restored documents = %d, want 1", n)
	}
}

func TestRestore_Empty(t *testing.T) {
	env := setupTest(t)
	if err := env.srv.Restore(t.Context()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if env.srv.Documents().Len() != 0 {
		t.Errorf("expected no documents")
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"report.pdf", "report.pdf"},
		{"My Report 2024.pdf", "My_Report_2024.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\notes.txt`, "notes.txt"},
		{".hidden", "hidden"},
		{"naïve résumé.txt", "nave_rsum.txt"},
		{"///", ""},
	}
	for _, tt := range tests {
		if got := secureFilename(tt.in); got != tt.want {
			t.Errorf("secureFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
