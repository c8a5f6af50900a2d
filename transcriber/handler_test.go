package transcriber

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/voicenotes/ingest"
	"github.com/skillsenselab/voicenotes/logger"
	"github.com/skillsenselab/voicenotes/store"
	"github.com/skillsenselab/voicenotes/transcription"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct {
	text string
}

func (p *stubProvider) Name() string                         { return "stub" }
func (p *stubProvider) IsAvailable(ctx context.Context) bool { return true }
func (p *stubProvider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	return &transcription.Response{Text: p.text}, nil
}

type testEnv struct {
	router   *gin.Engine
	entries  *store.EntryStore
	audioDir string
}

func newTestEnv(t *testing.T, transcript string) *testEnv {
	t.Helper()
	log := logger.NewDefault("test")

	db, err := store.Open(context.Background(), store.Config{
		DSN: filepath.Join(t.TempDir(), "test.db"),
	}, log)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	entries := store.NewEntryStore(db, log)

	audioDir := t.TempDir()
	gateway := transcription.NewGateway(&stubProvider{text: transcript}, log)
	coord := ingest.NewCoordinator(
		ingest.Config{Mode: ingest.ModeLocal, LocalAudioDir: audioDir},
		entries, gateway, nil, log)

	router := gin.New()
	NewHandler(coord, log).Register(router)

	return &testEnv{router: router, entries: entries, audioDir: audioDir}
}

func (e *testEnv) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transcripts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)
	return w
}

func TestTranscribe_Success(t *testing.T) {
	env := newTestEnv(t, "hello hello hello world world world")
	if err := os.WriteFile(filepath.Join(env.audioDir, "talk.wav"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	if err := env.entries.Create(context.Background(), &store.Entry{ID: "talk.wav"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	w := env.post(t, `{"audio_file_path":"talk.wav"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var resp TranscribeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Transcript != "hello hello hello world world world" {
		t.Errorf("transcript = %q", resp.Transcript)
	}
	if resp.Message != "transcript saved" {
		t.Errorf("message = %q, want %q", resp.Message, "transcript saved")
	}

	stored, err := env.entries.Get(context.Background(), "talk.wav")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.WordCount != 6 {
		t.Errorf("stored word count = %d, want 6", stored.WordCount)
	}
}

func TestTranscribe_MissingPath(t *testing.T) {
	env := newTestEnv(t, "hello")

	w := env.post(t, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = env.post(t, `{"audio_file_path":""}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestTranscribe_RejectsPathComponents(t *testing.T) {
	env := newTestEnv(t, "hello")

	for _, ref := range []string{"../uploads/talk.wav", "uploads/talk.wav", "/etc/passwd"} {
		w := env.post(t, `{"audio_file_path":"`+ref+`"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("post(%q) status = %d, want %d", ref, w.Code, http.StatusBadRequest)
		}
	}
}

func TestTranscribe_MalformedBody(t *testing.T) {
	env := newTestEnv(t, "hello")

	w := env.post(t, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestTranscribe_FileNotFound(t *testing.T) {
	env := newTestEnv(t, "hello")

	w := env.post(t, `{"audio_file_path":"ghost.wav"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d (body: %s)", w.Code, http.StatusNotFound, w.Body.String())
	}
}

func TestTranscribe_EntryNotFound(t *testing.T) {
	env := newTestEnv(t, "hello")
	if err := os.WriteFile(filepath.Join(env.audioDir, "orphan.wav"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	w := env.post(t, `{"audio_file_path":"orphan.wav"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d (body: %s)", w.Code, http.StatusNotFound, w.Body.String())
	}
}
