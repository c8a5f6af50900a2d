package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/voicenotes/blobstore"
	"github.com/skillsenselab/voicenotes/logger"
	"github.com/skillsenselab/voicenotes/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubTranscriber records requests and optionally fails.
type stubTranscriber struct {
	requested []string
	err       error
}

func (s *stubTranscriber) RequestTranscription(ctx context.Context, audioFile string) error {
	if s.err != nil {
		return s.err
	}
	s.requested = append(s.requested, audioFile)
	return nil
}

type testEnv struct {
	router      *gin.Engine
	entries     *store.EntryStore
	blobs       *blobstore.Local
	transcriber *stubTranscriber
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewDefault("test")

	db, err := store.Open(context.Background(), store.Config{
		DSN: filepath.Join(t.TempDir(), "test.db"),
	}, log)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	entries := store.NewEntryStore(db, log)

	blobs, err := blobstore.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("blobstore.NewLocal() error = %v", err)
	}

	transcriber := &stubTranscriber{}
	router := gin.New()
	NewHandler(entries, blobs, transcriber, log).Register(router)

	return &testEnv{router: router, entries: entries, blobs: blobs, transcriber: transcriber}
}

func (e *testEnv) createEntry(t *testing.T, id, title string) {
	t.Helper()
	if err := e.entries.Create(context.Background(), &store.Entry{ID: id, Title: title}); err != nil {
		t.Fatalf("Create(%q) error = %v", id, err)
	}
}

func multipartUpload(t *testing.T, fields map[string]string, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(%q) error = %v", k, err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("audio", filename)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		if _, err := fw.Write([]byte("RIFF fake audio")); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUpload_StripsControlCharactersFromMetadata(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartUpload(t, map[string]string{
		"title":   "  Team\x00 Talk\t ",
		"speaker": "Al\x1bice",
	}, "talk.wav")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp struct {
		Data UploadResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got := resp.Data.Entry.Title; got != "Team Talk" {
		t.Errorf("Title = %q, want %q", got, "Team Talk")
	}
	if got := resp.Data.Entry.Speaker; got != "Alice" {
		t.Errorf("Speaker = %q, want %q", got, "Alice")
	}
}

func TestList_ReturnsEntriesNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.createEntry(t, "first.wav", "First")
	time.Sleep(10 * time.Millisecond)
	env.createEntry(t, "second.wav", "Second")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Data []store.Entry `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("len(data) = %d, want 2", len(resp.Data))
	}
	if resp.Data[0].ID != "second.wav" {
		t.Errorf("data[0].ID = %q, want %q (newest first)", resp.Data[0].ID, "second.wav")
	}
}

func TestList_KeywordFilter(t *testing.T) {
	env := newTestEnv(t)
	env.createEntry(t, "standup.wav", "Morning Standup")
	env.createEntry(t, "retro.wav", "Sprint Retro")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?keyword=standup", nil))

	var resp struct {
		Data []store.Entry `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "standup.wav" {
		t.Errorf("data = %v, want only standup.wav", resp.Data)
	}
}

func TestUpload_CreatesEntryAndRequestsTranscription(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartUpload(t, map[string]string{
		"title":       "Team Talk",
		"speaker":     "Alice",
		"date":        "2026-08-30",
		"description": "weekly sync",
	}, "team talk.wav")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp struct {
		Data UploadResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	entry := resp.Data.Entry
	if entry == nil {
		t.Fatal("response entry is nil")
	}
	if entry.Title != "Team Talk" {
		t.Errorf("Title = %q, want %q", entry.Title, "Team Talk")
	}
	if entry.Context != "weekly sync" {
		t.Errorf("Context = %q, want %q (description maps to context)", entry.Context, "weekly sync")
	}
	if !strings.HasSuffix(entry.ID, "team_talk.wav") {
		t.Errorf("ID = %q, want sanitized original name suffix", entry.ID)
	}
	if !resp.Data.Transcribed {
		t.Error("Transcribed = false, want true")
	}

	if len(env.transcriber.requested) != 1 || env.transcriber.requested[0] != entry.ID {
		t.Errorf("transcriber requests = %v, want [%s]", env.transcriber.requested, entry.ID)
	}

	exists, err := env.blobs.Exists(context.Background(), entry.ID)
	if err != nil || !exists {
		t.Errorf("blob %q not persisted (exists=%v, err=%v)", entry.ID, exists, err)
	}
}

func TestUpload_DefaultsAppliedForBlankMetadata(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartUpload(t, nil, "raw.wav")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp struct {
		Data UploadResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	entry := resp.Data.Entry
	if entry.Title != store.DefaultTitle {
		t.Errorf("Title = %q, want %q", entry.Title, store.DefaultTitle)
	}
	if entry.Speaker != store.DefaultSpeaker {
		t.Errorf("Speaker = %q, want %q", entry.Speaker, store.DefaultSpeaker)
	}
}

func TestUpload_MissingAudioFile(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartUpload(t, map[string]string{"title": "No File"}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUpload_SurvivesTranscriberOutage(t *testing.T) {
	env := newTestEnv(t)
	env.transcriber.err = errors.New("connection refused")

	body, contentType := multipartUpload(t, nil, "talk.wav")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp struct {
		Data UploadResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Transcribed {
		t.Error("Transcribed = true, want false when transcriber is down")
	}
	if resp.Data.Entry.Transcript != "" {
		t.Errorf("Transcript = %q, want empty", resp.Data.Entry.Transcript)
	}
}

func TestShow_ReturnsEntry(t *testing.T) {
	env := newTestEnv(t)
	env.createEntry(t, "talk.wav", "A Talk")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/entries/talk.wav", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Data store.Entry `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Title != "A Talk" {
		t.Errorf("Title = %q, want %q", resp.Data.Title, "A Talk")
	}
}

func TestShow_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/entries/ghost.wav", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestEdit_RecomputesDerivedFieldsFromTranscript(t *testing.T) {
	env := newTestEnv(t)
	env.createEntry(t, "talk.wav", "A Talk")

	edit := `{"transcript":"rain rain rain walk walk walk tree tree tree the the a"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/entries/talk.wav/edit", strings.NewReader(edit))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Data struct {
			Entry   store.Entry `json:"entry"`
			Changed bool        `json:"changed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Data.Changed {
		t.Error("changed = false, want true")
	}
	if resp.Data.Entry.WordCount != 12 {
		t.Errorf("WordCount = %d, want 12", resp.Data.Entry.WordCount)
	}
	if len(resp.Data.Entry.TopWords) != 3 {
		t.Errorf("TopWords = %v, want 3 entries", resp.Data.Entry.TopWords)
	}
}

func TestEdit_NoOpReportsUnchanged(t *testing.T) {
	env := newTestEnv(t)
	env.createEntry(t, "talk.wav", "A Talk")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/entries/talk.wav/edit", strings.NewReader(`{"title":"A Talk"}`))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Data struct {
			Changed bool `json:"changed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Changed {
		t.Error("changed = true, want false for no-op edit")
	}
}

func TestEdit_RejectsOverlongTitle(t *testing.T) {
	env := newTestEnv(t)
	env.createEntry(t, "talk.wav", "A Talk")

	body := fmt.Sprintf(`{"title":%q}`, strings.Repeat("x", 201))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/entries/talk.wav/edit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestEdit_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/entries/ghost.wav/edit", strings.NewReader(`{"title":"X"}`))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestEditForm_ReturnsCurrentFields(t *testing.T) {
	env := newTestEnv(t)
	env.createEntry(t, "talk.wav", "A Talk")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/entries/talk.wav/edit", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data["title"] != "A Talk" {
		t.Errorf("title = %v, want %q", resp.Data["title"], "A Talk")
	}
}

func TestDelete_RemovesEntry(t *testing.T) {
	env := newTestEnv(t)
	env.createEntry(t, "talk.wav", "A Talk")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/entries/talk.wav/delete", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	if _, err := env.entries.Get(context.Background(), "talk.wav"); err == nil {
		t.Error("entry still present after delete")
	}
}

func TestDelete_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/entries/ghost.wav/delete", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUniqueFilename_SanitizesAndPrefixes(t *testing.T) {
	got := uniqueFilename("my talk (final).wav")
	if !strings.HasSuffix(got, "my_talk_final_.wav") {
		t.Errorf("uniqueFilename() = %q, want sanitized suffix", got)
	}
	if len(strings.SplitN(got, "_", 3)) != 3 {
		t.Errorf("uniqueFilename() = %q, want timestamp_random_name shape", got)
	}
}
