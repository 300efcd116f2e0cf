package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/docchat/internal/client"
	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/profile"
	"github.com/ziadkadry99/docchat/internal/qa"
	"github.com/ziadkadry99/docchat/internal/vectordb"
	"github.com/ziadkadry99/docchat/internal/walker"
)

const (
	msgNoFilePart    = "No file part in request"
	msgNoSelected    = "No selected file"
	msgNoDocument    = "No file processed. POST /upload with a file first."
	msgMissingQuery  = "Missing `message` in request body."
	msgChatFailed    = "Server error while processing the query."
	msgNoVectorstore = "No vectorstore ready. Upload a document first."
)

// errPlaceholder marks an answer that carries no information.
var errPlaceholder = errors.New("empty response from QA chain")

type uploadResponse struct {
	Status       string `json:"status"`
	InitialReply string `json:"initial_reply"`
	Filename     string `json:"filename"`
}

type chatRequest struct {
	Message string `json:"message"`
	Query   string `json:"query"`
}

type retrievalItem struct {
	Score  float32 `json:"score"`
	Source string  `json:"source"`
	Text   string  `json:"text"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.metrics.uploads.WithLabelValues("rejected").Inc()
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "File too large"})
			return
		}
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgNoFilePart})
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		// A file input submitted with nothing selected arrives as a plain
		// value with an empty filename.
		msg := msgNoFilePart
		if _, ok := r.MultipartForm.Value["file"]; ok {
			msg = msgNoSelected
		}
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	header := files[0]
	if header.Filename == "" {
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgNoSelected})
		return
	}

	filename := secureFilename(header.Filename)
	if filename == "" {
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid file name"})
		return
	}
	if !(walker.Filter{Include: s.cfg.AllowedTypes}).Match(filename) {
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("File type not allowed. Allowed: %s", strings.Join(s.cfg.AllowedTypes, ", ")),
		})
		return
	}
	if header.Size > s.cfg.MaxUploadBytes {
		s.metrics.uploads.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "File too large"})
		return
	}

	path, size, err := s.saveUpload(header, filename)
	if err != nil {
		log.Printf("server: saving upload %s: %v", filename, err)
		s.metrics.uploads.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save file", "detail": err.Error()})
		return
	}

	text, err := qa.ExtractText(path)
	if err != nil {
		log.Printf("server: extracting %s: %v", filename, err)
		s.metrics.uploads.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "Could not read file", "detail": err.Error()})
		return
	}

	ctx := r.Context()
	id := uuid.NewString()
	chunks, err := s.chain.Index(ctx, id, filename, text)
	if err != nil {
		log.Printf("server: indexing %s: %v", filename, err)
		s.metrics.uploads.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to index file", "detail": err.Error()})
		return
	}
	s.metrics.chunks.Add(float64(chunks))

	now := time.Now()
	if err := recordUpload(ctx, s.db, upload{
		ID: id, Filename: filename, Path: path, SizeBytes: size, Chunks: chunks, CreatedAt: now,
	}); err != nil {
		log.Printf("server: %v", err)
	}
	if err := s.store.Persist(ctx, s.vectorDir()); err != nil {
		log.Printf("server: persisting vector index: %v", err)
	}

	s.docs.Put(filename, now, documents.SizeLabel(size))
	s.metrics.uploads.WithLabelValues("ok").Inc()

	writeJSON(w, http.StatusOK, uploadResponse{
		Status:       "file processed successfully",
		InitialReply: fmt.Sprintf("✓ Welcome! '%s' has been loaded successfully. You can now ask questions about it.", filename),
		Filename:     filename,
	})
}

// saveUpload copies the uploaded content to the upload directory.
func (s *Server) saveUpload(header *multipart.FileHeader, filename string) (string, int64, error) {
	if err := os.MkdirAll(s.uploadDir(), 0o755); err != nil {
		return "", 0, fmt.Errorf("creating upload directory: %w", err)
	}
	src, err := header.Open()
	if err != nil {
		return "", 0, fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	path := filepath.Join(s.uploadDir(), filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("creating %s: %w", path, err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return path, n, nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.docs.Len() == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgNoDocument})
		return
	}

	var req chatRequest
	// An unparseable body is treated like an empty one.
	_ = json.NewDecoder(r.Body).Decode(&req)
	query := req.Message
	if query == "" {
		query = req.Query
	}
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgMissingQuery})
		return
	}

	answer, err := s.answer(r.Context(), query)
	if err != nil {
		log.Printf("server: /chat: all retries failed. last error: %v", err)
		s.metrics.chats.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  msgChatFailed,
			"detail": err.Error(),
		})
		return
	}
	s.metrics.chats.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}

// answerFunc adapts a function to client.Chatter.
type answerFunc func(ctx context.Context, question string) (string, error)

func (f answerFunc) Chat(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

// answer runs the QA chain with retries. Placeholder answers count as
// failed attempts.
func (s *Server) answer(ctx context.Context, question string) (string, error) {
	retry := client.Retry{
		Attempts: s.cfg.ChatAttempts,
		Backoff:  s.cfg.ChatBackoff,
		Sleep:    s.sleep,
	}
	attempt := 0
	return retry.Send(ctx, answerFunc(func(ctx context.Context, q string) (string, error) {
		attempt++
		text, err := s.chain.Answer(ctx, q)
		if err != nil {
			log.Printf("server: qa attempt %d failed: %v", attempt, err)
			return "", err
		}
		if isPlaceholder(text) {
			return "", errPlaceholder
		}
		return text, nil
	}), question)
}

func isPlaceholder(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "none", "n/a", "not found":
		return true
	}
	return false
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Load(r.Context())
	if err != nil {
		log.Printf("server: loading profile: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Profile endpoint ready",
		"profile": p,
	})
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.profiles.Save(r.Context(), p); err != nil {
		log.Printf("server: saving profile: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Profile saved successfully",
		"profile": p,
	})
}

func (s *Server) handleDebugRetrieval(w http.ResponseWriter, r *http.Request) {
	if s.store.Count() == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgNoVectorstore})
		return
	}
	q := r.URL.Query().Get("query")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing query parameter."})
		return
	}
	k, err := strconv.Atoi(r.URL.Query().Get("k"))
	if err != nil || k <= 0 {
		k = 5
	}

	results, err := s.chain.Search(r.Context(), q, k)
	if err != nil {
		log.Printf("server: /debug_retrieval: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Retrieval failed.", "detail": err.Error()})
		return
	}
	items := make([]retrievalItem, len(results))
	for i, res := range results {
		items[i] = retrievalItem{
			Score:  res.Similarity,
			Source: res.Document.Metadata.Source,
			Text:   res.Document.Content,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"sources": vectordb.Sources(results),
		"results": items,
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.docs.All())
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Document chat</title></head>
<body>
<h1>Document chat</h1>
<section class="documents">
{{.}}
</section>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// RenderHTML escapes every record field.
	list := template.HTML(documents.RenderHTML(s.docs.All()))
	if err := indexTemplate.Execute(w, list); err != nil {
		log.Printf("server: rendering index: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
