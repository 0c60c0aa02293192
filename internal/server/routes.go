package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/mohsalah/askdoc/internal/pipeline"
)

// userIDHeader identifies the caller on every pipeline endpoint.
const userIDHeader = "userId"

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type questionsRequest struct {
	DocumentText string `json:"document_text"`
	NumQuestions int    `json:"num_questions"`
}

type questionsResponse struct {
	Status    string   `json:"status"`
	Questions []string `json:"questions"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

// statusForError maps pipeline sentinels to HTTP status codes and a
// client-safe message. Unknown errors become a generic 500 so internals
// never leak to the client.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput),
		errors.Is(err, pipeline.ErrUnsupportedType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, pipeline.ErrNoDocument),
		errors.Is(err, pipeline.ErrNoIndex):
		return http.StatusNotFound, err.Error()
	default:
		log.Printf("server: %v", err)
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := statusForError(err)
	writeJSON(w, status, errorResponse{Error: msg})
}

func userID(r *http.Request) (string, bool) {
	id := r.Header.Get(userIDHeader)
	return id, id != ""
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing userId header"})
		return
	}
	if err := r.ParseMultipartForm(s.cfg.MaxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reading upload failed"})
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file too large"})
		return
	}

	msg, err := s.pipeline.SubmitDocument(r.Context(), uid, header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing userId header"})
		return
	}
	msg, err := s.pipeline.BuildIndex(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing userId header"})
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	answer, err := s.pipeline.Ask(r.Context(), uid, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

func (s *Server) handleGetQuestions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing userId header"})
		return
	}
	var req questionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	questions, err := s.pipeline.GenerateQuestions(r.Context(), uid, req.DocumentText, req.NumQuestions)
	if err != nil {
		// This endpoint keeps the original status/message envelope.
		status, msg := statusForError(err)
		writeJSON(w, status, struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}{Status: "error", Message: msg})
		return
	}
	if questions == nil {
		questions = []string{}
	}
	writeJSON(w, http.StatusOK, questionsResponse{Status: "success", Questions: questions})
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing userId header"})
		return
	}
	msg, err := s.pipeline.Flush(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}
