package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/w-h-a/vecstore/session"
)

var errNotFound = errors.New("not found")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleAddDocuments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Texts     []string            `json:"texts"`
		Metadatas []map[string]string `json:"metadatas,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ids, err := s.toolkit.RAG().AddTexts(r.Context(), req.Texts, req.Metadatas)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"ids": ids})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		K     int    `json:"k,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	documents, err := s.toolkit.RAG().Retrieve(r.Context(), req.Query, req.K)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": documents})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		K     int    `json:"k,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.toolkit.RAG().Query(r.Context(), req.Query, req.K)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCacheGet(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	entry, err := s.toolkit.Cache().Get(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if entry == nil {
		writeError(w, http.StatusNotFound, errNotFound)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleCacheSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query    string `json:"query"`
		Response string `json:"response"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := s.toolkit.Cache().Set(r.Context(), req.Query, req.Response)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	invalidated, err := s.toolkit.Cache().Invalidate(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"invalidated": invalidated})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Metadata map[string]string `json:"metadata,omitempty"`
	}

	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	session := s.toolkit.Sessions().CreateSession(r.Context(), req.Metadata)

	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.toolkit.Sessions().ListSessions(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{"session_ids": ids})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session := s.toolkit.Sessions().GetSession(r.Context(), id)
	if session == nil {
		writeError(w, http.StatusNotFound, errNotFound)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted := s.toolkit.Sessions().DeleteSession(r.Context(), id)

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var message *session.Message
	switch req.Role {
	case session.RoleAssistant:
		message = s.toolkit.Sessions().AddAssistantMessage(r.Context(), id, req.Content)
	case session.RoleSystem:
		message = s.toolkit.Sessions().AddSystemMessage(r.Context(), id, req.Content)
	default:
		message = s.toolkit.Sessions().AddUserMessage(r.Context(), id, req.Content)
	}

	if message == nil {
		writeError(w, http.StatusNotFound, errNotFound)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history := s.toolkit.Sessions().GetMessageHistory(r.Context(), id, limit)

	writeJSON(w, http.StatusOK, map[string]any{"messages": history})
}
