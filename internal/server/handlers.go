package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/chatflowhq/chatflow/internal/analytics"
	"github.com/chatflowhq/chatflow/internal/chat"
	"github.com/chatflowhq/chatflow/internal/database"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.CreateAccount(r.Context(), creds.Username, creds.Password); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			s.writeError(w, http.StatusConflict, "username already exists")
			return
		}
		s.logger.Error("signup failed", "error", err)
		s.writeError(w, http.StatusBadRequest, "could not create account")
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"username": creds.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.Authenticate(r.Context(), creds.Username, creds.Password); err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			s.writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.logger.Error("login failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token := s.sessions.Create(creds.Username)
	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(requestToken(r))
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload parses a .txt chat export into the caller's session,
// replacing any previous transcript. The transcript never touches the
// database.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	transcript := chat.Parse(string(data))
	if !s.sessions.SetTranscript(requestToken(r), transcript) {
		s.writeError(w, http.StatusUnauthorized, "session expired")
		return
	}

	s.logger.Info("transcript uploaded",
		"filename", header.Filename,
		"messages", transcript.Len(),
		"dropped", transcript.Dropped)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"messages": transcript.Len(),
		"dropped":  transcript.Dropped,
	})
}

// handleUsers lists selectable participants, "Overall" first then sorted
// senders, mirroring the analysis selector.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	transcript := s.sessions.Transcript(requestToken(r))
	if transcript == nil {
		s.writeError(w, http.StatusConflict, "no transcript uploaded")
		return
	}

	users := append([]string{analytics.Overall}, transcript.Participants()...)
	s.writeJSON(w, http.StatusOK, map[string][]string{"users": users})
}

// handleAnalysis returns the full aggregate report for the selected user.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	transcript := s.sessions.Transcript(requestToken(r))
	if transcript == nil {
		s.writeError(w, http.StatusConflict, "no transcript uploaded")
		return
	}

	user := selectedUser(r, transcript)
	report := analytics.BuildReport(r.Context(), transcript, user)
	s.writeJSON(w, http.StatusOK, report)
}

// selectedUser validates the ?user= query parameter against the transcript,
// falling back to Overall for unknown or absent values.
func selectedUser(r *http.Request, t *chat.Transcript) string {
	user := r.URL.Query().Get("user")
	if user == "" || user == analytics.Overall {
		return analytics.Overall
	}
	participants := t.Participants()
	if i := sort.SearchStrings(participants, user); i < len(participants) && participants[i] == user {
		return user
	}
	return analytics.Overall
}

func (s *Server) handleSaveFeedback(w http.ResponseWriter, r *http.Request) {
	var fb database.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.SaveFeedback(r.Context(), &fb); err != nil {
		s.writeError(w, http.StatusBadRequest, "could not save feedback")
		return
	}
	s.writeJSON(w, http.StatusCreated, fb)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListFeedback(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not list feedback")
		return
	}
	if list == nil {
		list = []database.Feedback{}
	}
	s.writeJSON(w, http.StatusOK, list)
}
