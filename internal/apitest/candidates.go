package apitest

import (
	"io"
	"net/http"
	"regexp"
	"strings"

	"cfadesk.org/internal/domain"
	"cfadesk.org/internal/ids"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// AddCandidate seeds a candidate and returns it with its id.
func (s *Server) AddCandidate(c domain.Candidate) domain.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.next("candidate")
	if c.Statut == "" {
		c.Statut = domain.StatusNouveau
	}
	stored := c
	s.candidates = append(s.candidates, &stored)
	return c
}

// Candidate returns the server-side record.
func (s *Server) Candidate(id int64) (domain.Candidate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.findCandidate(id)
	if c == nil {
		return domain.Candidate{}, false
	}
	return *c, true
}

func (s *Server) findCandidate(id int64) *domain.Candidate {
	for _, c := range s.candidates {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	var filter domain.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		filter = st
	}
	s.mu.RLock()
	out := make([]domain.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if filter != "" && c.Statut != filter {
			continue
		}
		out = append(out, *c)
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Civilite  string `json:"civilite"`
		Statut    string `json:"statut"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		writeError(w, http.StatusUnprocessableEntity, "first_name and last_name are required")
		return
	}
	status := domain.StatusNouveau
	if in.Statut != "" {
		st, err := domain.ParseStatus(in.Statut)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		status = st
	}
	civ := in.Civilite
	if civ == "" {
		civ = "M"
	}
	c := domain.Candidate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Statut:    status,
		TenantID:  claimsFrom(r.Context()).TenantID,
	}
	c = s.AddCandidate(c)
	s.mu.Lock()
	s.civilites[c.ID] = civ
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	text := string(data)
	var detected *string
	if m := emailPattern.FindString(text); m != "" {
		detected = &m
	}
	c := domain.Candidate{
		FirstName:  "Candidat",
		LastName:   "Inconnu",
		Statut:     domain.StatusNouveau,
		CVFilename: hdr.Filename,
		TenantID:   claimsFrom(r.Context()).TenantID,
	}
	if detected != nil {
		c.Email = *detected
	}
	c = s.AddCandidate(c)
	s.mu.Lock()
	s.cvs[c.ID] = storedFile{name: ids.New() + "_" + hdr.Filename, data: data}
	s.mu.Unlock()

	preview := ""
	if text != "" {
		runes := []rune(text)
		if len(runes) > 200 {
			runes = runes[:200]
		}
		preview = string(runes) + "..."
	}
	writeJSON(w, http.StatusOK, domain.UploadResult{
		ID:            c.ID,
		EmailDetected: detected,
		TextPreview:   preview,
		Status:        c.Statut,
	})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	status, err := domain.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findCandidate(id)
	if c == nil {
		writeError(w, http.StatusNotFound, "Candidat not found")
		return
	}
	c.Statut = status
	writeJSON(w, http.StatusOK, *c)
}
