package apitest

import (
	"net/http"
	"strconv"
	"strings"

	"cfadesk.org/internal/domain"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("username"))
	s.mu.RLock()
	u, ok := s.users[email]
	s.mu.RUnlock()
	if !ok || u.password != r.PostForm.Get("password") {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	token, err := s.sign(u, s.now().Add(s.ttl))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	id, _ := strconv.ParseInt(claims.Subject, 10, 64)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.id == id {
			writeJSON(w, http.StatusOK, map[string]any{
				"id":        u.id,
				"email":     u.email,
				"tenant_id": u.tenantID,
				"role":      u.role,
			})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Could not validate credentials")
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]domain.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, *c)
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var in domain.CompanyCreate
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if strings.TrimSpace(in.RaisonSociale) == "" {
		writeError(w, http.StatusUnprocessableEntity, "raison_sociale is required")
		return
	}
	c := s.AddCompany(domain.Company{
		RaisonSociale: in.RaisonSociale,
		Siret:         in.Siret,
		Adresse:       in.Adresse,
		CodeIDCC:      in.CodeIDCC,
	})
	writeJSON(w, http.StatusOK, c)
}
