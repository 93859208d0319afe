package domain

import (
	"fmt"
	"strings"
)

// Company is an employer (entreprise) hosting apprentices.
type Company struct {
	ID            int64  `json:"id"`
	RaisonSociale string `json:"raison_sociale"`
	Siret         string `json:"siret,omitempty"`
	Adresse       string `json:"adresse,omitempty"`
	CodeIDCC      string `json:"code_idcc,omitempty"`
}

// CompanyCreate is the body of POST /entreprises/.
type CompanyCreate struct {
	RaisonSociale string `json:"raison_sociale"`
	Siret         string `json:"siret,omitempty"`
	Adresse       string `json:"adresse,omitempty"`
	CodeIDCC      string `json:"code_idcc,omitempty"`
}

func (c CompanyCreate) Validate() error {
	if strings.TrimSpace(c.RaisonSociale) == "" {
		return fmt.Errorf("%w: raison_sociale is required", ErrInvalidInput)
	}
	return nil
}
