// Package i18n holds the user-facing strings of the console.
package i18n

import "strings"

const defaultLang = "fr"

var messages = map[string]map[string]string{
	"fr": {
		"status_update_failed":     "Erreur lors de la mise à jour du statut",
		"upload_failed":            "Erreur lors de l'upload du CV",
		"upload_loading":           "Analyse du CV en cours...",
		"contract_missing_party":   "Veuillez sélectionner un candidat et une entreprise.",
		"contract_created":         "Contrat créé avec succès !",
		"contract_create_failed":   "Erreur lors de la création du contrat",
		"amendment_saved":          "Avenant enregistré avec succès. Une nouvelle version a été créée.",
		"amendment_failed":         "Erreur lors de la création de l'avenant",
		"export_failed":            "Erreur lors du téléchargement",
		"dashboard_load_failed":    "Impossible de charger les données du dashboard.",
		"session_create_failed":    "Erreur création",
		"calendar_generate_failed": "Erreur génération",
		"session_required":         "Veuillez sélectionner une session",
		"login_failed":             "Identifiants incorrects ou erreur serveur.",
		"login_required":           "Veuillez vous connecter.",
		"calendar_empty":           "Aucun jour de formation planifié.",
		"rejected":                 "Rejetés",
		"unclassified":             "Sans statut",
		"none":                     "Aucun",
		"logged_in":                "Connexion réussie.",
		"logged_out":               "Vous êtes déconnecté.",
		"status_updated":           "Statut mis à jour.",
		"upload_done":              "CV importé.",
		"candidate_created":        "Candidat créé.",
		"company_created":          "Entreprise créée.",
		"session_created":          "Session créée.",
		"export_saved":             "Export enregistré :",
		"amendment_unchanged":      "Aucune modification saisie.",
		"attendance_saved":         "Présence enregistrée.",
		"attendance_failed":        "Erreur lors de l'enregistrement de la présence",
		"attendance_no_day":        "Aucun jour de formation à cette date pour ce contrat.",
		"invoice_generated":        "Facture générée (brouillon).",
		"invoice_failed":           "Erreur lors de la génération de la facture",
	},
	"en": {
		"status_update_failed":     "Failed to update the status",
		"upload_failed":            "Failed to upload the CV",
		"upload_loading":           "Parsing CV...",
		"contract_missing_party":   "Please select a candidate and a company.",
		"contract_created":         "Contract created!",
		"contract_create_failed":   "Failed to create the contract",
		"amendment_saved":          "Amendment saved. A new version was created.",
		"amendment_failed":         "Failed to create the amendment",
		"export_failed":            "Download failed",
		"dashboard_load_failed":    "Unable to load dashboard data.",
		"session_create_failed":    "Creation failed",
		"calendar_generate_failed": "Generation failed",
		"session_required":         "Please select a session",
		"login_failed":             "Invalid credentials or server error.",
		"login_required":           "Please log in.",
		"calendar_empty":           "No training day scheduled.",
		"rejected":                 "Rejected",
		"unclassified":             "Unclassified",
		"none":                     "None",
		"logged_in":                "Logged in.",
		"logged_out":               "You are logged out.",
		"status_updated":           "Status updated.",
		"upload_done":              "CV imported.",
		"candidate_created":        "Candidate created.",
		"company_created":          "Company created.",
		"session_created":          "Session created.",
		"export_saved":             "Export saved:",
		"amendment_unchanged":      "No change entered.",
		"attendance_saved":         "Attendance saved.",
		"attendance_failed":        "Failed to save the attendance",
		"attendance_no_day":        "No training day on that date for this contract.",
		"invoice_generated":        "Invoice generated (draft).",
		"invoice_failed":           "Failed to generate the invoice",
	},
}

// T returns the message for code in lang, falling back to French, then to code.
func T(lang, code string) string {
	if m, ok := messages[normalize(lang)]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[defaultLang][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks "en" or "fr" from an Accept-Language style value or a
// POSIX locale such as en_US.UTF-8. French is the default.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		if _, ok := messages[normalize(tag)]; ok {
			return normalize(tag)
		}
	}
	return defaultLang
}

func normalize(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_."); i >= 0 {
		tag = tag[:i]
	}
	return tag
}
