package constants

import (
	"strings"
)

type DocumentType string

const (
	Passport      DocumentType = "passport"
	FlightTicket  DocumentType = "flight_ticket"
	Hotel         DocumentType = "hotel_reservation"
	Vaccination   DocumentType = "vaccination"
	PaymentProof  DocumentType = "payment_proof"
	Invitation    DocumentType = "invitation"
	VerbalNote    DocumentType = "verbal_note"
	ResidenceCard DocumentType = "residence_card"
	Unknown       DocumentType = "unknown"
)

var allDocumentTypes = []DocumentType{
	Passport,
	FlightTicket,
	Hotel,
	Vaccination,
	PaymentProof,
	Invitation,
	VerbalNote,
	ResidenceCard,
}

func DocumentTypesAsStrings() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

func CanonicalizeDocumentType(input string) (DocumentType, bool) {
	if input == "" {
		return Unknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	// synonyms map
	synonyms := map[string]DocumentType{
		"passeport":          Passport,
		"travel_document":    Passport,
		"ticket":             FlightTicket,
		"flight":             FlightTicket,
		"billet_avion":       FlightTicket,
		"plane_ticket":       FlightTicket,
		"hotel":              Hotel,
		"reservation":        Hotel,
		"accommodation":      Hotel,
		"hebergement":        Hotel,
		"vaccination_card":   Vaccination,
		"yellow_fever":       Vaccination,
		"carnet_vaccination": Vaccination,
		"payment":            PaymentProof,
		"preuve_paiement":    PaymentProof,
		"receipt":            PaymentProof,
		"invitation_letter":  Invitation,
		"lettre_invitation":  Invitation,
		"note_verbale":       VerbalNote,
		"diplomatic_note":    VerbalNote,
		"note_diplomatique":  VerbalNote,
		"carte_sejour":       ResidenceCard,
		"carte_resident":     ResidenceCard,
		"residence_permit":   ResidenceCard,
		"resident_card":      ResidenceCard,
	}

	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocumentTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}

	return Unknown, false
}
