package constants

// DossierStatus is the canonical status for processed dossiers.
type DossierStatus string

// Stable values (store these exact strings in DB).
const (
	DossierQueued    DossierStatus = "QUEUED"    // waiting in the inbox
	DossierRunning   DossierStatus = "RUNNING"   // extraction in progress
	DossierExtracted DossierStatus = "EXTRACTED" // all documents extracted
	DossierAssessed  DossierStatus = "ASSESSED"  // risk assessment stored
	DossierFailed    DossierStatus = "FAILED"    // terminal failure
)
