package documents

import "time"

// Type categorizes an uploaded document
type Type string

const (
	TypeFinancialStatement Type = "financial_statement"
	TypeLegalDocument      Type = "legal_document"
	TypeContract           Type = "contract"
	TypePresentation       Type = "presentation"
	TypeMarketResearch     Type = "market_research"
	TypeDueDiligence       Type = "due_diligence"
	TypePitchbook          Type = "pitchbook"
	TypeOther              Type = "other"
)

// Status tracks a document through the processing pipeline
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// Document is a file uploaded against a deal. Version follows the same
// optimistic-concurrency scheme as deals.Deal.
type Document struct {
	ID           int64  `json:"id,omitempty"`
	DealID       int64  `json:"deal_id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name,omitempty"`
	StoragePath  string `json:"-"` // server-side location, never exposed
	ContentType  string `json:"content_type,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
	DocumentType Type   `json:"document_type"`
	Status       Status `json:"status"`

	UploadedBy      int64     `json:"uploaded_by,omitempty"`
	ProcessingError string    `json:"processing_error,omitempty"`
	ProcessedAt     time.Time `json:"processed_at,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ValidType reports whether t is a known document type
func ValidType(t Type) bool {
	switch t {
	case TypeFinancialStatement, TypeLegalDocument, TypeContract, TypePresentation,
		TypeMarketResearch, TypeDueDiligence, TypePitchbook, TypeOther:
		return true
	}
	return false
}
