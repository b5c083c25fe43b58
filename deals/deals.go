package deals

import "time"

// Type categorizes the transaction a deal represents
type Type string

const (
	TypeMNA           Type = "mna" // Mergers & Acquisitions
	TypeIPO           Type = "ipo" // Initial Public Offering
	TypePrivateEquity Type = "private_equity"
	TypeDebtFinancing Type = "debt_financing"
	TypeRestructuring Type = "restructuring"
	TypeOther         Type = "other"
)

// Status tracks a deal through its lifecycle
type Status string

const (
	StatusDraft          Status = "draft"
	StatusInProgress     Status = "in_progress"
	StatusDueDiligence   Status = "due_diligence"
	StatusPitchbookReady Status = "pitchbook_ready"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

// ProcessingStatus tracks the document-analysis pipeline for a deal
type ProcessingStatus string

const (
	ProcessingPending    ProcessingStatus = "pending"
	ProcessingInProgress ProcessingStatus = "processing"
	ProcessingCompleted  ProcessingStatus = "completed"
	ProcessingFailed     ProcessingStatus = "failed"
)

// Deal is an investment banking transaction being managed on the platform.
// Version is an optimistic-concurrency counter: updates must present the
// version they read, and the repo rejects stale writes.
type Deal struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DealType    Type   `json:"deal_type"`
	Status      Status `json:"status"`

	// Target company
	TargetCompany  string  `json:"target_company,omitempty"`
	TargetIndustry string  `json:"target_industry,omitempty"`
	TargetSector   string  `json:"target_sector,omitempty"`
	TargetRevenue  float64 `json:"target_revenue,omitempty"` // in millions
	TargetEBITDA   float64 `json:"target_ebitda,omitempty"`  // in millions

	// Financials
	DealValue      float64 `json:"deal_value,omitempty"` // in millions
	DealCurrency   string  `json:"deal_currency,omitempty"`
	TransactionFee float64 `json:"transaction_fee,omitempty"`  // in millions
	SuccessFeeRate float64 `json:"success_fee_rate,omitempty"` // percentage

	// Timeline
	ExpectedCloseDate    time.Time `json:"expected_close_date,omitempty"`
	ActualCloseDate      time.Time `json:"actual_close_date,omitempty"`
	DueDiligenceDeadline time.Time `json:"due_diligence_deadline,omitempty"`

	CreatedBy int64 `json:"created_by,omitempty"`

	// Processing flags
	DueDiligenceCompleted bool `json:"due_diligence_completed"`
	PitchbookGenerated    bool `json:"pitchbook_generated"`
	RiskAnalysisCompleted bool `json:"risk_analysis_completed"`

	// Document-analysis pipeline state
	AIProcessingStatus    ProcessingStatus `json:"ai_processing_status,omitempty"`
	AIProcessingStarted   time.Time        `json:"ai_processing_started,omitempty"`
	AIProcessingCompleted time.Time        `json:"ai_processing_completed,omitempty"`
	AIProcessingErrors    string           `json:"ai_processing_errors,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// IsActive reports whether the deal is still being worked
func (d *Deal) IsActive() bool {
	return d.Status != StatusCompleted && d.Status != StatusCancelled
}

// ProcessingTime returns the duration of the last analysis run, or zero
// if a run has not completed.
func (d *Deal) ProcessingTime() time.Duration {
	if d.AIProcessingStarted.IsZero() || d.AIProcessingCompleted.IsZero() {
		return 0
	}
	return d.AIProcessingCompleted.Sub(d.AIProcessingStarted)
}

// ValidType reports whether t is a known deal type
func ValidType(t Type) bool {
	switch t {
	case TypeMNA, TypeIPO, TypePrivateEquity, TypeDebtFinancing, TypeRestructuring, TypeOther:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known deal status
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusDueDiligence, StatusPitchbookReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
