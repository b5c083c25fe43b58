// Package api defines the wire format shared by the AIBanker server and
// the Go client SDK.
package api

import (
	"github.com/aibanker/go-aibanker/deals"
	"github.com/aibanker/go-aibanker/documents"
	"github.com/aibanker/go-aibanker/users"
)

// ErrorResponse is the body returned for every failed request.
// Example: {"detail": "Deal not found"}
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// TokenResponse is returned from login, register, and refresh.
type TokenResponse struct {
	// AccessToken is the JWT used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Lifespan: short-lived (default 30 minutes)
	AccessToken string `json:"access_token"`

	// RefreshToken is an opaque token exchanged for a new pair when the
	// access token expires. Rotates on every use.
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds. This is a hint;
	// the authoritative expiry is the JWT's "exp" claim.
	ExpiresIn int `json:"expires_in"`

	// User is the profile of the authenticated user. Omitted on refresh.
	User *users.User `json:"user,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
}

// UpdateProfileRequest mutates the caller's own profile. Absent fields
// are left unchanged.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	JobTitle    *string `json:"job_title,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// CreateDealRequest creates a new deal. Name and deal type are required.
type CreateDealRequest struct {
	Name                 string     `json:"name"`
	Description          string     `json:"description,omitempty"`
	DealType             deals.Type `json:"deal_type"`
	TargetCompany        string     `json:"target_company,omitempty"`
	TargetIndustry       string     `json:"target_industry,omitempty"`
	TargetSector         string     `json:"target_sector,omitempty"`
	TargetRevenue        float64    `json:"target_revenue,omitempty"`
	TargetEBITDA         float64    `json:"target_ebitda,omitempty"`
	DealValue            float64    `json:"deal_value,omitempty"`
	DealCurrency         string     `json:"deal_currency,omitempty"`
	TransactionFee       float64    `json:"transaction_fee,omitempty"`
	SuccessFeeRate       float64    `json:"success_fee_rate,omitempty"`
	ExpectedCloseDate    string     `json:"expected_close_date,omitempty"`
	DueDiligenceDeadline string     `json:"due_diligence_deadline,omitempty"`
}

// UpdateDealRequest mutates a deal. Version must be the version the
// caller read; stale versions are rejected with 409.
type UpdateDealRequest struct {
	Name            *string       `json:"name,omitempty"`
	Description     *string       `json:"description,omitempty"`
	DealType        *deals.Type   `json:"deal_type,omitempty"`
	Status          *deals.Status `json:"status,omitempty"`
	TargetCompany   *string       `json:"target_company,omitempty"`
	TargetIndustry  *string       `json:"target_industry,omitempty"`
	TargetSector    *string       `json:"target_sector,omitempty"`
	TargetRevenue   *float64      `json:"target_revenue,omitempty"`
	TargetEBITDA    *float64      `json:"target_ebitda,omitempty"`
	DealValue       *float64      `json:"deal_value,omitempty"`
	DealCurrency    *string       `json:"deal_currency,omitempty"`
	TransactionFee  *float64      `json:"transaction_fee,omitempty"`
	SuccessFeeRate  *float64      `json:"success_fee_rate,omitempty"`
	ActualCloseDate *string       `json:"actual_close_date,omitempty"`
	Version         int64         `json:"version"`
}

// DealStatusResponse is the lightweight processing-status view of a deal.
type DealStatusResponse struct {
	ID                    int64                  `json:"id"`
	Status                deals.Status           `json:"status"`
	AIProcessingStatus    deals.ProcessingStatus `json:"ai_processing_status"`
	DueDiligenceCompleted bool                   `json:"due_diligence_completed"`
	PitchbookGenerated    bool                   `json:"pitchbook_generated"`
	RiskAnalysisCompleted bool                   `json:"risk_analysis_completed"`
	ProcessingSeconds     float64                `json:"processing_seconds,omitempty"`
}

// UploadResponse is returned from the multipart document upload.
type UploadResponse struct {
	Document *documents.Document `json:"document"`
	Message  string              `json:"message,omitempty"`
}

// DashboardStats aggregates platform activity for the dashboard view.
type DashboardStats struct {
	TotalDeals         int                  `json:"total_deals"`
	ActiveDeals        int                  `json:"active_deals"`
	CompletedDeals     int                  `json:"completed_deals"`
	TotalDealValue     float64              `json:"total_deal_value"` // in millions
	DealsByStatus      map[deals.Status]int `json:"deals_by_status"`
	DealsByType        map[deals.Type]int   `json:"deals_by_type"`
	TotalDocuments     int                  `json:"total_documents"`
	ProcessedDocuments int                  `json:"processed_documents"`
	PendingDocuments   int                  `json:"pending_documents"`
}

// PerformanceMetrics summarizes deal outcomes over a trailing window.
// The wire names follow the dashboard's original field set, where the
// window defaulted to a month.
type PerformanceMetrics struct {
	DealsClosedInPeriod  int     `json:"deals_closed_this_month"`
	DealsInPipeline      int     `json:"deals_in_pipeline"`
	AvgDealCycleTimeDays float64 `json:"avg_deal_cycle_time"`
	SuccessRate          float64 `json:"success_rate"`
	RevenueGenerated     float64 `json:"revenue_generated"` // in millions
}

// PipelineEntry is one row of the deal-pipeline breakdown.
type PipelineEntry struct {
	Status     deals.Status `json:"status"`
	Count      int          `json:"count"`
	TotalValue float64      `json:"total_value"` // in millions
}
