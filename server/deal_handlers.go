package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aibanker/go-aibanker/api"
	"github.com/aibanker/go-aibanker/deals"
	ierrors "github.com/aibanker/go-aibanker/internal/errors"
	"github.com/aibanker/go-aibanker/internal/utils"
	"github.com/aibanker/go-aibanker/users"
)

// pathID extracts the {id} path segment as an int64.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// listParams reads the offset and limit query parameters, zero when absent.
func listParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	return offset, limit
}

func isAdmin(r *http.Request) bool {
	return roleFromContext(r.Context()) == string(users.RoleAdmin)
}

// parseDate accepts both date-only and full timestamp forms.
func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// loadDealAuthorized fetches the deal and enforces ownership: admins see
// every deal, everyone else only their own.
func (s *Server) loadDealAuthorized(r *http.Request) (*deals.Deal, error) {
	id, ok := pathID(r)
	if !ok {
		return nil, ierrors.ErrNotFound
	}

	deal, err := s.repos.Deals.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if !isAdmin(r) && deal.CreatedBy != userIDFromContext(r.Context()) {
		return nil, ierrors.ErrAccessDenied
	}
	return deal, nil
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	offset, limit := listParams(r)

	var (
		dealList []*deals.Deal
		err      error
	)
	if isAdmin(r) {
		dealList, err = s.repos.Deals.List(r.Context(), offset, limit)
	} else {
		dealList, err = s.repos.Deals.ListByCreator(r.Context(), userIDFromContext(r.Context()), offset, limit)
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dealList)
}

func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var req api.CreateDealRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "deal name is required")
		return
	}
	if !deals.ValidType(req.DealType) {
		writeError(w, http.StatusBadRequest, "invalid deal type")
		return
	}

	expectedClose, ok := parseDate(req.ExpectedCloseDate)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid expected_close_date")
		return
	}
	ddDeadline, ok := parseDate(req.DueDiligenceDeadline)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid due_diligence_deadline")
		return
	}

	deal := &deals.Deal{
		Name:                 req.Name,
		Description:          req.Description,
		DealType:             req.DealType,
		Status:               deals.StatusDraft,
		TargetCompany:        req.TargetCompany,
		TargetIndustry:       req.TargetIndustry,
		TargetSector:         req.TargetSector,
		TargetRevenue:        req.TargetRevenue,
		TargetEBITDA:         req.TargetEBITDA,
		DealValue:            req.DealValue,
		DealCurrency:         req.DealCurrency,
		TransactionFee:       req.TransactionFee,
		SuccessFeeRate:       req.SuccessFeeRate,
		ExpectedCloseDate:    expectedClose,
		DueDiligenceDeadline: ddDeadline,
		CreatedBy:            userIDFromContext(r.Context()),
		AIProcessingStatus:   deals.ProcessingPending,
	}

	if err := s.repos.Deals.Create(r.Context(), deal); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deal)
}

func (s *Server) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := s.loadDealAuthorized(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

func (s *Server) handleUpdateDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := s.loadDealAuthorized(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var req api.UpdateDealRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DealType != nil && !deals.ValidType(*req.DealType) {
		writeError(w, http.StatusBadRequest, "invalid deal type")
		return
	}
	if req.Status != nil && !deals.ValidStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "invalid deal status")
		return
	}
	if req.ActualCloseDate != nil {
		closed, ok := parseDate(*req.ActualCloseDate)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid actual_close_date")
			return
		}
		deal.ActualCloseDate = closed
	}

	applyDealUpdate(deal, req)

	// The caller's version, not the stored one: the repo rejects the
	// write when the deal changed since the caller read it.
	deal.Version = req.Version

	if err := s.repos.Deals.Update(r.Context(), deal); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

func applyDealUpdate(deal *deals.Deal, req api.UpdateDealRequest) {
	deal.Name = utils.ValueOr(req.Name, deal.Name)
	deal.Description = utils.ValueOr(req.Description, deal.Description)
	deal.DealType = utils.ValueOr(req.DealType, deal.DealType)
	deal.Status = utils.ValueOr(req.Status, deal.Status)
	deal.TargetCompany = utils.ValueOr(req.TargetCompany, deal.TargetCompany)
	deal.TargetIndustry = utils.ValueOr(req.TargetIndustry, deal.TargetIndustry)
	deal.TargetSector = utils.ValueOr(req.TargetSector, deal.TargetSector)
	deal.TargetRevenue = utils.ValueOr(req.TargetRevenue, deal.TargetRevenue)
	deal.TargetEBITDA = utils.ValueOr(req.TargetEBITDA, deal.TargetEBITDA)
	deal.DealValue = utils.ValueOr(req.DealValue, deal.DealValue)
	deal.DealCurrency = utils.ValueOr(req.DealCurrency, deal.DealCurrency)
	deal.TransactionFee = utils.ValueOr(req.TransactionFee, deal.TransactionFee)
	deal.SuccessFeeRate = utils.ValueOr(req.SuccessFeeRate, deal.SuccessFeeRate)
}

func (s *Server) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := s.loadDealAuthorized(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := s.repos.Deals.Delete(r.Context(), deal.ID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleStartDealProcessing(w http.ResponseWriter, r *http.Request) {
	deal, err := s.loadDealAuthorized(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := s.repos.Deals.SetProcessing(r.Context(), deal.ID, deals.ProcessingInProgress); err != nil {
		s.writeServiceError(w, err)
		return
	}

	deal, err = s.repos.Deals.GetByID(r.Context(), deal.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, dealStatusResponse(deal))
}

func (s *Server) handleDealStatus(w http.ResponseWriter, r *http.Request) {
	deal, err := s.loadDealAuthorized(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dealStatusResponse(deal))
}

func dealStatusResponse(deal *deals.Deal) api.DealStatusResponse {
	return api.DealStatusResponse{
		ID:                    deal.ID,
		Status:                deal.Status,
		AIProcessingStatus:    deal.AIProcessingStatus,
		DueDiligenceCompleted: deal.DueDiligenceCompleted,
		PitchbookGenerated:    deal.PitchbookGenerated,
		RiskAnalysisCompleted: deal.RiskAnalysisCompleted,
		ProcessingSeconds:     deal.ProcessingTime().Seconds(),
	}
}
