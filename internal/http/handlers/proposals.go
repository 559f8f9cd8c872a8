package handlers

import (
	"net/http"
	"strings"

	"tourquote/internal/domain/models"
	"tourquote/internal/http/middleware"
	"tourquote/internal/itinerary"
	"tourquote/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/proposals
func (a *API) ListProposals(c *gin.Context) {
	page := pagination(c)
	f := models.ProposalFilter{
		Status:        models.ProposalStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		SalesPersonID: queryInt64(c, "sales_person_id"),
		Limit:         page.PageSize,
		Offset:        page.Offset(),
	}
	list, err := a.proposalService(c).List(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "page": page.Page, "pageSize": page.PageSize})
}

// POST /api/proposals
func (a *API) CreateProposal(c *gin.Context) {
	var in services.BasicInfoPatch
	if !BindJSONOrError(c, &in) {
		return
	}
	// the caller owns the quote unless another sales person is named
	if in.SalesPersonID == nil {
		if uid := int64(middleware.RequestContextFrom(c).UserID); uid > 0 {
			in.SalesPersonID = &uid
		}
	}
	p, err := a.proposalService(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GET /api/proposals/:id
func (a *API) GetProposal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := a.proposalService(c).View(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PUT /api/proposals/:id
func (a *API) UpdateProposal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in services.BasicInfoPatch
	if !BindJSONOrError(c, &in) {
		return
	}
	p, err := a.proposalService(c).UpdateBasicInfo(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /api/proposals/:id/cancel
func (a *API) CancelProposal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := a.proposalService(c).Cancel(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /api/proposals/:id/copy
func (a *API) CopyProposal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := a.proposalService(c).Copy(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GET /api/proposals/:id/totals
func (a *API) ProposalTotals(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	t, err := a.proposalService(c).Totals(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t.Display())
}

type validateRequest struct {
	Phase string `json:"phase"`
}

// POST /api/proposals/:id/validate
//
// Always 200 when the proposal exists; the report says whether it passed.
func (a *API) ValidateProposal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req validateRequest
	if c.Request.ContentLength > 0 && !BindJSONOrError(c, &req) {
		return
	}
	if req.Phase == "" {
		req.Phase = c.Query("phase")
	}
	report, err := a.proposalService(c).Validate(c.Request.Context(), id, req.Phase)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// POST /api/proposals/:id/lines/:kind
//
// An empty body adds a blank row.
func (a *API) AddLine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}
	var patch itinerary.Patch
	if raw != nil {
		p, err := itinerary.DecodePatch(kind, raw)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		patch = p
	}
	line, err := a.proposalService(c).AddLine(c.Request.Context(), id, kind, patch)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"kind": kind, "line": line})
}

// PATCH /api/proposals/:id/lines/:kind/:lineId
func (a *API) UpdateLine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	lineID, ok := parseLineIDParam(c)
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}
	if raw == nil {
		respondError(c, http.StatusBadRequest, "empty_body", "request body is empty", nil)
		return
	}
	patch, err := itinerary.DecodePatch(kind, raw)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	line, err := a.proposalService(c).UpdateLine(c.Request.Context(), id, kind, lineID, patch)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "line": line})
}

// DELETE /api/proposals/:id/lines/:kind/:lineId
func (a *API) RemoveLine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	lineID, ok := parseLineIDParam(c)
	if !ok {
		return
	}
	p, err := a.proposalService(c).RemoveLine(c.Request.Context(), id, kind, lineID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type confirmRequest struct {
	Selection models.Selection `json:"selection"`
}

// POST /api/proposals/:id/confirm
func (a *API) ConfirmProposal(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req confirmRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := a.confirmationService(c).ConfirmProposal(c.Request.Context(), id, req.Selection)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"proposal": res.Proposal,
		"vouchers": res.Vouchers,
		"count":    len(res.Vouchers),
		"skipped":  res.Skipped,
	})
}
