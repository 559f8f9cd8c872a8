package handlers

import (
	"net/http"
	"strings"

	"tourquote/internal/domain/models"
	"tourquote/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/vouchers
func (a *API) ListVouchers(c *gin.Context) {
	f := models.VoucherFilter{
		ProposalID: queryInt64(c, "proposal_id"),
		Status:     models.VoucherStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
	}
	a.respondVoucherList(c, f)
}

// GET /api/proposals/:id/vouchers
func (a *API) ListProposalVouchers(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := a.proposalService(c).Get(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	a.respondVoucherList(c, models.VoucherFilter{ProposalID: id})
}

func (a *API) respondVoucherList(c *gin.Context, f models.VoucherFilter) {
	list, err := a.voucherService(c).List(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// GET /api/vouchers/:id
func (a *API) GetVoucher(c *gin.Context) {
	v, err := a.voucherService(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type voucherStatusRequest struct {
	Status models.VoucherStatus `json:"status"`
}

// PUT /api/vouchers/:id/status
func (a *API) UpdateVoucherStatus(c *gin.Context) {
	var req voucherStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := a.voucherService(c).Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// PUT /api/vouchers/:id/travellers
func (a *API) UpdateVoucherTravellers(c *gin.Context) {
	var req services.TravellerUpdate
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := a.voucherService(c).UpdateTravellers(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
