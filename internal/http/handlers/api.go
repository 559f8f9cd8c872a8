package handlers

import (
	"context"
	"time"

	intconfig "tourquote/internal/config"
	"tourquote/internal/http/middleware"
	"tourquote/internal/repositories"
	"tourquote/internal/services"

	"github.com/gin-gonic/gin"
)

// API holds the storage the handlers build their per-request services from.
type API struct {
	Proposals  repositories.ProposalRepository
	Vouchers   repositories.VoucherRepository
	MasterData repositories.MasterDataRepository
	Env        intconfig.Env
	// Ping checks the backing database; nil means in-memory storage.
	Ping func(ctx context.Context) error
	Now  func() time.Time
}

func (a *API) proposalService(c *gin.Context) services.ProposalService {
	return services.ProposalService{
		Proposals:       a.Proposals,
		MasterData:      a.MasterData,
		DefaultCurrency: a.Env.DefaultCurrency,
		RequestID:       middleware.GetRequestID(c),
		Now:             a.Now,
	}
}

func (a *API) confirmationService(c *gin.Context) services.ConfirmationService {
	return services.ConfirmationService{
		Proposals: a.Proposals,
		RequestID: middleware.GetRequestID(c),
		Now:       a.Now,
	}
}

func (a *API) voucherService(c *gin.Context) services.VoucherService {
	return services.VoucherService{
		Vouchers:  a.Vouchers,
		RequestID: middleware.GetRequestID(c),
	}
}

func (a *API) authService(c *gin.Context) services.AuthService {
	return services.AuthService{
		Users:     a.MasterData,
		Secret:    []byte(a.Env.JWTSecret),
		TTL:       a.Env.JWTTTL,
		RequestID: middleware.GetRequestID(c),
		Now:       a.Now,
	}
}
