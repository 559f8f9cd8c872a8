package services

import (
	"context"
	"strings"

	"tourquote/internal/domain"
	"tourquote/internal/domain/models"
	"tourquote/internal/repositories"
	"tourquote/internal/utils"
)

// MasterDataService resolves foreign keys to display labels. A dangling key
// degrades to "Unknown X"; only infrastructure errors are logged.
type MasterDataService struct {
	Repo      repositories.MasterDataRepository
	RequestID string
}

const (
	UnknownDestination = "Unknown Destination"
	UnknownHotel       = "Unknown Hotel"
	UnknownAgency      = "Unknown Agency"
	UnknownUser        = "Unknown User"
	UnknownSource      = "Unknown Source"
)

func (s MasterDataService) logLookup(action string, err error) {
	if err != nil && !domain.IsNotFound(err) {
		utils.LogEvent(s.RequestID, "masterdata", action, err.Error())
	}
}

func (s MasterDataService) DestinationName(ctx context.Context, id int64) string {
	if id == 0 || s.Repo == nil {
		return UnknownDestination
	}
	d, err := s.Repo.GetDestination(ctx, id)
	if err != nil || strings.TrimSpace(d.Name) == "" {
		s.logLookup("destination", err)
		return UnknownDestination
	}
	return d.Name
}

func (s MasterDataService) HotelName(ctx context.Context, id int64) string {
	if id == 0 || s.Repo == nil {
		return UnknownHotel
	}
	h, err := s.Repo.GetHotel(ctx, id)
	if err != nil || strings.TrimSpace(h.Name) == "" {
		s.logLookup("hotel", err)
		return UnknownHotel
	}
	return h.Name
}

func (s MasterDataService) AgencyName(ctx context.Context, id *int64) string {
	if id == nil || *id == 0 || s.Repo == nil {
		return UnknownAgency
	}
	a, err := s.Repo.GetAgency(ctx, *id)
	if err != nil || strings.TrimSpace(a.Name) == "" {
		s.logLookup("agency", err)
		return UnknownAgency
	}
	return a.Name
}

func (s MasterDataService) UserName(ctx context.Context, id int64) string {
	if id == 0 || s.Repo == nil {
		return UnknownUser
	}
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		s.logLookup("user", err)
		return UnknownUser
	}
	return utils.FirstNonEmpty(u.Name, u.Username, UnknownUser)
}

func (s MasterDataService) SourceName(ctx context.Context, id int64) string {
	if id == 0 || s.Repo == nil {
		return UnknownSource
	}
	src, err := s.Repo.GetSource(ctx, id)
	if err != nil || strings.TrimSpace(src.Name) == "" {
		s.logLookup("source", err)
		return UnknownSource
	}
	return src.Name
}

// Hotel returns the hotel record and whether it resolved.
func (s MasterDataService) Hotel(ctx context.Context, id int64) (models.Hotel, bool) {
	if id == 0 || s.Repo == nil {
		return models.Hotel{}, false
	}
	h, err := s.Repo.GetHotel(ctx, id)
	if err != nil {
		s.logLookup("hotel", err)
		return models.Hotel{}, false
	}
	return h, true
}

// Source returns the source record and whether it resolved.
func (s MasterDataService) Source(ctx context.Context, id int64) (models.Source, bool) {
	if id == 0 || s.Repo == nil {
		return models.Source{}, false
	}
	src, err := s.Repo.GetSource(ctx, id)
	if err != nil {
		s.logLookup("source", err)
		return models.Source{}, false
	}
	return src, true
}
