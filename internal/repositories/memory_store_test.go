package repositories

import (
	"context"
	"testing"

	"tourquote/internal/domain"
	"tourquote/internal/domain/models"
)

func TestMemoryStore_ListNewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < 4; i++ {
		status := models.ProposalNew
		if i == 1 {
			status = models.ProposalCancelled
		}
		if err := s.CreateProposal(ctx, &models.Proposal{Status: status}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, _ := s.ListProposals(ctx, models.ProposalFilter{Status: models.ProposalNew, Limit: 2, Offset: 1})
	if len(list) != 2 || list[0].ID != 3 || list[1].ID != 1 {
		t.Fatalf("unexpected page %+v", list)
	}
}

func TestMemoryStore_ClonesOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := &models.Proposal{Status: models.ProposalNew, DestinationIDs: []int64{1}}
	p.Hotels = []models.HotelLine{{ID: 1, RoomType: "DBL"}}
	if err := s.CreateProposal(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	p.Hotels[0].RoomType = "SGL"
	p.DestinationIDs[0] = 9

	got, _ := s.GetProposal(ctx, p.ID)
	if got.Hotels[0].RoomType != "DBL" || got.DestinationIDs[0] != 1 {
		t.Fatalf("store shares memory with caller: %+v", got)
	}
	got.Hotels[0].RoomType = "TRP"
	again, _ := s.GetProposal(ctx, p.ID)
	if again.Hotels[0].RoomType != "DBL" {
		t.Fatalf("read copy leaked into the store")
	}
}

func TestMemoryStore_ConfirmIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := &models.Proposal{Status: models.ProposalNew}
	_ = s.CreateProposal(ctx, p)

	confirmed := *p
	confirmed.Status = models.ProposalConfirmed
	dup := []models.Voucher{
		{ID: "a", ProposalID: p.ID, ServiceType: models.KindHotel, ServiceID: 1},
		{ID: "b", ProposalID: p.ID, ServiceType: models.KindHotel, ServiceID: 1},
	}
	if err := s.ConfirmProposal(ctx, &confirmed, dup); !domain.IsConflict(err) {
		t.Fatalf("expected conflict for duplicate line, got %v", err)
	}
	stored, _ := s.GetProposal(ctx, p.ID)
	if stored.Status != models.ProposalNew {
		t.Fatalf("failed confirm changed the proposal")
	}
	if list, _ := s.ListVouchers(ctx, models.VoucherFilter{}); len(list) != 0 {
		t.Fatalf("failed confirm wrote %d vouchers", len(list))
	}

	stale := *p
	stale.Version = 0
	if err := s.SaveProposal(ctx, &stale); !domain.IsConflict(err) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}
