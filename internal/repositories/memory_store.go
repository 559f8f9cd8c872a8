package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tourquote/internal/domain"
	"tourquote/internal/domain/models"
)

// MemoryStore implements every repository interface in process. It backs
// STORAGE=memory and the service tests. Values are cloned on the way in and
// out so callers never share slices with the store.
type MemoryStore struct {
	mu sync.RWMutex

	proposals      map[int64]models.Proposal
	nextProposalID int64
	vouchers       map[string]models.Voucher
	voucherOrder   []string

	destinations map[int64]models.Destination
	hotels       map[int64]models.Hotel
	agencies     map[int64]models.Agency
	users        map[int64]models.User
	sources      map[int64]models.Source

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		proposals:    map[int64]models.Proposal{},
		vouchers:     map[string]models.Voucher{},
		destinations: map[int64]models.Destination{},
		hotels:       map[int64]models.Hotel{},
		agencies:     map[int64]models.Agency{},
		users:        map[int64]models.User{},
		sources:      map[int64]models.Source{},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

var (
	_ ProposalRepository   = (*MemoryStore)(nil)
	_ VoucherRepository    = (*MemoryStore)(nil)
	_ MasterDataRepository = (*MemoryStore)(nil)
)

// ===== proposals =====

func (s *MemoryStore) GetProposal(_ context.Context, id int64) (models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.proposals[id]
	if !ok {
		return models.Proposal{}, domain.NotFoundError{Resource: "proposal"}
	}
	return p.Clone(), nil
}

func (s *MemoryStore) ListProposals(_ context.Context, f models.ProposalFilter) ([]models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.proposals))
	for id := range s.proposals {
		ids = append(ids, id)
	}
	// newest first, same as the SQL listing
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	var out []models.Proposal
	skipped := 0
	for _, id := range ids {
		p := s.proposals[id]
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.SalesPersonID != 0 && p.SalesPersonID != f.SalesPersonID {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, p.Clone())
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateProposal(_ context.Context, p *models.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.proposals {
		if p.Reference != "" && existing.Reference == p.Reference {
			return domain.ConflictError{Resource: "proposal", Msg: "reference already exists"}
		}
	}
	s.nextProposalID++
	now := s.now()
	p.ID = s.nextProposalID
	p.Version = 1
	p.CreatedAt = now
	p.UpdatedAt = now
	s.proposals[p.ID] = p.Clone()
	return nil
}

func (s *MemoryStore) SaveProposal(_ context.Context, p *models.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkVersionLocked(p); err != nil {
		return err
	}
	p.Version++
	p.UpdatedAt = s.now()
	s.proposals[p.ID] = p.Clone()
	return nil
}

func (s *MemoryStore) ConfirmProposal(_ context.Context, p *models.Proposal, vouchers []models.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkVersionLocked(p); err != nil {
		return err
	}
	if stored := s.proposals[p.ID]; stored.Status != models.ProposalNew {
		return domain.ConflictError{Resource: "proposal", Msg: "proposal is " + string(stored.Status)}
	}
	seen := map[string]bool{}
	for _, v := range s.vouchers {
		seen[voucherKey(v)] = true
	}
	for _, v := range vouchers {
		if seen[voucherKey(v)] {
			return domain.ConflictError{Resource: "voucher", Msg: "voucher already exists for " + voucherKey(v)}
		}
		if _, dup := s.vouchers[v.ID]; dup {
			return domain.ConflictError{Resource: "voucher", Msg: "duplicate voucher id"}
		}
		seen[voucherKey(v)] = true
	}

	p.Version++
	p.UpdatedAt = s.now()
	s.proposals[p.ID] = p.Clone()
	for _, v := range vouchers {
		s.vouchers[v.ID] = v.Clone()
		s.voucherOrder = append(s.voucherOrder, v.ID)
	}
	return nil
}

func (s *MemoryStore) checkVersionLocked(p *models.Proposal) error {
	stored, ok := s.proposals[p.ID]
	if !ok {
		return domain.NotFoundError{Resource: "proposal"}
	}
	if stored.Version != p.Version {
		return domain.ConflictError{Resource: "proposal", Msg: "proposal was modified concurrently"}
	}
	return nil
}

func voucherKey(v models.Voucher) string {
	return fmt.Sprintf("%d/%s/%d", v.ProposalID, v.ServiceType, v.ServiceID)
}

// ===== vouchers =====

func (s *MemoryStore) GetVoucher(_ context.Context, id string) (models.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vouchers[id]
	if !ok {
		return models.Voucher{}, domain.NotFoundError{Resource: "voucher"}
	}
	return v.Clone(), nil
}

func (s *MemoryStore) ListVouchers(_ context.Context, f models.VoucherFilter) ([]models.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Voucher
	for _, id := range s.voucherOrder {
		v := s.vouchers[id]
		if f.ProposalID != 0 && v.ProposalID != f.ProposalID {
			continue
		}
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		out = append(out, v.Clone())
	}
	return out, nil
}

func (s *MemoryStore) SaveVoucher(_ context.Context, v *models.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vouchers[v.ID]; !ok {
		return domain.NotFoundError{Resource: "voucher"}
	}
	v.UpdatedAt = s.now()
	s.vouchers[v.ID] = v.Clone()
	return nil
}

// ===== master data =====

func (s *MemoryStore) PutDestination(d models.Destination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destinations[d.ID] = d
}

func (s *MemoryStore) PutHotel(h models.Hotel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.RoomTypes = append([]string(nil), h.RoomTypes...)
	h.BoardTypes = append([]string(nil), h.BoardTypes...)
	h.Currencies = append([]string(nil), h.Currencies...)
	s.hotels[h.ID] = h
}

func (s *MemoryStore) PutAgency(a models.Agency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agencies[a.ID] = a
}

func (s *MemoryStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemoryStore) PutSource(src models.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.ID] = src
}

func (s *MemoryStore) GetDestination(_ context.Context, id int64) (models.Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.destinations[id]
	if !ok {
		return models.Destination{}, domain.NotFoundError{Resource: "destination"}
	}
	return d, nil
}

func (s *MemoryStore) GetHotel(_ context.Context, id int64) (models.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return models.Hotel{}, domain.NotFoundError{Resource: "hotel"}
	}
	h.RoomTypes = append([]string(nil), h.RoomTypes...)
	h.BoardTypes = append([]string(nil), h.BoardTypes...)
	h.Currencies = append([]string(nil), h.Currencies...)
	return h, nil
}

func (s *MemoryStore) GetAgency(_ context.Context, id int64) (models.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agencies[id]
	if !ok {
		return models.Agency{}, domain.NotFoundError{Resource: "agency"}
	}
	return a, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (s *MemoryStore) GetSource(_ context.Context, id int64) (models.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[id]
	if !ok {
		return models.Source{}, domain.NotFoundError{Resource: "source"}
	}
	return src, nil
}

func (s *MemoryStore) FindUserByLogin(_ context.Context, login string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	login = strings.ToLower(strings.TrimSpace(login))
	for _, u := range s.users {
		if strings.ToLower(u.Username) == login || strings.ToLower(u.Email) == login {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "user"}
}
