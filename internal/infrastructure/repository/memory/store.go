// Package memory provides an in-memory implementation of the domain
// repositories. It mirrors the transactional contract of the gorm
// implementation (atomic ReplaceItems/Finalize/AppendAll, insertion-ordered
// ledger) behind a single RWMutex, which is what makes the reconciliation
// engine testable without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/splitroom/splitroom-api/internal/domain/entity"
	"github.com/splitroom/splitroom-api/internal/domain/enum"
	"github.com/splitroom/splitroom-api/internal/domain/repository"
	"github.com/splitroom/splitroom-api/pkg/pagination"
)

// Store holds all data behind one lock. Reads hand out deep copies, so a
// caller can never observe a payment append mid-application.
type Store struct {
	mu       sync.RWMutex
	receipts map[uuid.UUID]*entity.Receipt
	byToken  map[string]uuid.UUID
	order    []uuid.UUID // receipt insertion order, newest listing derives from it
	payments map[uuid.UUID][]entity.Payment
	idem     map[string]entity.IdempotencyKey
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		receipts: make(map[uuid.UUID]*entity.Receipt),
		byToken:  make(map[string]uuid.UUID),
		payments: make(map[uuid.UUID][]entity.Payment),
		idem:     make(map[string]entity.IdempotencyKey),
	}
}

func (s *Store) Create(ctx context.Context, receipt *entity.Receipt, items []entity.ReceiptItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now()
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].ReceiptID = receipt.ID
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = time.Now()
		}
	}
	receipt.Items = items

	stored := cloneReceipt(receipt)
	s.receipts[receipt.ID] = stored
	s.order = append(s.order, receipt.ID)
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.receipts[id]
	if !ok {
		return nil, nil
	}
	c := cloneReceipt(r)
	c.Items = nil
	return c, nil
}

func (s *Store) GetByToken(ctx context.Context, token string) (*entity.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byToken[token]
	if !ok {
		return nil, nil
	}
	return cloneReceipt(s.receipts[id]), nil
}

func (s *Store) GetItems(ctx context.Context, receiptID uuid.UUID) ([]entity.ReceiptItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.receipts[receiptID]
	if !ok {
		return nil, nil
	}
	return cloneItems(r.Items), nil
}

func (s *Store) ReplaceItems(ctx context.Context, receiptID uuid.UUID, items []entity.ReceiptItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.receipts[receiptID]
	if !ok {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].ReceiptID = receiptID
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = time.Now()
		}
		items[i].Units = nil
	}
	r.Items = cloneItems(items)
	return nil
}

func (s *Store) Finalize(ctx context.Context, receipt *entity.Receipt, units []entity.ItemUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.receipts[receipt.ID]
	if !ok || r.Status != enum.ReceiptStatusDraft {
		return errFinalizeConflict
	}
	for i := range units {
		if units[i].ID == uuid.Nil {
			units[i].ID = uuid.New()
		}
	}
	byItem := make(map[uuid.UUID][]entity.ItemUnit)
	for _, u := range units {
		byItem[u.ItemID] = append(byItem[u.ItemID], u)
	}
	for i := range r.Items {
		us := byItem[r.Items[i].ID]
		sort.Slice(us, func(a, b int) bool { return us[a].UnitIndex < us[b].UnitIndex })
		r.Items[i].Units = us
	}
	r.Token = receipt.Token
	r.Status = receipt.Status
	s.byToken[*receipt.Token] = r.ID
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.ReceiptStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.receipts[id]; ok {
		r.Status = status
	}
	return nil
}

func (s *Store) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Receipt, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	params.Validate()
	total := int64(len(s.order))

	// newest first
	var out []entity.Receipt
	start := params.Offset()
	for i := len(s.order) - 1 - start; i >= 0 && len(out) < params.PerPage; i-- {
		c := cloneReceipt(s.receipts[s.order[i]])
		c.Items = nil
		out = append(out, *c)
	}
	return out, total, nil
}

func (s *Store) AppendAll(ctx context.Context, payments []entity.Payment, units []entity.ItemUnit) error {
	if len(payments) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	receiptID := payments[0].ReceiptID
	r, ok := s.receipts[receiptID]
	if !ok {
		return errReceiptGone
	}
	for i := range payments {
		if payments[i].ID == uuid.Nil {
			payments[i].ID = uuid.New()
		}
		if payments[i].CreatedAt.IsZero() {
			payments[i].CreatedAt = time.Now()
		}
	}
	s.payments[receiptID] = append(s.payments[receiptID], payments...)

	for _, u := range units {
		for i := range r.Items {
			for j := range r.Items[i].Units {
				if r.Items[i].Units[j].ID == u.ID {
					r.Items[i].Units[j].AmountPaid = u.AmountPaid
					r.Items[i].Units[j].Status = u.Status
				}
			}
		}
	}
	return nil
}

func (s *Store) ListByReceipt(ctx context.Context, receiptID uuid.UUID) ([]entity.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.payments[receiptID]
	out := make([]entity.Payment, len(src))
	copy(out, src)
	return out, nil
}

func (s *Store) GetIdempotencyKey(ctx context.Context, key, roomToken string) (*entity.IdempotencyKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ik, ok := s.idem[key+"\x00"+roomToken]; ok {
		c := ik
		return &c, nil
	}
	return nil, nil
}

func (s *Store) CreateIdempotencyKey(ctx context.Context, ikey *entity.IdempotencyKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	s.idem[ikey.Key+"\x00"+ikey.RoomToken] = *ikey
	return nil
}

func (s *Store) DeleteExpiredIdempotencyKeys(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ik := range s.idem {
		if ik.IsExpired() {
			delete(s.idem, k)
		}
	}
	return nil
}

// Idempotency adapts the store to the IdempotencyRepository interface; the
// method set clashes with the receipt repository's Create otherwise.
func (s *Store) Idempotency() repository.IdempotencyRepository {
	return idemAdapter{s}
}

type idemAdapter struct{ s *Store }

func (a idemAdapter) GetByKey(ctx context.Context, key, roomToken string) (*entity.IdempotencyKey, error) {
	return a.s.GetIdempotencyKey(ctx, key, roomToken)
}

func (a idemAdapter) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return a.s.CreateIdempotencyKey(ctx, ikey)
}

func (a idemAdapter) DeleteExpired(ctx context.Context) error {
	return a.s.DeleteExpiredIdempotencyKeys(ctx)
}

func cloneReceipt(r *entity.Receipt) *entity.Receipt {
	c := *r
	c.Items = cloneItems(r.Items)
	c.Payments = nil
	if r.Token != nil {
		t := *r.Token
		c.Token = &t
	}
	return &c
}

func cloneItems(items []entity.ReceiptItem) []entity.ReceiptItem {
	out := make([]entity.ReceiptItem, len(items))
	for i, it := range items {
		c := it
		c.Units = make([]entity.ItemUnit, len(it.Units))
		copy(c.Units, it.Units)
		out[i] = c
	}
	return out
}
