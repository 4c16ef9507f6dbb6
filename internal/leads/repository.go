package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which form produced a record.
type Kind string

const (
	KindContact Kind = "contact"
	KindQuote   Kind = "quote"
)

// Record is the archived copy of one accepted submission.
type Record struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Reference string          `json:"reference"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewContactRecord archives the redacted contact submission.
func NewContactRecord(sub ContactSubmission, reference string, at time.Time) (Record, error) {
	payload, err := json.Marshal(sub.Redacted())
	if err != nil {
		return Record{}, fmt.Errorf("leads: marshal contact payload: %w", err)
	}
	return Record{
		ID:        uuid.NewString(),
		Kind:      KindContact,
		Reference: reference,
		Name:      sub.Name,
		Email:     sub.Email,
		Phone:     sub.Phone,
		Payload:   payload,
		CreatedAt: at.UTC(),
	}, nil
}

// NewQuoteRecord archives a quote request under its quote number.
func NewQuoteRecord(sub QuoteSubmission, quoteNumber string, at time.Time) (Record, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return Record{}, fmt.Errorf("leads: marshal quote payload: %w", err)
	}
	return Record{
		ID:        uuid.NewString(),
		Kind:      KindQuote,
		Reference: quoteNumber,
		Name:      sub.FullName(),
		Email:     sub.Email,
		Phone:     sub.Phone,
		Payload:   payload,
		CreatedAt: at.UTC(),
	}, nil
}

// Archive keeps a copy of accepted submissions for follow-up.
type Archive interface {
	Save(ctx context.Context, rec Record) error
}

// InMemoryArchive is an Archive for local runs and tests
type InMemoryArchive struct {
	mu      sync.RWMutex
	records map[string]Record
	order   []string
}

// NewInMemoryArchive creates an empty in-memory archive
func NewInMemoryArchive() *InMemoryArchive {
	return &InMemoryArchive{
		records: make(map[string]Record),
	}
}

// Save stores the record
func (a *InMemoryArchive) Save(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	a.mu.Lock()
	if _, exists := a.records[rec.ID]; !exists {
		a.order = append(a.order, rec.ID)
	}
	a.records[rec.ID] = rec
	a.mu.Unlock()

	return nil
}

// GetByID retrieves a record by ID
func (a *InMemoryArchive) GetByID(ctx context.Context, id string) (Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rec, ok := a.records[id]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

// List returns records in insertion order.
func (a *InMemoryArchive) List() []Record {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Record, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.records[id])
	}
	return out
}

// MultiArchive saves each record to every archive in order. A failing
// archive does not stop the others; their errors are joined.
type MultiArchive []Archive

// Save implements Archive.
func (m MultiArchive) Save(ctx context.Context, rec Record) error {
	var errs []error
	for _, a := range m {
		if a == nil {
			continue
		}
		if err := a.Save(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Archive = (*InMemoryArchive)(nil)
	_ Archive = MultiArchive(nil)
)
