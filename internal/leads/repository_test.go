package leads

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestNewQuoteNumber_Format(t *testing.T) {
	now := time.Date(2026, time.March, 7, 15, 4, 5, 0, time.UTC)
	got := NewQuoteNumber(now, func(int) int { return 7 })
	if got != "Q20260307-007" {
		t.Fatalf("unexpected quote number %q", got)
	}

	pattern := regexp.MustCompile(`^Q\d{8}-\d{3}$`)
	for i := 0; i < 50; i++ {
		if n := NewQuoteNumber(now, nil); !pattern.MatchString(n) || !strings.HasPrefix(n, "Q20260307-") {
			t.Fatalf("quote number %q does not match format", n)
		}
	}
}

func TestContactRecord_DropsVerificationToken(t *testing.T) {
	sub := ContactSubmission{Name: "Jane Doe", Email: "jane@example.com", Phone: "6095551234", VerificationToken: "secret-token"}
	rec, err := NewContactRecord(sub, "req-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(rec.Payload), "secret-token") {
		t.Fatalf("payload leaked verification token: %s", rec.Payload)
	}
	if rec.Kind != KindContact || rec.Reference != "req-1" {
		t.Fatalf("unexpected record metadata: %+v", rec)
	}
}

func TestInMemoryArchive_SaveAndGet(t *testing.T) {
	archive := NewInMemoryArchive()
	ctx := context.Background()

	rec, err := NewQuoteRecord(QuoteSubmission{FirstName: "John", LastName: "Smith", Email: "john@example.com"}, "Q20260307-007", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := archive.Save(ctx, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := archive.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Name != "John Smith" {
		t.Errorf("expected name John Smith, got %s", found.Name)
	}

	var payload QuoteSubmission
	if err := json.Unmarshal(found.Payload, &payload); err != nil {
		t.Fatalf("payload is not a quote: %v", err)
	}
	if len(archive.List()) != 1 {
		t.Fatalf("expected one record")
	}
}

func TestInMemoryArchive_GetByID_NotFound(t *testing.T) {
	archive := NewInMemoryArchive()
	if _, err := archive.GetByID(context.Background(), "nonexistent"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestPostgresArchive_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	rec, err := NewContactRecord(ContactSubmission{Name: "Jane Doe", Email: "jane@example.com", Phone: "6095551234"}, "req-9", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO lead_submissions").
		WithArgs(rec.ID, "contact", "req-9", "Jane Doe", "jane@example.com", "6095551234", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := NewPostgresArchive(mock).Save(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresArchive_SaveWrapsError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("INSERT INTO lead_submissions").WillReturnError(errors.New("connection reset"))

	err = NewPostgresArchive(mock).Save(context.Background(), Record{ID: "x", Kind: KindQuote})
	if err == nil || !strings.Contains(err.Error(), "leads: insert failed") {
		t.Fatalf("expected wrapped insert error, got %v", err)
	}
}

type failingArchive struct{ err error }

func (f failingArchive) Save(context.Context, Record) error { return f.err }

func TestMultiArchive_SavesToEveryArchive(t *testing.T) {
	first := NewInMemoryArchive()
	second := NewInMemoryArchive()
	boom := errors.New("bucket unavailable")

	err := MultiArchive{first, failingArchive{err: boom}, nil, second}.Save(context.Background(), Record{ID: "rec-1", Kind: KindContact})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(first.List()) != 1 || len(second.List()) != 1 {
		t.Fatalf("expected both in-memory archives to hold the record")
	}
}
