package usecase_test

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
)

// ---- function-field fakes ----

type fakeAccountRepo struct {
	create      func(ctx context.Context, acc domain.NewAccount) (*domain.Account, error)
	findByEmail func(ctx context.Context, email string) (*domain.Account, error)
	verify      func(ctx context.Context, tokenHash string, now time.Time) (*domain.Account, error)
}

func (r *fakeAccountRepo) Create(ctx context.Context, acc domain.NewAccount) (*domain.Account, error) {
	return r.create(ctx, acc)
}

func (r *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeAccountRepo) Verify(ctx context.Context, tokenHash string, now time.Time) (*domain.Account, error) {
	return r.verify(ctx, tokenHash, now)
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

func okSender() *fakeEmailSender {
	return &fakeEmailSender{send: func(context.Context, string, string, string) error { return nil }}
}

// ---- in-memory credential store ----

type memRow struct {
	acc           domain.Account
	tokenHash     *string
	verifyExpires *time.Time
}

// memAccounts mirrors the postgres repository's contract: emails are
// normalized on every call and Verify is a single critical section.
type memAccounts struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*memRow // keyed by normalized email
}

func newMemAccounts() *memAccounts {
	return &memAccounts{rows: make(map[string]*memRow)}
}

func (m *memAccounts) Create(_ context.Context, in domain.NewAccount) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := domain.NormalizeEmail(in.Email)
	if _, ok := m.rows[key]; ok {
		return nil, domain.ErrEmailTaken
	}
	m.seq++
	th, exp := in.VerifyTokenHash, in.VerifyExpires
	row := &memRow{
		acc: domain.Account{
			ID:           "acc-" + strconv.Itoa(m.seq),
			DisplayName:  in.DisplayName,
			Email:        key,
			PasswordHash: in.PasswordHash,
		},
		tokenHash:     &th,
		verifyExpires: &exp,
	}
	m.rows[key] = row
	acc := row.acc
	return &acc, nil
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	acc := row.acc
	return &acc, nil
}

func (m *memAccounts) Verify(_ context.Context, tokenHash string, now time.Time) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.acc.Verified || row.tokenHash == nil || *row.tokenHash != tokenHash {
			continue
		}
		if !row.verifyExpires.After(now) {
			continue
		}
		row.acc.Verified = true
		row.tokenHash = nil
		row.verifyExpires = nil
		acc := row.acc
		return &acc, nil
	}
	return nil, domain.ErrTokenInvalid
}

func (m *memAccounts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memAccounts) row(email string) memRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[domain.NormalizeEmail(email)]
}

// ---- clock ----

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
