package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kr1shnam00rth1/Bank-API/internal/core/domain"
)

// In-memory doubles for the storage contracts. The ledger fake applies each
// check-and-mutate under one lock, matching the serialization the real
// repository gets from row locks.

type fakeStore struct {
	mu       sync.Mutex
	accounts []*domain.Account
	records  []domain.Transaction
	nextAcct int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextAcct: 1000001}
}

func (s *fakeStore) Create(_ context.Context, email, passwordHash, fullName, phoneNumber string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}
	acc := &domain.Account{
		ID:            uuid.New(),
		AccountNumber: s.nextAcct,
		Email:         email,
		FullName:      fullName,
		PhoneNumber:   phoneNumber,
		PasswordHash:  passwordHash,
		Status:        domain.StatusPending,
		CreatedAt:     time.Now(),
	}
	s.nextAcct++
	s.accounts = append(s.accounts, acc)
	return acc, nil
}

func (s *fakeStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) GetByAccountNumber(_ context.Context, accountNumber int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.AccountNumber == accountNumber {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) UpdateProfile(_ context.Context, id uuid.UUID, fullName, phoneNumber *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			if fullName != nil {
				a.FullName = *fullName
			}
			if phoneNumber != nil {
				a.PhoneNumber = *phoneNumber
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *fakeStore) SetPasswordByEmail(_ context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			a.PasswordHash = passwordHash
			return nil
		}
	}
	return domain.ErrNotFound
}

// ledger side of the fake

func (s *fakeStore) lookup(accountNumber int64) *domain.Account {
	for _, a := range s.accounts {
		if a.AccountNumber == accountNumber {
			return a
		}
	}
	return nil
}

func (s *fakeStore) Deposit(_ context.Context, accountNumber int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.lookup(accountNumber)
	if acc == nil {
		return domain.ErrNotFound
	}
	if acc.Status == domain.StatusBlocked {
		return domain.ErrAccountLocked
	}
	acc.Balance += amount
	s.records = append(s.records, domain.Transaction{
		ID: uuid.New(), AccountNumber: accountNumber, Amount: amount, Kind: domain.TxDeposit, CreatedAt: time.Now(),
	})
	return nil
}

func (s *fakeStore) Withdraw(_ context.Context, accountNumber int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.lookup(accountNumber)
	if acc == nil {
		return domain.ErrNotFound
	}
	if acc.Status == domain.StatusBlocked {
		return domain.ErrAccountLocked
	}
	if acc.Balance < amount {
		return domain.ErrInsufficientBalance
	}
	acc.Balance -= amount
	s.records = append(s.records, domain.Transaction{
		ID: uuid.New(), AccountNumber: accountNumber, Amount: amount, Kind: domain.TxWithdrawal, CreatedAt: time.Now(),
	})
	return nil
}

func (s *fakeStore) Transfer(_ context.Context, senderID uuid.UUID, receiverAccount int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sender *domain.Account
	for _, a := range s.accounts {
		if a.ID == senderID {
			sender = a
			break
		}
	}
	if sender == nil {
		return domain.ErrNotFound
	}
	if sender.AccountNumber == receiverAccount {
		return domain.ErrSelfTransfer
	}
	receiver := s.lookup(receiverAccount)
	if sender.Status != domain.StatusActive {
		return domain.ErrAccountLocked
	}
	if sender.Balance < amount {
		return domain.ErrInsufficientBalance
	}
	if receiver == nil {
		return domain.ErrNotFound
	}
	if receiver.Status == domain.StatusBlocked {
		return domain.ErrAccountLocked
	}
	sender.Balance -= amount
	receiver.Balance += amount
	ref1, ref2 := receiverAccount, sender.AccountNumber
	s.records = append(s.records,
		domain.Transaction{ID: uuid.New(), AccountNumber: sender.AccountNumber, ReferenceAccount: &ref1, Amount: amount, Kind: domain.TxTransferOut, CreatedAt: time.Now()},
		domain.Transaction{ID: uuid.New(), AccountNumber: receiverAccount, ReferenceAccount: &ref2, Amount: amount, Kind: domain.TxTransferIn, CreatedAt: time.Now()},
	)
	return nil
}

func (s *fakeStore) History(_ context.Context, accountNumber int64) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, r := range s.records {
		if r.AccountNumber == accountNumber {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) recordsFor(accountNumber int64) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, r := range s.records {
		if r.AccountNumber == accountNumber {
			out = append(out, r)
		}
	}
	return out
}

func (s *fakeStore) balanceOf(accountNumber int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc := s.lookup(accountNumber); acc != nil {
		return acc.Balance
	}
	return -1
}

func (s *fakeStore) setStatus(accountNumber int64, status domain.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc := s.lookup(accountNumber); acc != nil {
		acc.Status = status
	}
}

func (s *fakeStore) setBalance(accountNumber int64, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc := s.lookup(accountNumber); acc != nil {
		acc.Balance = balance
	}
}

type fakeCashiers struct {
	mu       sync.Mutex
	cashiers []*domain.Cashier
}

func (s *fakeCashiers) GetByEmail(_ context.Context, email string) (*domain.Cashier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cashiers {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeCashiers) GetByID(_ context.Context, id uuid.UUID) (*domain.Cashier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cashiers {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeCashiers) SetPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cashiers {
		if c.ID == id {
			c.PasswordHash = passwordHash
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeOTPs struct {
	mu      sync.Mutex
	records map[string]domain.OTPRecord
}

func newFakeOTPs() *fakeOTPs {
	return &fakeOTPs{records: make(map[string]domain.OTPRecord)}
}

func (s *fakeOTPs) Upsert(_ context.Context, email, codeHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[email] = domain.OTPRecord{Email: email, CodeHash: codeHash, ExpiresAt: expiresAt}
	return nil
}

func (s *fakeOTPs) Get(_ context.Context, email string) (*domain.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (s *fakeOTPs) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, email)
	return nil
}

type sentMail struct {
	Recipient string
	Subject   string
	Body      string
}

type fakeMail struct {
	mu   sync.Mutex
	sent []sentMail
}

func (s *fakeMail) Enqueue(_ context.Context, recipient, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMail{recipient, subject, body})
	return nil
}

func (s *fakeMail) last() (sentMail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentMail{}, false
	}
	return s.sent[len(s.sent)-1], true
}
