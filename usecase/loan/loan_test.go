package loan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demandlane/booklending/domain"
	"github.com/demandlane/booklending/repository"
)

// fakeStore backs all repository fakes with plain maps. Mutations are
// expected to run through fakeTx, which serializes callers and restores a
// snapshot when the unit of work fails, mirroring transaction semantics.
type fakeStore struct {
	mu         sync.Mutex
	members    map[int64]domain.Member
	books      map[int64]domain.Book
	loans      map[int64]domain.Loan
	nextLoanID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members:    make(map[int64]domain.Member),
		books:      make(map[int64]domain.Book),
		loans:      make(map[int64]domain.Loan),
		nextLoanID: 1,
	}
}

func (s *fakeStore) snapshot() (map[int64]domain.Book, map[int64]domain.Loan, int64) {
	books := make(map[int64]domain.Book, len(s.books))
	for id, b := range s.books {
		books[id] = b
	}
	loans := make(map[int64]domain.Loan, len(s.loans))
	for id, l := range s.loans {
		loans[id] = l
	}
	return books, loans, s.nextLoanID
}

type fakeTx struct{ s *fakeStore }

func (t *fakeTx) WithinTx(_ context.Context, fn func(ctx context.Context) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	books, loans, nextID := t.s.snapshot()
	if err := fn(context.Background()); err != nil {
		t.s.books, t.s.loans, t.s.nextLoanID = books, loans, nextID
		return err
	}
	return nil
}

type fakeMembers struct{ s *fakeStore }

func (f *fakeMembers) GetByID(_ context.Context, id int64) (*domain.Member, error) {
	m, ok := f.s.members[id]
	if !ok || m.DeletedAt != nil {
		return nil, domain.ErrMemberNotFound
	}
	return &m, nil
}

func (f *fakeMembers) GetByEmail(_ context.Context, email string) (*domain.Member, error) {
	for _, m := range f.s.members {
		if m.Email == email && m.DeletedAt == nil {
			return &m, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (f *fakeMembers) List(context.Context, repository.MemberFilter, repository.Page) ([]domain.Member, int64, error) {
	return nil, 0, nil
}

func (f *fakeMembers) Create(_ context.Context, m *domain.Member) error {
	f.s.members[m.ID] = *m
	return nil
}

func (f *fakeMembers) Update(_ context.Context, m *domain.Member) error {
	f.s.members[m.ID] = *m
	return nil
}

func (f *fakeMembers) SoftDelete(context.Context, int64) error { return nil }

func (f *fakeMembers) CountAll(context.Context) (int64, error) {
	return int64(len(f.s.members)), nil
}

type fakeBooks struct{ s *fakeStore }

func (f *fakeBooks) GetByID(_ context.Context, id int64) (*domain.Book, error) {
	b, ok := f.s.books[id]
	if !ok || b.DeletedAt != nil {
		return nil, domain.ErrBookNotFound
	}
	return &b, nil
}

func (f *fakeBooks) GetForUpdate(ctx context.Context, id int64) (*domain.Book, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeBooks) List(context.Context, repository.BookFilter, repository.Page) ([]domain.Book, int64, error) {
	return nil, 0, nil
}

func (f *fakeBooks) Create(_ context.Context, b *domain.Book) error {
	f.s.books[b.ID] = *b
	return nil
}

func (f *fakeBooks) Update(_ context.Context, b *domain.Book) error {
	f.s.books[b.ID] = *b
	return nil
}

func (f *fakeBooks) SoftDelete(context.Context, int64) error { return nil }

type fakeLoans struct{ s *fakeStore }

func (f *fakeLoans) GetByID(_ context.Context, id int64) (*domain.Loan, error) {
	l, ok := f.s.loans[id]
	if !ok || l.DeletedAt != nil {
		return nil, domain.ErrLoanNotFound
	}
	return &l, nil
}

func (f *fakeLoans) List(_ context.Context, filter repository.LoanFilter, _ repository.Page) ([]domain.Loan, int64, error) {
	var out []domain.Loan
	for _, l := range f.s.loans {
		if l.DeletedAt != nil {
			continue
		}
		if filter.MemberID != nil && l.MemberID != *filter.MemberID {
			continue
		}
		if filter.BookID != nil && l.BookID != *filter.BookID {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLoans) Create(_ context.Context, l *domain.Loan) error {
	l.ID = f.s.nextLoanID
	f.s.nextLoanID++
	f.s.loans[l.ID] = *l
	return nil
}

func (f *fakeLoans) Update(_ context.Context, l *domain.Loan) error {
	if _, ok := f.s.loans[l.ID]; !ok {
		return domain.ErrLoanNotFound
	}
	f.s.loans[l.ID] = *l
	return nil
}

func (f *fakeLoans) SoftDelete(_ context.Context, id int64) error {
	l, ok := f.s.loans[id]
	if !ok || l.DeletedAt != nil {
		return domain.ErrLoanNotFound
	}
	now := time.Now()
	l.DeletedAt = &now
	f.s.loans[id] = l
	return nil
}

func (f *fakeLoans) MarkReturned(_ context.Context, id int64, returnedAt time.Time) error {
	l, ok := f.s.loans[id]
	if !ok || l.DeletedAt != nil || l.ReturnedAt != nil {
		return domain.ErrLoanAlreadyReturned
	}
	l.ReturnedAt = &returnedAt
	f.s.loans[id] = l
	return nil
}

func (f *fakeLoans) CountActiveByMember(_ context.Context, memberID int64) (int64, error) {
	var count int64
	for _, l := range f.s.loans {
		if l.MemberID == memberID && l.ReturnedAt == nil && l.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeLoans) HasOverdue(_ context.Context, memberID int64, now time.Time) (bool, error) {
	for _, l := range f.s.loans {
		if l.MemberID == memberID && l.ReturnedAt == nil && l.DeletedAt == nil && l.DueDate.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

type fakeLedger struct{ s *fakeStore }

func (f *fakeLedger) Reserve(_ context.Context, bookID int64) error {
	b, ok := f.s.books[bookID]
	if !ok || b.DeletedAt != nil {
		return domain.ErrBookNotFound
	}
	if b.AvailableCopies <= 0 {
		return domain.ErrBookOutOfStock
	}
	b.AvailableCopies--
	f.s.books[bookID] = b
	return nil
}

func (f *fakeLedger) Release(_ context.Context, bookID int64) error {
	b, ok := f.s.books[bookID]
	if !ok || b.DeletedAt != nil {
		return domain.ErrBookNotFound
	}
	if b.AvailableCopies < b.TotalCopies {
		b.AvailableCopies++
	}
	f.s.books[bookID] = b
	return nil
}

var testNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestUseCase(t *testing.T, store *fakeStore) *UseCase {
	t.Helper()
	uc := New(
		&fakeLoans{s: store},
		&fakeBooks{s: store},
		&fakeMembers{s: store},
		&fakeLedger{s: store},
		&fakeTx{s: store},
		Config{MaxActiveLoans: 5, LoanDurationDays: 14},
		nil,
	)
	uc.now = func() time.Time { return testNow }
	return uc
}

func seedMember(store *fakeStore, id int64) {
	store.members[id] = domain.Member{ID: id, Name: "Reader", Email: "reader@example.com", Role: domain.RoleMember}
}

func seedBook(store *fakeStore, id, total, available int64) {
	store.books[id] = domain.Book{ID: id, Title: "The Go Programming Language", ISBN: "978-0134190440", TotalCopies: total, AvailableCopies: available}
}

func seedActiveLoan(store *fakeStore, memberID, bookID int64, dueDate time.Time) int64 {
	id := store.nextLoanID
	store.nextLoanID++
	store.loans[id] = domain.Loan{
		ID:         id,
		MemberID:   memberID,
		BookID:     bookID,
		BorrowedAt: dueDate.AddDate(0, 0, -14),
		DueDate:    dueDate,
	}
	return id
}

// checkStockInvariant asserts available = total - active loans for a book.
func checkStockInvariant(t *testing.T, store *fakeStore, bookID int64) {
	t.Helper()
	var active int64
	for _, l := range store.loans {
		if l.BookID == bookID && l.ReturnedAt == nil && l.DeletedAt == nil {
			active++
		}
	}
	b := store.books[bookID]
	assert.Equal(t, b.TotalCopies-active, b.AvailableCopies)
}

func TestBorrowAndReturnRoundTrip(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	seedBook(store, 10, 5, 5)
	uc := newTestUseCase(t, store)

	loan, err := uc.Borrow(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, testNow, loan.BorrowedAt)
	assert.Equal(t, testNow.AddDate(0, 0, 14), loan.DueDate)
	assert.Nil(t, loan.ReturnedAt)
	assert.Equal(t, int64(4), store.books[10].AvailableCopies)
	checkStockInvariant(t, store, 10)

	returned, err := uc.Return(context.Background(), loan.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, testNow, *returned.ReturnedAt)
	assert.Equal(t, int64(5), store.books[10].AvailableCopies)
	checkStockInvariant(t, store, 10)
}

func TestBorrowUnknownMember(t *testing.T) {
	store := newFakeStore()
	seedBook(store, 10, 1, 1)
	uc := newTestUseCase(t, store)

	_, err := uc.Borrow(context.Background(), 42, 10)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
	assert.Equal(t, int64(1), store.books[10].AvailableCopies)
}

func TestBorrowUnknownBook(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	uc := newTestUseCase(t, store)

	_, err := uc.Borrow(context.Background(), 1, 99)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
	assert.Empty(t, store.loans)
}

func TestBorrowAtLoanCeilingIsRejected(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	seedBook(store, 10, 10, 10)
	for i := 0; i < 5; i++ {
		seedActiveLoan(store, 1, 10, testNow.AddDate(0, 0, 7))
	}
	uc := newTestUseCase(t, store)

	_, err := uc.Borrow(context.Background(), 1, 10)
	assert.ErrorIs(t, err, domain.MaxLoansExceeded(5))
}

func TestBorrowJustBelowCeilingSucceeds(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	seedBook(store, 10, 10, 10)
	for i := 0; i < 4; i++ {
		seedActiveLoan(store, 1, 10, testNow.AddDate(0, 0, 7))
	}
	uc := newTestUseCase(t, store)

	_, err := uc.Borrow(context.Background(), 1, 10)
	require.NoError(t, err)

	count, err := (&fakeLoans{s: store}).CountActiveByMember(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestBorrowWithOverdueLoanIsRejected(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	seedBook(store, 10, 10, 10)
	seedActiveLoan(store, 1, 10, testNow.AddDate(0, 0, -1))
	uc := newTestUseCase(t, store)

	_, err := uc.Borrow(context.Background(), 1, 10)
	assert.ErrorIs(t, err, domain.ErrHasOverdueLoan)
}

func TestLoanCeilingTakesPrecedenceOverOverdue(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	seedBook(store, 10, 10, 10)
	for i := 0; i < 5; i++ {
		seedActiveLoan(store, 1, 10, testNow.AddDate(0, 0, -1)) // all overdue
	}
	uc := newTestUseCase(t, store)

	_, err := uc.Borrow(context.Background(), 1, 10)
	assert.ErrorIs(t, err, domain.MaxLoansExceeded(5))
}

func TestBorrowExhaustedStockIsRejected(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	seedBook(store, 10, 3, 0)
	uc := newTestUseCase(t, store)

	_, err := uc.Borrow(context.Background(), 1, 10)
	assert.ErrorIs(t, err, domain.NoCopiesAvailable("The Go Programming Language"))
	assert.Empty(t, store.loans)
}

func TestConcurrentBorrowsOfLastCopy(t *testing.T) {
	store := newFakeStore()
	seedBook(store, 10, 1, 1)
	const borrowers = 8
	for i := int64(1); i <= borrowers; i++ {
		store.members[i] = domain.Member{ID: i, Role: domain.RoleMember}
	}
	uc := newTestUseCase(t, store)

	var wg sync.WaitGroup
	errs := make([]error, borrowers)
	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Borrow(context.Background(), int64(i+1), 10)
		}(i)
	}
	wg.Wait()

	var successes, rejections int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case domain.IsDomainError(err, domain.ErrCodeViolation):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, borrowers-1, rejections)
	assert.Equal(t, int64(0), store.books[10].AvailableCopies)
	checkStockInvariant(t, store, 10)
}

func TestReturnUnknownLoan(t *testing.T) {
	store := newFakeStore()
	uc := newTestUseCase(t, store)

	_, err := uc.Return(context.Background(), 77)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestDoubleReturnIsRejectedAndStockUntouched(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	seedBook(store, 10, 5, 5)
	uc := newTestUseCase(t, store)

	loan, err := uc.Borrow(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = uc.Return(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), store.books[10].AvailableCopies)

	_, err = uc.Return(context.Background(), loan.ID)
	assert.ErrorIs(t, err, domain.ErrLoanAlreadyReturned)
	assert.Equal(t, int64(5), store.books[10].AvailableCopies)
}

func TestAdminCreateDefaultsDates(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	seedBook(store, 10, 5, 5)
	uc := newTestUseCase(t, store)

	loan, err := uc.Create(context.Background(), &domain.Loan{MemberID: 1, BookID: 10})
	require.NoError(t, err)
	assert.Equal(t, testNow, loan.BorrowedAt)
	assert.Equal(t, testNow.AddDate(0, 0, 14), loan.DueDate)
	// administrative create bypasses the ledger
	assert.Equal(t, int64(5), store.books[10].AvailableCopies)
}

func TestAdminUpdateAppliesPartialPatch(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	seedMember(store, 2)
	seedBook(store, 10, 5, 5)
	uc := newTestUseCase(t, store)

	loan, err := uc.Create(context.Background(), &domain.Loan{MemberID: 1, BookID: 10})
	require.NoError(t, err)

	newMember := int64(2)
	updated, err := uc.Update(context.Background(), loan.ID, domain.LoanPatch{MemberID: &newMember})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.MemberID)
	assert.Equal(t, loan.BookID, updated.BookID)
	assert.Equal(t, loan.DueDate, updated.DueDate)
}

func TestAdminUpdateRejectsUnknownMember(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	seedBook(store, 10, 5, 5)
	uc := newTestUseCase(t, store)

	loan, err := uc.Create(context.Background(), &domain.Loan{MemberID: 1, BookID: 10})
	require.NoError(t, err)

	ghost := int64(404)
	_, err = uc.Update(context.Background(), loan.ID, domain.LoanPatch{MemberID: &ghost})
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestDeleteSoftDeletesLoan(t *testing.T) {
	store := newFakeStore()
	seedMember(store, 1)
	seedBook(store, 10, 5, 5)
	uc := newTestUseCase(t, store)

	loan, err := uc.Create(context.Background(), &domain.Loan{MemberID: 1, BookID: 10})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), loan.ID))
	_, err = uc.Get(context.Background(), loan.ID)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}
