package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/municipal-helpdesk/internal/domain"
	"github.com/spec-kit/municipal-helpdesk/internal/repository"
	"github.com/spec-kit/municipal-helpdesk/internal/worker"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTicketRepository is a mock implementation of TicketRepository.
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) NextFolioNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) PeekFolioNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByFolio(ctx context.Context, folio string) (*domain.Ticket, error) {
	args := m.Called(ctx, folio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListWithOwners(ctx context.Context, filter repository.TicketFilter) ([]domain.TicketWithOwner, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketWithOwner), args.Error(1)
}

func (m *MockTicketRepository) UpdateStatus(ctx context.Context, folio string, status domain.TicketStatus, updatedAt time.Time) (*domain.Ticket, error) {
	args := m.Called(ctx, folio, status, updatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) DeleteByFolio(ctx context.Context, folio string) error {
	args := m.Called(ctx, folio)
	return args.Error(0)
}

// capturingSubmitter records submitted jobs.
type capturingSubmitter struct {
	mu   sync.Mutex
	jobs []worker.Job
	err  error
}

func (c *capturingSubmitter) Submit(job worker.Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobs = append(c.jobs, job)
	return c.err
}

func (c *capturingSubmitter) submitted() []worker.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]worker.Job(nil), c.jobs...)
}

// folioStore is a concurrency-safe ticket store backed by a counter, used to exercise
// concurrent creates.
type folioStore struct {
	MockTicketRepository
	mu      sync.Mutex
	next    int64
	byFolio map[string]domain.Ticket
}

func newFolioStore() *folioStore {
	return &folioStore{byFolio: map[string]domain.Ticket{}}
}

func (s *folioStore) NextFolioNumber(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next, nil
}

func (s *folioStore) Create(_ context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byFolio[ticket.Folio]; exists {
		return repository.ErrDuplicateFolio
	}
	ticket.ID = int64(len(s.byFolio) + 1)
	ticket.CreatedAt = time.Now()
	s.byFolio[ticket.Folio] = *ticket
	return nil
}
