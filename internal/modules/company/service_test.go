package company

import (
	"context"
	"testing"

	"trustmrr/internal/domain"
	"trustmrr/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil {
		c.ID = 77 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) ListLeaderboard(ctx context.Context, category domain.Category) ([]domain.Company, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) Rank(ctx context.Context, c *domain.Company) (int, error) {
	args := m.Called(ctx, c)
	return args.Int(0), args.Error(1)
}

func (m *MockCompanyRepository) Update(ctx context.Context, c *domain.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func ptr[T any](v T) *T { return &v }

func ownedCompany(owner int64) *domain.Company {
	return &domain.Company{
		ID:                5,
		Name:              "Acme",
		FounderName:       "jane",
		TwitterHandle:     "@acme",
		MonthlyRevenue:    12000,
		Category:          domain.CategorySaaS,
		IsVerified:        true,
		ShowInLeaderboard: true,
		IsAnonymous:       true,
		OwnerID:           &owner,
		OwnerUsername:     "jane",
	}
}

func TestService_List_AnonymisesForStrangers(t *testing.T) {
	repo := new(MockCompanyRepository)
	svc := NewService(repo, nil, zerolog.Nop())
	ctx := context.Background()

	second := domain.Company{ID: 6, Name: "Beta", MonthlyRevenue: 500, Category: domain.CategoryOther, ShowInLeaderboard: true}
	repo.On("ListLeaderboard", ctx, domain.CategorySaaS).Return([]domain.Company{*ownedCompany(1), second}, nil)

	list, err := svc.List(ctx, "saas", Viewer{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Rank)
	assert.Equal(t, domain.AnonymousCompanyName, list[0].Name)
	assert.Equal(t, domain.AnonymousFounderName, list[0].FounderName)
	assert.Empty(t, list[0].TwitterHandle)
	assert.Equal(t, 12000.0, list[0].MonthlyRevenue)
	assert.False(t, list[0].IsOwner)
	assert.Equal(t, 2, list[1].Rank)

	list, err = svc.List(ctx, "saas", Viewer{UserID: 1, Username: "jane"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", list[0].Name)
	assert.True(t, list[0].IsOwner)

	_, err = svc.List(ctx, "crypto", Viewer{})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestService_Get(t *testing.T) {
	repo := new(MockCompanyRepository)
	svc := NewService(repo, nil, zerolog.Nop())
	ctx := context.Background()

	c := ownedCompany(1)
	repo.On("GetByID", ctx, int64(5)).Return(c, nil)
	repo.On("GetByID", ctx, int64(9)).Return(nil, repository.ErrNotFound)
	repo.On("Rank", ctx, c).Return(3, nil)

	got, err := svc.Get(ctx, 5, Viewer{UserID: 1, Username: "jane"})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rank)
	assert.True(t, got.IsOwner)
	assert.Equal(t, "SaaS", got.CategoryLabel)

	_, err = svc.Get(ctx, 9, Viewer{})
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestService_Create(t *testing.T) {
	repo := new(MockCompanyRepository)
	svc := NewService(repo, nil, zerolog.Nop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Company) bool {
		return c.Name == "Acme" && !c.IsVerified && c.ShowInLeaderboard &&
			c.OwnerID != nil && *c.OwnerID == 1 && c.FounderName == "jane" &&
			c.Category == domain.CategoryOther && c.FoundingDate != nil
	})).Return(nil)

	got, err := svc.Create(ctx, Viewer{UserID: 1, Username: "jane"}, CreateRequest{
		Name:         " Acme ",
		Website:      "https://acme.dev",
		FoundingDate: "2021-03-04",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(77), got.ID)
	assert.True(t, got.IsOwner)
	require.NotNil(t, got.FoundingDate)
	assert.Equal(t, "2021-03-04", *got.FoundingDate)
	repo.AssertExpectations(t)
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(new(MockCompanyRepository), nil, zerolog.Nop())
	ctx := context.Background()
	v := Viewer{UserID: 1, Username: "jane"}

	_, err := svc.Create(ctx, v, CreateRequest{Website: "acme"})
	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "website")

	_, err = svc.Create(ctx, v, CreateRequest{Name: "Acme", Category: "crypto"})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.Create(ctx, v, CreateRequest{Name: "Acme", FoundingDate: "March 2021"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner edits and loses verification on manual revenue", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		svc := NewService(repo, nil, zerolog.Nop())
		repo.On("GetByID", ctx, int64(5)).Return(ownedCompany(1), nil)
		repo.On("Update", ctx, mock.MatchedBy(func(c *domain.Company) bool {
			return c.Tagline == "Faster builds" && c.MonthlyRevenue == 15000 && !c.IsVerified && !c.IsAnonymous
		})).Return(nil)

		got, err := svc.Update(ctx, 5, Viewer{UserID: 1, Username: "jane"}, UpdateRequest{
			Tagline:        ptr("Faster builds"),
			MonthlyRevenue: ptr(15000.0),
			IsAnonymous:    ptr(false),
		}, Uploads{})

		require.NoError(t, err)
		assert.False(t, got.IsVerified)
		repo.AssertExpectations(t)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		svc := NewService(repo, nil, zerolog.Nop())
		repo.On("GetByID", ctx, int64(5)).Return(ownedCompany(1), nil)

		_, err := svc.Update(ctx, 5, Viewer{UserID: 2, Username: "bob"}, UpdateRequest{Tagline: ptr("x")}, Uploads{})

		assert.ErrorIs(t, err, ErrForbidden)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("legacy row matched by founder name", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		svc := NewService(repo, nil, zerolog.Nop())
		legacy := &domain.Company{ID: 8, Name: "Old", FounderName: "Jane", Category: domain.CategoryOther}
		repo.On("GetByID", ctx, int64(8)).Return(legacy, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		_, err := svc.Update(ctx, 8, Viewer{UserID: 3, Username: "jane"}, UpdateRequest{Country: ptr("India")}, Uploads{})

		assert.NoError(t, err)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCompanyRepository)
	svc := NewService(repo, nil, zerolog.Nop())

	repo.On("GetByID", ctx, int64(5)).Return(ownedCompany(1), nil)
	repo.On("Delete", ctx, int64(5)).Return(nil)

	assert.ErrorIs(t, svc.Delete(ctx, 5, Viewer{UserID: 2, Username: "bob"}), ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, 5, Viewer{UserID: 1, Username: "jane"}))
	repo.AssertNumberOfCalls(t, "Delete", 1)
}
