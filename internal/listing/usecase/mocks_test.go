package usecase

import (
	"context"
	"sync"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
	"github.com/stretchr/testify/mock"
)

type MockCatalogClient struct{ mock.Mock }

func (m *MockCatalogClient) ListAdvertisements(ctx context.Context, query domain.ListQuery) (domain.ListResult, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.ListResult), args.Error(1)
}
func (m *MockCatalogClient) GetUserAdvertisements(ctx context.Context, userID int64, status domain.Status) ([]domain.Advertisement, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Advertisement), args.Error(1)
}
func (m *MockCatalogClient) CreateAdvertisement(ctx context.Context, draft domain.Draft) (domain.Advertisement, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(domain.Advertisement), args.Error(1)
}
func (m *MockCatalogClient) UpdateAdvertisement(ctx context.Context, id int64, draft domain.Draft) (domain.Advertisement, error) {
	args := m.Called(ctx, id, draft)
	return args.Get(0).(domain.Advertisement), args.Error(1)
}
func (m *MockCatalogClient) DeleteAdvertisement(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockCatalogClient) MarkAdvertisementSold(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockCatalogClient) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}
func (m *MockCatalogClient) ListBrands(ctx context.Context, categoryID *int64) ([]domain.Brand, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Brand), args.Error(1)
}
func (m *MockCatalogClient) ValidateInitData(ctx context.Context, initData string) (domain.AuthResult, error) {
	args := m.Called(ctx, initData)
	return args.Get(0).(domain.AuthResult), args.Error(1)
}

// fakeHost answers confirmations immediately unless deferConfirm is set, in which case the
// callbacks are parked until the test resolves them.
type fakeHost struct {
	mu           sync.Mutex
	user         domain.HostUser
	hasUser      bool
	answer       bool
	deferConfirm bool
	pending      []func(bool)
	alerts       []string
	confirms     []string
}

func newFakeHost(answer bool) *fakeHost {
	return &fakeHost{
		user:    domain.HostUser{ID: 42, FirstName: "Aziz", Username: "aziz"},
		hasUser: true,
		answer:  answer,
	}
}

func (h *fakeHost) Credential() (string, bool) { return "init-data", true }

func (h *fakeHost) CurrentUser() (domain.HostUser, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.user, h.hasUser
}

func (h *fakeHost) ShowAlert(message string, onDismiss func()) {
	h.mu.Lock()
	h.alerts = append(h.alerts, message)
	h.mu.Unlock()
	if onDismiss != nil {
		onDismiss()
	}
}

func (h *fakeHost) ShowConfirm(message string, onResult func(bool)) {
	h.mu.Lock()
	h.confirms = append(h.confirms, message)
	if h.deferConfirm {
		h.pending = append(h.pending, onResult)
		h.mu.Unlock()
		return
	}
	answer := h.answer
	h.mu.Unlock()
	onResult(answer)
}

func (h *fakeHost) resolve(answer bool) {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()
	for _, cb := range pending {
		cb(answer)
	}
}

func (h *fakeHost) alertsSeen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.alerts...)
}

type staticSource struct {
	catalog   []domain.Advertisement
	favorites []domain.Advertisement
}

func (s staticSource) Catalog() []domain.Advertisement { return domain.CloneAll(s.catalog) }
func (s staticSource) UserCatalog(username string) []domain.Advertisement {
	out := domain.CloneAll(s.catalog[:1])
	out[0].Username = &username
	return out
}
func (s staticSource) Favorites() []domain.Advertisement { return domain.CloneAll(s.favorites) }
func (s staticSource) Categories() []domain.Category {
	return []domain.Category{{ID: 1, NameRU: "Смартфоны", NameUZ: "Smartfonlar"}}
}
func (s staticSource) Brands() []domain.Brand {
	return []domain.Brand{{ID: 1, Name: "Apple"}}
}

func makeAd(id int64, model, description, category string, status domain.Status) domain.Advertisement {
	return domain.Advertisement{
		ID:           &id,
		CategoryName: category,
		BrandName:    "Brand",
		Model:        model,
		Price:        1000 * id,
		Description:  description,
		City:         "Tashkent",
		ContactPhone: "+998901234567",
		Status:       status,
	}
}

func ids(ads []domain.Advertisement) []int64 {
	out := make([]int64, 0, len(ads))
	for _, ad := range ads {
		out = append(out, ad.IDValue())
	}
	return out
}
