package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReferenceSource supplies static categories and brands when the service cannot.
type ReferenceSource interface {
	Categories() []domain.Category
	Brands() []domain.Brand
}

// SellFormState is a copy of the sell form's reference data and flags.
type SellFormState struct {
	Categories    []domain.Category
	Brands        []domain.Brand
	CategoryID    *int64
	BrandID       int64
	Loading       bool
	UsingFallback bool
	Submitting    bool
	LoadErr       error
	SubmitErr     error
	LastCreated   *domain.Advertisement
}

// SellForm drives the create-advertisement page: reference data and draft submission.
type SellForm struct {
	client   domain.CatalogClient
	host     domain.Host
	static   ReferenceSource
	logger   *logger.Logger
	metrics  *metrics.MetricsManager
	messages Messages

	mu            sync.Mutex
	active        bool
	brandsSeq     uint64
	categories    []domain.Category
	brands        []domain.Brand
	categoryID    *int64
	brandID       int64
	loading       bool
	usingFallback bool
	submitting    bool
	loadErr       error
	submitErr     error
	lastCreated   *domain.Advertisement
}

// NewSellForm creates an active sell form. log and m may be nil.
func NewSellForm(client domain.CatalogClient, host domain.Host, static ReferenceSource, log *logger.Logger, m *metrics.MetricsManager, msgs Messages) *SellForm {
	if log == nil {
		log = logger.NewNop()
	}
	if msgs == (Messages{}) {
		msgs = DefaultMessages("ru")
	}
	return &SellForm{
		client:     client,
		host:       host,
		static:     static,
		logger:     log.Named("SellForm"),
		metrics:    m,
		messages:   msgs,
		active:     true,
		categories: []domain.Category{},
		brands:     []domain.Brand{},
	}
}

// Load fetches categories and brands concurrently. When either call fails, both lists are
// replaced by the static reference data and the joined error is returned. A brand list
// reloaded by SelectCategory while Load was in flight is kept.
func (f *SellForm) Load(ctx context.Context) error {
	f.mu.Lock()
	if !f.active {
		f.mu.Unlock()
		return ErrControllerInactive
	}
	f.loading = true
	f.brandsSeq++
	seq := f.brandsSeq
	f.mu.Unlock()

	var (
		categories       []domain.Category
		brands           []domain.Brand
		catErr, brandErr error
		g                errgroup.Group
	)
	g.Go(func() error {
		categories, catErr = f.client.ListCategories(ctx)
		return catErr
	})
	g.Go(func() error {
		brands, brandErr = f.client.ListBrands(ctx, nil)
		return brandErr
	})
	_ = g.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return nil
	}
	f.loading = false

	if err := errors.Join(catErr, brandErr); err != nil {
		f.logger.Warn("Failed to load reference data, using static lists", zap.Error(err))
		f.categories = f.static.Categories()
		if seq == f.brandsSeq {
			f.brands = f.static.Brands()
		}
		f.usingFallback = true
		f.loadErr = err
		f.metrics.FallbackUsed("sell")
		return err
	}

	f.categories = categories
	if seq == f.brandsSeq {
		f.brands = brands
	}
	f.usingFallback = false
	f.loadErr = nil
	f.logger.Debug("Reference data loaded", zap.Int("categories", len(categories)), zap.Int("brands", len(brands)))
	return nil
}

// SelectCategory scopes the brand list to categoryID, or unscopes it when nil, and clears the
// brand selection. A failed reload keeps the current brands.
func (f *SellForm) SelectCategory(ctx context.Context, categoryID *int64) error {
	f.mu.Lock()
	if !f.active {
		f.mu.Unlock()
		return ErrControllerInactive
	}
	if categoryID != nil {
		id := *categoryID
		f.categoryID = &id
	} else {
		f.categoryID = nil
	}
	f.brandID = 0
	f.brandsSeq++
	seq := f.brandsSeq
	f.mu.Unlock()

	brands, err := f.client.ListBrands(ctx, categoryID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active || seq != f.brandsSeq {
		return nil
	}
	if err != nil {
		f.logger.Warn("Failed to reload brands for category", zap.Error(err))
		return err
	}
	f.brands = brands
	return nil
}

// SelectBrand records the chosen brand.
func (f *SellForm) SelectBrand(brandID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brandID = brandID
}

// Submit creates the advertisement for the current host user. The outcome is also reported
// to the user through a host alert.
func (f *SellForm) Submit(ctx context.Context, draft domain.Draft) (domain.Advertisement, error) {
	user, ok := f.host.CurrentUser()
	if !ok || user.ID <= 0 {
		f.host.ShowAlert(f.messages.UserError, nil)
		return domain.Advertisement{}, &domain.RequestError{Kind: domain.KindValidation, Op: "create_advertisement", Err: domain.ErrUserUnknown}
	}
	draft.UserID = user.ID

	f.mu.Lock()
	if !f.active {
		f.mu.Unlock()
		return domain.Advertisement{}, ErrControllerInactive
	}
	if draft.CategoryID == 0 && f.categoryID != nil {
		draft.CategoryID = *f.categoryID
	}
	if draft.BrandID == 0 {
		draft.BrandID = f.brandID
	}
	f.submitting = true
	f.submitErr = nil
	f.mu.Unlock()

	ad, err := f.client.CreateAdvertisement(ctx, draft)

	f.mu.Lock()
	if !f.active {
		f.mu.Unlock()
		return ad, err
	}
	f.submitting = false
	if err != nil {
		f.submitErr = err
		f.mu.Unlock()

		f.logger.Error("Failed to create advertisement",
			zap.String("error_kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		f.host.ShowAlert(f.messages.CreateError, nil)
		return domain.Advertisement{}, err
	}
	created := ad.Clone()
	f.lastCreated = &created
	f.mu.Unlock()

	f.logger.Info("Advertisement submitted for moderation", zap.Int64("advertisement_id", ad.IDValue()))
	f.host.ShowAlert(f.messages.CreateSuccess, nil)
	return ad, nil
}

// Deactivate detaches the form. Later completions become no-ops.
func (f *SellForm) Deactivate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
}

// State returns a copy of the form state.
func (f *SellForm) State() SellFormState {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := SellFormState{
		Categories:    append([]domain.Category{}, f.categories...),
		Brands:        append([]domain.Brand{}, f.brands...),
		BrandID:       f.brandID,
		Loading:       f.loading,
		UsingFallback: f.usingFallback,
		Submitting:    f.submitting,
		LoadErr:       f.loadErr,
		SubmitErr:     f.submitErr,
	}
	if f.categoryID != nil {
		id := *f.categoryID
		st.CategoryID = &id
	}
	if f.lastCreated != nil {
		ad := f.lastCreated.Clone()
		st.LastCreated = &ad
	}
	return st
}
