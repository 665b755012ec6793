package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/metrics"
	"go.uber.org/zap"
)

var (
	// ErrControllerInactive is returned by operations invoked after Deactivate.
	ErrControllerInactive = errors.New("listing controller is inactive")
	// ErrFallbackReadOnly is returned when a mutation targets a fallback record.
	ErrFallbackReadOnly = errors.New("fallback records cannot be modified")
	// ErrUnsupportedView is returned when an operation does not apply to the controller's view.
	ErrUnsupportedView = errors.New("operation not supported by this view")
)

// View selects how a controller sources and pages its working set.
type View string

const (
	ViewBrowse    View = "browse"
	ViewManage    View = "manage"
	ViewFavorites View = "favorites"
)

// Default page sizes per view.
const (
	BrowsePageSize    = 1
	ManagePageSize    = 10
	FavoritesPageSize = 1
)

// StaticSource supplies the records a controller shows when it has nothing live to show.
type StaticSource interface {
	Catalog() []domain.Advertisement
	UserCatalog(username string) []domain.Advertisement
	Favorites() []domain.Advertisement
}

// ControllerConfig configures one controller instance.
type ControllerConfig struct {
	View View
	// PageSize overrides the view's default page size when positive.
	PageSize int
	// BrowseQuery scopes the remote list call of the browse view. An empty status means approved.
	BrowseQuery domain.ListQuery
	// UserStatus optionally narrows the manage view's remote call.
	UserStatus domain.Status
	Messages   Messages
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	View          View
	Items         []domain.Advertisement // current page window
	Page          int                    // zero-based
	PageSize      int
	TotalPages    int
	FilteredCount int
	WorkingCount  int
	Criteria      domain.FilterCriteria
	Loading       bool
	Loaded        bool
	LoadingError  bool
	UsingFallback bool
	MarkSoldError bool
	LoadErr       error
	MarkSoldErr   error
}

// ListingController owns the working set, filter and page state of one page view.
// It is driven by a single view; the mutex only serializes completions that arrive
// from other goroutines.
type ListingController struct {
	client   domain.CatalogClient
	host     domain.Host
	static   StaticSource
	logger   *logger.Logger
	metrics  *metrics.MetricsManager
	cfg      ControllerConfig
	pageSize int

	mu            sync.Mutex
	active        bool
	loadSeq       uint64
	working       []domain.Advertisement
	filtered      []domain.Advertisement
	criteria      domain.FilterCriteria
	page          int
	loading       bool
	loaded        bool
	usingFallback bool
	loadErr       error
	markSoldErr   error
}

// NewListingController creates an active controller. log and m may be nil.
func NewListingController(client domain.CatalogClient, host domain.Host, static StaticSource, log *logger.Logger, m *metrics.MetricsManager, cfg ControllerConfig) *ListingController {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.View == "" {
		cfg.View = ViewBrowse
	}
	if cfg.Messages == (Messages{}) {
		cfg.Messages = DefaultMessages("ru")
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		switch cfg.View {
		case ViewManage:
			pageSize = ManagePageSize
		case ViewFavorites:
			pageSize = FavoritesPageSize
		default:
			pageSize = BrowsePageSize
		}
	}

	return &ListingController{
		client:   client,
		host:     host,
		static:   static,
		logger:   log.Named("ListingController").With(zap.String("view", string(cfg.View))),
		metrics:  m,
		cfg:      cfg,
		pageSize: pageSize,
		active:   true,
		working:  []domain.Advertisement{},
		filtered: []domain.Advertisement{},
		criteria: domain.DefaultCriteria(),
	}
}

// Load replaces the working set with the view's source. A failed remote call substitutes the
// static catalog, sets the loading error and returns the cause. Results that arrive after
// Deactivate or after a newer Load are dropped.
func (c *ListingController) Load(ctx context.Context) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrControllerInactive
	}
	c.loadSeq++
	seq := c.loadSeq
	c.loading = true
	c.mu.Unlock()

	c.logger.Info("Loading advertisements")
	ads, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || seq != c.loadSeq {
		c.logger.Debug("Dropping stale load result")
		return nil
	}
	c.loading = false
	c.loaded = true
	c.page = 0

	if err != nil {
		c.logger.Warn("Failed to load advertisements, showing fallback catalog",
			zap.String("error_kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		c.working = c.fallbackSet()
		c.usingFallback = true
		c.loadErr = err
		c.metrics.FallbackUsed(string(c.cfg.View))
		c.refilter()
		return err
	}

	c.working = domain.CloneAll(ads)
	c.usingFallback = false
	c.loadErr = nil
	c.refilter()
	c.logger.Info("Advertisements loaded", zap.Int("count", len(c.working)))
	return nil
}

func (c *ListingController) fetch(ctx context.Context) ([]domain.Advertisement, error) {
	switch c.cfg.View {
	case ViewManage:
		user, _ := c.host.CurrentUser()
		return c.client.GetUserAdvertisements(ctx, user.ID, c.cfg.UserStatus)
	case ViewFavorites:
		return c.static.Favorites(), nil
	default:
		query := c.cfg.BrowseQuery
		if query.Status == "" {
			query.Status = domain.StatusApproved
		}
		res, err := c.client.ListAdvertisements(ctx, query)
		if err != nil {
			return nil, err
		}
		return res.Items, nil
	}
}

func (c *ListingController) fallbackSet() []domain.Advertisement {
	if c.cfg.View == ViewManage {
		user, _ := c.host.CurrentUser()
		return c.static.UserCatalog(user.Username)
	}
	return c.static.Catalog()
}

// SetSearch changes the search term and returns to the first page.
func (c *ListingController) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.Search = term
	c.page = 0
	c.refilter()
}

// SetCategory selects a category name or domain.All.
func (c *ListingController) SetCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.Category = category
	c.page = 0
	c.refilter()
}

// SetStatus selects a status or domain.All.
func (c *ListingController) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria.Status = status
	c.page = 0
	c.refilter()
}

// SetCriteria replaces all filter criteria at once.
func (c *ListingController) SetCriteria(criteria domain.FilterCriteria) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria = criteria
	c.page = 0
	c.refilter()
}

// NextPage advances one page. It reports false and does nothing on the last page.
func (c *ListingController) NextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goTo(c.page + 1)
}

// PrevPage steps back one page. It reports false and does nothing on the first page.
func (c *ListingController) PrevPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goTo(c.page - 1)
}

// GoToPage jumps to a zero-based page. Out of range indexes are ignored.
func (c *ListingController) GoToPage(page int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goTo(page)
}

func (c *ListingController) goTo(page int) bool {
	if page < 0 || page >= TotalPages(len(c.filtered), c.pageSize) || page == c.page {
		return false
	}
	c.page = page
	return true
}

// RequestMarkSold asks the host for confirmation and, once confirmed, marks the advertisement sold.
// The host may answer synchronously or later; only its first answer counts.
func (c *ListingController) RequestMarkSold(ctx context.Context, id int64) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrControllerInactive
	}
	err := c.checkMarkSold(id)
	c.mu.Unlock()
	if err != nil {
		c.rejectMarkSold(id, err)
		return err
	}

	var once sync.Once
	c.host.ShowConfirm(c.cfg.Messages.MarkAsSoldConfirm, func(confirmed bool) {
		once.Do(func() {
			if !confirmed {
				c.logger.Debug("Mark as sold cancelled", zap.Int64("advertisement_id", id))
				return
			}
			_ = c.MarkSold(ctx, id)
		})
	})
	return nil
}

// MarkSold performs the confirmed mark-as-sold step. The local status changes only after the
// remote call succeeds; on failure the record is left untouched and MarkSoldError is set.
func (c *ListingController) MarkSold(ctx context.Context, id int64) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrControllerInactive
	}
	err := c.checkMarkSold(id)
	if err == nil {
		c.markSoldErr = nil
	}
	c.mu.Unlock()
	if err != nil {
		c.rejectMarkSold(id, err)
		return err
	}

	c.logger.Info("Marking advertisement as sold", zap.Int64("advertisement_id", id))
	err = c.client.MarkAdvertisementSold(ctx, id)

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.markSoldErr = err
		c.mu.Unlock()

		c.metrics.MarkSold("error")
		c.logger.Error("Failed to mark advertisement as sold", zap.Int64("advertisement_id", id), zap.Error(err))
		c.host.ShowAlert(c.cfg.Messages.MarkAsSoldError, nil)
		return err
	}

	if i := c.indexOf(id); i >= 0 {
		c.working[i].Status = domain.StatusSold
		c.refilter()
	}
	c.mu.Unlock()

	c.metrics.MarkSold("ok")
	c.logger.Info("Advertisement marked as sold", zap.Int64("advertisement_id", id))
	c.host.ShowAlert(c.cfg.Messages.MarkedAsSold, nil)
	return nil
}

// checkMarkSold must be called with mu held.
func (c *ListingController) checkMarkSold(id int64) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", domain.ErrAdvertisementNotFound, id)
	}
	if c.usingFallback {
		return fmt.Errorf("%w: id %d", ErrFallbackReadOnly, id)
	}
	// pending -> sold is left to the service to accept or refuse.
	if status := c.working[i].Status; status != domain.StatusPending && !status.CanTransitionTo(domain.StatusSold) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, status, domain.StatusSold)
	}
	return nil
}

func (c *ListingController) rejectMarkSold(id int64, err error) {
	c.mu.Lock()
	c.markSoldErr = err
	c.mu.Unlock()

	c.metrics.MarkSold("rejected")
	c.logger.Warn("Mark as sold rejected", zap.Int64("advertisement_id", id), zap.Error(err))
	c.host.ShowAlert(c.cfg.Messages.MarkAsSoldError, nil)
}

// RemoveFavorite drops an advertisement from the favorites set. No remote call is made.
// The page index moves back when the current page no longer exists.
func (c *ListingController) RemoveFavorite(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return ErrControllerInactive
	}
	if c.cfg.View != ViewFavorites {
		return ErrUnsupportedView
	}
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", domain.ErrAdvertisementNotFound, id)
	}
	c.working = append(c.working[:i], c.working[i+1:]...)
	c.refilter()
	c.logger.Debug("Removed from favorites", zap.Int64("advertisement_id", id), zap.Int("remaining", len(c.working)))
	return nil
}

// Deactivate detaches the controller from its view. Later completions become no-ops.
func (c *ListingController) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	c.loading = false
}

// Snapshot returns a deep copy of the current state.
func (c *ListingController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	start, end := PageWindow(len(c.filtered), c.pageSize, c.page)
	return Snapshot{
		View:          c.cfg.View,
		Items:         domain.CloneAll(c.filtered[start:end]),
		Page:          c.page,
		PageSize:      c.pageSize,
		TotalPages:    TotalPages(len(c.filtered), c.pageSize),
		FilteredCount: len(c.filtered),
		WorkingCount:  len(c.working),
		Criteria:      c.criteria,
		Loading:       c.loading,
		Loaded:        c.loaded,
		LoadingError:  c.loadErr != nil,
		UsingFallback: c.usingFallback,
		MarkSoldError: c.markSoldErr != nil,
		LoadErr:       c.loadErr,
		MarkSoldErr:   c.markSoldErr,
	}
}

// refilter recomputes the derived sequence and clamps the page. mu must be held.
func (c *ListingController) refilter() {
	c.filtered = ApplyFilter(c.working, c.criteria)
	c.page = ClampPage(c.page, TotalPages(len(c.filtered), c.pageSize))
}

// indexOf must be called with mu held.
func (c *ListingController) indexOf(id int64) int {
	for i := range c.working {
		if c.working[i].HasID(id) {
			return i
		}
	}
	return -1
}
