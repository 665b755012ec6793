package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/fallback"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/metrics"
)

var errUsage = errors.New("usage")

type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	metrics  *metrics.MetricsManager
	client   domain.CatalogClient
	host     domain.Host
	static   *fallback.Source
	messages usecase.Messages
	out      io.Writer
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "browse":
		return a.browse(ctx, args)
	case "my-ads":
		return a.myAds(ctx, args)
	case "sold":
		return a.markSold(ctx, args)
	case "favorites":
		return a.favorites(ctx, args)
	case "sell":
		return a.sell(ctx, args)
	case "categories":
		return a.categories(ctx, args)
	case "brands":
		return a.brands(ctx, args)
	case "validate":
		return a.validate(ctx, args)
	}
	return errUsage
}

func (a *app) controller(view usecase.View, cfg usecase.ControllerConfig) *usecase.ListingController {
	cfg.View = view
	cfg.Messages = a.messages
	return usecase.NewListingController(a.client, a.host, a.static, a.logger, a.metrics, cfg)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func (a *app) browse(ctx context.Context, args []string) error {
	fs := newFlagSet("browse")
	search := fs.String("search", "", "search term")
	category := fs.String("category", domain.All, "category name")
	city := fs.String("city", "", "city")
	if err := parse(fs, args); err != nil {
		return err
	}

	c := a.controller(usecase.ViewBrowse, usecase.ControllerConfig{
		BrowseQuery: domain.ListQuery{City: *city},
	})
	defer c.Deactivate()

	_ = c.Load(ctx)
	c.SetCriteria(domain.FilterCriteria{Search: *search, Category: *category, Status: domain.All})

	a.printLoadState(c.Snapshot())
	for {
		a.printPage(c.Snapshot())
		if !c.NextPage() {
			return nil
		}
	}
}

func (a *app) myAds(ctx context.Context, args []string) error {
	fs := newFlagSet("my-ads")
	status := fs.String("status", domain.All, "pending, approved, rejected, sold or all")
	search := fs.String("search", "", "search term")
	page := fs.Int("page", 1, "page number")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *status != domain.All {
		if _, err := domain.ParseStatus(*status); err != nil {
			return err
		}
	}

	c := a.controller(usecase.ViewManage, usecase.ControllerConfig{PageSize: a.cfg.ManagePageSize})
	defer c.Deactivate()

	_ = c.Load(ctx)
	c.SetCriteria(domain.FilterCriteria{Search: *search, Category: domain.All, Status: *status})
	c.GoToPage(*page - 1)

	snap := c.Snapshot()
	a.printLoadState(snap)
	if snap.FilteredCount == 0 {
		fmt.Fprintln(a.out, a.messages.NoAds)
		return nil
	}
	a.printPage(snap)
	return nil
}

func (a *app) markSold(ctx context.Context, args []string) error {
	fs := newFlagSet("sold")
	id := fs.Int64("id", 0, "advertisement id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return errUsage
	}

	c := a.controller(usecase.ViewManage, usecase.ControllerConfig{PageSize: a.cfg.ManagePageSize})
	defer c.Deactivate()

	if err := c.Load(ctx); err != nil {
		a.printLoadState(c.Snapshot())
	}
	if err := c.RequestMarkSold(ctx, *id); err != nil {
		return err
	}
	return c.Snapshot().MarkSoldErr
}

func (a *app) favorites(ctx context.Context, args []string) error {
	fs := newFlagSet("favorites")
	remove := fs.Int64("remove", 0, "advertisement id to remove")
	if err := parse(fs, args); err != nil {
		return err
	}

	c := a.controller(usecase.ViewFavorites, usecase.ControllerConfig{})
	defer c.Deactivate()

	if err := c.Load(ctx); err != nil {
		return err
	}
	if *remove > 0 {
		if err := c.RemoveFavorite(*remove); err != nil {
			return err
		}
	}
	for {
		snap := c.Snapshot()
		if snap.FilteredCount == 0 {
			return nil
		}
		a.printPage(snap)
		if !c.NextPage() {
			return nil
		}
	}
}

func (a *app) sell(ctx context.Context, args []string) error {
	fs := newFlagSet("sell")
	categoryID := fs.Int64("category", 0, "category id")
	brandID := fs.Int64("brand", 0, "brand id")
	model := fs.String("model", "", "model")
	price := fs.Int64("price", 0, "price")
	description := fs.String("description", "", "description")
	city := fs.String("city", "", "city")
	phone := fs.String("phone", "", "contact phone")
	photoPath := fs.String("photo", "", "path to the photo")
	if err := parse(fs, args); err != nil {
		return err
	}

	form := usecase.NewSellForm(a.client, a.host, a.static, a.logger, a.metrics, a.messages)
	defer form.Deactivate()

	_ = form.Load(ctx)
	if *categoryID > 0 {
		_ = form.SelectCategory(ctx, categoryID)
	}
	form.SelectBrand(*brandID)

	draft := domain.Draft{
		Model:        *model,
		Price:        *price,
		Description:  *description,
		City:         *city,
		ContactPhone: *phone,
	}
	if *photoPath != "" {
		data, err := os.ReadFile(*photoPath)
		if err != nil {
			return fmt.Errorf("read photo: %w", err)
		}
		draft.Photo = &domain.Photo{
			Filename:    filepath.Base(*photoPath),
			ContentType: http.DetectContentType(data),
			Data:        data,
		}
	}

	ad, err := form.Submit(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created advertisement #%d (%s)\n", ad.IDValue(), ad.Status)
	return nil
}

func (a *app) categories(ctx context.Context, args []string) error {
	if err := parse(newFlagSet("categories"), args); err != nil {
		return err
	}

	form := usecase.NewSellForm(a.client, a.host, a.static, a.logger, a.metrics, a.messages)
	defer form.Deactivate()

	if err := form.Load(ctx); err != nil {
		fmt.Fprintln(os.Stderr, a.messages.LoadingError)
	}
	for _, c := range form.State().Categories {
		fmt.Fprintf(a.out, "%d\t%s\n", c.ID, c.Name(a.cfg.Language))
	}
	return nil
}

func (a *app) brands(ctx context.Context, args []string) error {
	fs := newFlagSet("brands")
	categoryID := fs.Int64("category", 0, "category id")
	if err := parse(fs, args); err != nil {
		return err
	}

	form := usecase.NewSellForm(a.client, a.host, a.static, a.logger, a.metrics, a.messages)
	defer form.Deactivate()

	if err := form.Load(ctx); err != nil {
		fmt.Fprintln(os.Stderr, a.messages.LoadingError)
	}
	if *categoryID > 0 {
		if err := form.SelectCategory(ctx, categoryID); err != nil {
			return err
		}
	}
	for _, b := range form.State().Brands {
		fmt.Fprintf(a.out, "%d\t%s\n", b.ID, b.Name)
	}
	return nil
}

func (a *app) validate(ctx context.Context, args []string) error {
	if err := parse(newFlagSet("validate"), args); err != nil {
		return err
	}
	if a.cfg.HostInitData == "" {
		return errors.New("HOST_INIT_DATA is not set")
	}

	res, err := a.client.ValidateInitData(ctx, a.cfg.HostInitData)
	if err != nil {
		return err
	}
	if !res.Valid {
		fmt.Fprintln(a.out, "init data is not valid")
		return nil
	}
	fmt.Fprintln(a.out, "init data is valid")
	if res.User != nil {
		fmt.Fprintf(a.out, "user #%d %s (@%s)\n", res.User.ID, res.User.FirstName, res.User.Username)
	}
	return nil
}

func (a *app) printLoadState(snap usecase.Snapshot) {
	if snap.LoadingError {
		fmt.Fprintf(os.Stderr, "%s: %v\n", a.messages.LoadingError, snap.LoadErr)
	}
}

func (a *app) printPage(snap usecase.Snapshot) {
	if snap.TotalPages == 0 {
		return
	}
	fmt.Fprintf(a.out, "-- page %d/%d (%d of %d) --\n", snap.Page+1, snap.TotalPages, snap.FilteredCount, snap.WorkingCount)
	for _, ad := range snap.Items {
		fmt.Fprintf(a.out, "#%d\t%-10s\t%s\t%s\t%d\t%s\n",
			ad.IDValue(), ad.Status, strings.TrimSpace(ad.BrandName+" "+ad.Model), ad.City, ad.Price, ad.ContactPhone)
	}
}
