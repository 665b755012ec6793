package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/platform/logger"
	"go.uber.org/zap"
)

// Client is the typed catalog service client. It holds no state beyond its collaborators.
type Client struct {
	sender Sender
	logger *logger.Logger
}

var _ domain.CatalogClient = (*Client)(nil)

// NewClient creates a catalog client on top of sender. log may be nil.
func NewClient(sender Sender, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		sender: sender,
		logger: log.Named("CatalogClient"),
	}
}

// ListAdvertisements fetches one remote page. Every failure is reported as a fetch error.
func (c *Client) ListAdvertisements(ctx context.Context, query domain.ListQuery) (domain.ListResult, error) {
	const op = "list_advertisements"

	params := map[string]string{
		"category": query.Category,
		"brand":    query.Brand,
		"city":     query.City,
		"status":   string(query.Status),
	}
	if query.Page > 0 {
		params["page"] = strconv.Itoa(query.Page)
	}
	if query.Limit > 0 {
		params["limit"] = strconv.Itoa(query.Limit)
	}

	var resp advertisementListDTO
	err := c.sender.Send(ctx, Request{
		Op:     op,
		Method: http.MethodGet,
		Path:   "/advertisements",
		Query:  params,
		Schema: SchemaAdvertisementList,
	}, &resp)
	if err != nil {
		return domain.ListResult{}, domain.Retag(err, domain.KindFetch, op)
	}

	items := toDomainAdvertisements(resp.Advertisements)
	c.logger.Debug("Advertisements listed", zap.Int("count", len(items)), zap.Int("total", resp.Total))
	return domain.ListResult{
		Items:      items,
		Total:      resp.Total,
		Page:       resp.Page,
		TotalPages: resp.TotalPages,
	}, nil
}

// GetUserAdvertisements returns the user's advertisements, optionally narrowed to status.
// The result is never nil.
func (c *Client) GetUserAdvertisements(ctx context.Context, userID int64, status domain.Status) ([]domain.Advertisement, error) {
	const op = "get_user_advertisements"

	if userID <= 0 {
		return nil, &domain.RequestError{
			Kind: domain.KindFetch,
			Op:   op,
			Err:  fmt.Errorf("%w: id %d", domain.ErrUserUnknown, userID),
		}
	}

	var resp struct {
		Advertisements []advertisementDTO `json:"advertisements"`
	}
	err := c.sender.Send(ctx, Request{
		Op:     op,
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/users/%d/advertisements", userID),
		Query:  map[string]string{"status": string(status)},
		Schema: SchemaUserAdvertisements,
	}, &resp)
	if err != nil {
		return nil, domain.Retag(err, domain.KindFetch, op)
	}
	return toDomainAdvertisements(resp.Advertisements), nil
}

// CreateAdvertisement validates draft locally and submits it with its photo.
// Nothing is sent when validation fails.
func (c *Client) CreateAdvertisement(ctx context.Context, draft domain.Draft) (domain.Advertisement, error) {
	const op = "create_advertisement"

	if draft.UserID <= 0 {
		return domain.Advertisement{}, &domain.RequestError{
			Kind: domain.KindValidation,
			Op:   op,
			Err:  domain.ErrUserUnknown,
		}
	}
	if err := draft.Validate(false); err != nil {
		c.logger.Warn("Rejected invalid draft", zap.Error(err))
		return domain.Advertisement{}, &domain.RequestError{Kind: domain.KindValidation, Op: op, Err: err}
	}

	ad, err := c.submitDraft(ctx, op, http.MethodPost, "/advertisements", draft)
	if err != nil {
		if isClientError(err) {
			return domain.Advertisement{}, domain.Retag(err, domain.KindValidation, op)
		}
		return domain.Advertisement{}, err
	}

	c.logger.Info("Advertisement created", zap.Int64("advertisement_id", ad.IDValue()))
	return ad, nil
}

// UpdateAdvertisement replaces the advertisement's fields. The photo is optional.
func (c *Client) UpdateAdvertisement(ctx context.Context, id int64, draft domain.Draft) (domain.Advertisement, error) {
	const op = "update_advertisement"

	if err := draft.Validate(true); err != nil {
		return domain.Advertisement{}, &domain.RequestError{Kind: domain.KindValidation, Op: op, Err: err}
	}

	ad, err := c.submitDraft(ctx, op, http.MethodPut, fmt.Sprintf("/advertisements/%d", id), draft)
	if err != nil {
		if isClientError(err) {
			return domain.Advertisement{}, domain.Retag(err, domain.KindValidation, op)
		}
		return domain.Advertisement{}, domain.Retag(err, domain.KindMutation, op)
	}

	c.logger.Info("Advertisement updated", zap.Int64("advertisement_id", id))
	return ad, nil
}

// DeleteAdvertisement removes the advertisement on the service.
func (c *Client) DeleteAdvertisement(ctx context.Context, id int64) error {
	const op = "delete_advertisement"

	err := c.sender.Send(ctx, Request{
		Op:     op,
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/advertisements/%d", id),
	}, nil)
	if err != nil {
		return domain.Retag(err, domain.KindMutation, op)
	}
	c.logger.Info("Advertisement deleted", zap.Int64("advertisement_id", id))
	return nil
}

// MarkAdvertisementSold asks the service to move the advertisement to sold.
// Legality of the transition is decided by the service.
func (c *Client) MarkAdvertisementSold(ctx context.Context, id int64) error {
	const op = "mark_advertisement_sold"

	err := c.sender.Send(ctx, Request{
		Op:     op,
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/advertisements/%d/sold", id),
	}, nil)
	if err != nil {
		return domain.Retag(err, domain.KindMutation, op)
	}
	c.logger.Info("Advertisement marked as sold", zap.Int64("advertisement_id", id))
	return nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var resp categoriesDTO
	err := c.sender.Send(ctx, Request{
		Op:     "list_categories",
		Method: http.MethodGet,
		Path:   "/categories",
		Schema: SchemaCategories,
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Category, 0, len(resp.Categories))
	for _, d := range resp.Categories {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// ListBrands returns brands scoped to categoryID, or every brand when it is nil.
func (c *Client) ListBrands(ctx context.Context, categoryID *int64) ([]domain.Brand, error) {
	query := map[string]string{}
	if categoryID != nil {
		query["category_id"] = strconv.FormatInt(*categoryID, 10)
	}

	var resp brandsDTO
	err := c.sender.Send(ctx, Request{
		Op:     "list_brands",
		Method: http.MethodGet,
		Path:   "/brands",
		Query:  query,
		Schema: SchemaBrands,
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Brand, 0, len(resp.Brands))
	for _, d := range resp.Brands {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// ValidateInitData asks the service to verify the host init-data.
func (c *Client) ValidateInitData(ctx context.Context, initData string) (domain.AuthResult, error) {
	var resp authResponseDTO
	err := c.sender.Send(ctx, Request{
		Op:     "validate_init_data",
		Method: http.MethodPost,
		Path:   "/auth/validate",
		JSON:   authRequestDTO{InitData: initData},
		Schema: SchemaAuthValidate,
	}, &resp)
	if err != nil {
		return domain.AuthResult{}, err
	}

	result := domain.AuthResult{Valid: resp.Valid}
	if resp.User != nil {
		result.User = &domain.HostUser{
			ID:        resp.User.ID,
			FirstName: deref(resp.User.FirstName),
			Username:  deref(resp.User.Username),
		}
	}
	return result, nil
}

func (c *Client) submitDraft(ctx context.Context, op, method, path string, draft domain.Draft) (domain.Advertisement, error) {
	body := &MultipartBody{
		Fields: []FormField{
			{Name: "user_id", Value: strconv.FormatInt(draft.UserID, 10)},
			{Name: "category_id", Value: strconv.FormatInt(draft.CategoryID, 10)},
			{Name: "brand_id", Value: strconv.FormatInt(draft.BrandID, 10)},
			{Name: "model", Value: draft.Model},
			{Name: "price", Value: strconv.FormatInt(draft.Price, 10)},
			{Name: "description", Value: draft.Description},
			{Name: "city", Value: draft.City},
			{Name: "contact_phone", Value: draft.ContactPhone},
		},
	}
	if draft.Photo != nil && len(draft.Photo.Data) > 0 {
		filename := draft.Photo.Filename
		if filename == "" {
			filename = "photo.jpg"
		}
		body.File = &FilePart{
			FieldName:   "photo",
			Filename:    filename,
			ContentType: draft.Photo.ContentType,
			Data:        draft.Photo.Data,
		}
	}

	var resp advertisementEnvelopeDTO
	err := c.sender.Send(ctx, Request{
		Op:        op,
		Method:    method,
		Path:      path,
		Multipart: body,
		Schema:    SchemaAdvertisementEnvelope,
	}, &resp)
	if err != nil {
		return domain.Advertisement{}, err
	}
	if resp.Advertisement == nil {
		return domain.Advertisement{}, &domain.RequestError{
			Kind:   domain.KindFetch,
			Op:     op,
			Method: method,
			Path:   path,
			Err:    errors.New("response carries no advertisement"),
		}
	}
	return resp.Advertisement.toDomain(), nil
}

// isClientError reports whether the service answered with a 4xx status.
func isClientError(err error) bool {
	code := domain.StatusCodeOf(err)
	return code >= 400 && code < 500
}
