package restapi

import (
	"math"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
)

type advertisementDTO struct {
	ID           int64   `json:"id"`
	Model        string  `json:"model"`
	Price        float64 `json:"price"`
	Description  *string `json:"description"`
	Phone        *string `json:"phone"`
	City         *string `json:"city"`
	ContactPhone *string `json:"contact_phone"`
	PhotoPath    *string `json:"photo_path"`
	Status       string  `json:"status"`
	CreatedAt    *string `json:"created_at"`
	CategoryName *string `json:"category_name"`
	BrandName    *string `json:"brand_name"`
	Username     *string `json:"username"`
}

type advertisementListDTO struct {
	Advertisements []advertisementDTO `json:"advertisements"`
	Total          int                `json:"total"`
	Page           int                `json:"page"`
	TotalPages     int                `json:"totalPages"`
}

type advertisementEnvelopeDTO struct {
	Advertisement *advertisementDTO `json:"advertisement"`
}

type categoryDTO struct {
	ID     int64   `json:"id"`
	NameRU *string `json:"name_ru"`
	NameUZ *string `json:"name_uz"`
}

type categoriesDTO struct {
	Categories []categoryDTO `json:"categories"`
}

type brandDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type brandsDTO struct {
	Brands []brandDTO `json:"brands"`
}

type authRequestDTO struct {
	InitData string `json:"initData"`
}

type authResponseDTO struct {
	Valid bool `json:"valid"`
	User  *struct {
		ID        int64   `json:"id"`
		FirstName *string `json:"first_name"`
		Username  *string `json:"username"`
	} `json:"user"`
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseCreatedAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func (d advertisementDTO) toDomain() domain.Advertisement {
	id := d.ID
	return domain.Advertisement{
		ID:           &id,
		CategoryName: deref(d.CategoryName),
		BrandName:    deref(d.BrandName),
		Model:        d.Model,
		Price:        int64(math.Round(d.Price)),
		Description:  deref(d.Description),
		City:         deref(d.City),
		ContactPhone: deref(d.ContactPhone),
		Phone:        deref(d.Phone),
		PhotoPath:    nonEmpty(d.PhotoPath),
		Username:     nonEmpty(d.Username),
		Status:       domain.Status(d.Status),
		CreatedAt:    parseCreatedAt(deref(d.CreatedAt)),
	}
}

func toDomainAdvertisements(dtos []advertisementDTO) []domain.Advertisement {
	out := make([]domain.Advertisement, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out
}

func (d categoryDTO) toDomain() domain.Category {
	return domain.Category{ID: d.ID, NameRU: deref(d.NameRU), NameUZ: deref(d.NameUZ)}
}

func (d brandDTO) toDomain() domain.Brand {
	return domain.Brand{ID: d.ID, Name: d.Name}
}
