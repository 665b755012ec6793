// Package fallback holds the static catalog shown when the remote service cannot be reached.
// Its records are never merged with live data and never sent to the service.
package fallback

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
)

type record struct {
	id           int64
	model        string
	price        int64
	description  string
	phone        string
	city         string
	photo        string
	createdAt    string
	categoryName string
	brandName    string
	username     string
}

var catalog = []record{
	{1, "iPhone 14 Pro", 15000000, "Excellent condition, 256GB storage, no scratches", "+998901234567", "Tashkent",
		"https://via.placeholder.com/300x200?text=iPhone+14+Pro", "2024-01-15T10:30:00Z", "Smartphones", "Apple", "seller1"},
	{2, "Samsung Galaxy S23", 12000000, "Brand new, unopened box with warranty", "+998901234568", "Samarkand",
		"https://via.placeholder.com/300x200?text=Galaxy+S23", "2024-01-10T15:45:00Z", "Smartphones", "Samsung", "seller2"},
	{3, "Xiaomi Redmi Note 12", 4500000, "Good condition, 128GB, minor scratches", "+998901234569", "Bukhara",
		"https://via.placeholder.com/300x200?text=Redmi+Note+12", "2024-01-08T12:20:00Z", "Smartphones", "Xiaomi", "seller3"},
}

var favorites = []record{
	{4, "iPhone 13", 13000000, "Perfect condition, 512GB, with original box", "+998901234570", "Tashkent",
		"https://via.placeholder.com/300x200?text=iPhone+13", "2024-01-12T14:20:00Z", "Smartphones", "Apple", "seller4"},
	{5, "Samsung Galaxy A54", 6500000, "Excellent condition, 256GB storage, no issues", "+998901234571", "Samarkand",
		"https://via.placeholder.com/300x200?text=Galaxy+A54", "2024-01-09T11:30:00Z", "Smartphones", "Samsung", "seller5"},
}

// defaultOwner names the owner of the management fallback when the host user has no username.
const defaultOwner = "user"

// Source serves fresh copies of the static records on every call.
type Source struct{}

// NewSource returns the static fallback source.
func NewSource() *Source {
	return &Source{}
}

// Catalog returns the browsing fallback.
func (s *Source) Catalog() []domain.Advertisement {
	return build(catalog)
}

// UserCatalog returns the management fallback: a single listing owned by username.
func (s *Source) UserCatalog(username string) []domain.Advertisement {
	ad := catalog[0]
	ad.photo = "https://via.placeholder.com/280x200?text=iPhone+14+Pro"
	ad.username = username
	if ad.username == "" {
		ad.username = defaultOwner
	}
	return build([]record{ad})
}

// Favorites returns the seeded favorites set.
func (s *Source) Favorites() []domain.Advertisement {
	return build(favorites)
}

func (s *Source) Categories() []domain.Category {
	return []domain.Category{
		{ID: 1, NameRU: "Смартфоны", NameUZ: "Smartfonlar"},
		{ID: 2, NameRU: "Планшеты", NameUZ: "Planshetlar"},
	}
}

func (s *Source) Brands() []domain.Brand {
	return []domain.Brand{
		{ID: 1, Name: "Apple"},
		{ID: 2, Name: "Samsung"},
		{ID: 3, Name: "Xiaomi"},
		{ID: 4, Name: "Huawei"},
		{ID: 5, Name: "OPPO"},
		{ID: 6, Name: "Vivo"},
	}
}

func build(records []record) []domain.Advertisement {
	out := make([]domain.Advertisement, 0, len(records))
	for _, r := range records {
		id := r.id
		photo := r.photo
		username := r.username
		createdAt, _ := time.Parse(time.RFC3339, r.createdAt)
		out = append(out, domain.Advertisement{
			ID:           &id,
			CategoryName: r.categoryName,
			BrandName:    r.brandName,
			Model:        r.model,
			Price:        r.price,
			Description:  r.description,
			City:         r.city,
			ContactPhone: r.phone,
			Phone:        r.phone,
			PhotoPath:    &photo,
			Username:     &username,
			Status:       domain.StatusApproved,
			CreatedAt:    createdAt,
		})
	}
	return out
}
