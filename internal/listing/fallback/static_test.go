package fallback

import (
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_CatalogIsWellFormed(t *testing.T) {
	ads := NewSource().Catalog()
	require.Len(t, ads, 3)

	seen := map[int64]bool{}
	for _, ad := range ads {
		require.NotNil(t, ad.ID)
		assert.False(t, seen[*ad.ID], "duplicate id %d", *ad.ID)
		seen[*ad.ID] = true

		assert.Equal(t, domain.StatusApproved, ad.Status)
		assert.True(t, domain.IsKnownCity(ad.City), ad.City)
		assert.True(t, domain.IsPhoneNumber(ad.ContactPhone), ad.ContactPhone)
		assert.GreaterOrEqual(t, ad.Price, int64(0))
		assert.False(t, ad.CreatedAt.IsZero())
	}
	assert.Equal(t, []string{"iPhone 14 Pro", "Samsung Galaxy S23", "Xiaomi Redmi Note 12"},
		[]string{ads[0].Model, ads[1].Model, ads[2].Model})
}

func TestSource_ReturnsFreshCopies(t *testing.T) {
	s := NewSource()
	first := s.Catalog()
	first[0].Status = domain.StatusSold
	*first[0].ID = 99
	first[1].Model = "changed"

	second := s.Catalog()
	assert.Equal(t, domain.StatusApproved, second[0].Status)
	assert.True(t, second[0].HasID(1))
	assert.Equal(t, "Samsung Galaxy S23", second[1].Model)
}

func TestSource_UserCatalog(t *testing.T) {
	s := NewSource()

	ads := s.UserCatalog("aziz")
	require.Len(t, ads, 1)
	require.NotNil(t, ads[0].Username)
	assert.Equal(t, "aziz", *ads[0].Username)

	anon := s.UserCatalog("")
	assert.Equal(t, "user", *anon[0].Username)
}

func TestSource_FavoritesAndReferenceData(t *testing.T) {
	s := NewSource()

	favs := s.Favorites()
	require.Len(t, favs, 2)
	assert.True(t, favs[0].HasID(4))
	assert.True(t, favs[1].HasID(5))

	assert.Len(t, s.Categories(), 2)
	assert.Equal(t, "Planshetlar", s.Categories()[1].Name("uz"))
	assert.Len(t, s.Brands(), 6)
}
