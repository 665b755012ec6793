package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-client/internal/listing/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAdvertisement = `{
	"id": 7,
	"model": "iPhone 14 Pro",
	"price": 12000000,
	"description": "Like new",
	"phone": "+998901234567",
	"city": "Tashkent",
	"contact_phone": "+998901234567",
	"photo_path": null,
	"status": "approved",
	"created_at": "2024-05-01T10:20:30Z",
	"category_name": "Smartphones",
	"brand_name": "Apple",
	"username": "seller"
}`

type fakeService struct {
	router *chi.Mux
	server *httptest.Server
	hits   atomic.Int32
}

func newFakeService(t *testing.T, register func(r chi.Router)) *fakeService {
	t.Helper()
	fs := &fakeService{router: chi.NewRouter()}
	fs.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fs.hits.Add(1)
			next.ServeHTTP(w, r)
		})
	})
	fs.router.Route("/api", register)
	fs.server = httptest.NewServer(fs.router)
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *fakeService) client(t *testing.T, timeout time.Duration) *Client {
	t.Helper()
	p, err := NewPipeline(PipelineConfig{BaseURL: fs.server.URL + "/api", Timeout: timeout}, staticCredentials{value: "init"}, nil, nil)
	require.NoError(t, err)
	return NewClient(p, nil)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func validDraft() domain.Draft {
	return domain.Draft{
		UserID:       42,
		CategoryID:   1,
		BrandID:      3,
		Model:        "Galaxy S23",
		Price:        9000000,
		Description:  "Boxed",
		City:         "Samarkand",
		ContactPhone: "+998 90 123-45-67",
		Photo:        &domain.Photo{Filename: "front.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}},
	}
}

func TestClient_ListAdvertisements(t *testing.T) {
	var query map[string]string
	fs := newFakeService(t, func(r chi.Router) {
		r.Get("/advertisements", func(w http.ResponseWriter, req *http.Request) {
			query = map[string]string{}
			for k := range req.URL.Query() {
				query[k] = req.URL.Query().Get(k)
			}
			writeJSON(w, http.StatusOK, `{"advertisements":[`+sampleAdvertisement+`],"total":1,"page":1,"totalPages":1}`)
		})
	})

	res, err := fs.client(t, time.Second).ListAdvertisements(context.Background(), domain.ListQuery{
		Page:   1,
		Limit:  20,
		Status: domain.StatusApproved,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"page": "1", "limit": "20", "status": "approved"}, query)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.TotalPages)

	ad := res.Items[0]
	assert.True(t, ad.HasID(7))
	assert.Equal(t, "iPhone 14 Pro", ad.Model)
	assert.Equal(t, int64(12000000), ad.Price)
	assert.Equal(t, "Smartphones", ad.CategoryName)
	assert.Equal(t, "Apple", ad.BrandName)
	assert.Equal(t, domain.StatusApproved, ad.Status)
	assert.Nil(t, ad.PhotoPath)
	require.NotNil(t, ad.Username)
	assert.Equal(t, "seller", *ad.Username)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC), ad.CreatedAt)
}

func TestClient_ListAdvertisements_FailureIsFetchError(t *testing.T) {
	fs := newFakeService(t, func(r chi.Router) {
		r.Get("/advertisements", func(w http.ResponseWriter, req *http.Request) {
			select {
			case <-req.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})
	})

	_, err := fs.client(t, 50*time.Millisecond).ListAdvertisements(context.Background(), domain.ListQuery{})
	require.Error(t, err)
	assert.Equal(t, domain.KindFetch, domain.KindOf(err))
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_GetUserAdvertisements(t *testing.T) {
	var status string
	fs := newFakeService(t, func(r chi.Router) {
		r.Get("/users/{userID}/advertisements", func(w http.ResponseWriter, req *http.Request) {
			status = req.URL.Query().Get("status")
			if chi.URLParam(req, "userID") == "5" {
				writeJSON(w, http.StatusOK, `{"advertisements":null}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"advertisements":[`+sampleAdvertisement+`]}`)
		})
	})
	c := fs.client(t, time.Second)

	ads, err := c.GetUserAdvertisements(context.Background(), 42, domain.StatusSold)
	require.NoError(t, err)
	assert.Len(t, ads, 1)
	assert.Equal(t, "sold", status)

	empty, err := c.GetUserAdvertisements(context.Background(), 5, "")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestClient_GetUserAdvertisements_UnknownUser(t *testing.T) {
	fs := newFakeService(t, func(r chi.Router) {})

	_, err := fs.client(t, time.Second).GetUserAdvertisements(context.Background(), 0, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.ErrorIs(t, err, domain.ErrUserUnknown)
	assert.Equal(t, int32(0), fs.hits.Load())
}

func TestClient_CreateAdvertisement_SendsMultipart(t *testing.T) {
	var fields map[string]string
	var photo []byte
	var photoName string
	fs := newFakeService(t, func(r chi.Router) {
		r.Post("/advertisements", func(w http.ResponseWriter, req *http.Request) {
			require.NoError(t, req.ParseMultipartForm(1<<20))
			fields = map[string]string{}
			for k, v := range req.MultipartForm.Value {
				fields[k] = v[0]
			}
			f, hdr, err := req.FormFile("photo")
			require.NoError(t, err)
			defer f.Close()
			photo, _ = io.ReadAll(f)
			photoName = hdr.Filename
			writeJSON(w, http.StatusCreated, `{"advertisement":`+sampleAdvertisement+`}`)
		})
	})

	ad, err := fs.client(t, time.Second).CreateAdvertisement(context.Background(), validDraft())
	require.NoError(t, err)
	assert.True(t, ad.HasID(7))

	assert.Equal(t, map[string]string{
		"user_id":       "42",
		"category_id":   "1",
		"brand_id":      "3",
		"model":         "Galaxy S23",
		"price":         "9000000",
		"description":   "Boxed",
		"city":          "Samarkand",
		"contact_phone": "+998 90 123-45-67",
	}, fields)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, photo)
	assert.Equal(t, "front.jpg", photoName)
}

func TestClient_CreateAdvertisement_InvalidDraftSendsNothing(t *testing.T) {
	fs := newFakeService(t, func(r chi.Router) {})
	c := fs.client(t, time.Second)

	draft := validDraft()
	draft.Photo = nil
	_, err := c.CreateAdvertisement(context.Background(), draft)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrMissingPhoto)

	draft = validDraft()
	draft.UserID = 0
	_, err = c.CreateAdvertisement(context.Background(), draft)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrUserUnknown)

	assert.Equal(t, int32(0), fs.hits.Load())
}

func TestClient_CreateAdvertisement_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind domain.ErrorKind
	}{
		{name: "rejected fields", status: http.StatusBadRequest, wantKind: domain.KindValidation},
		{name: "server failure", status: http.StatusInternalServerError, wantKind: domain.KindFetch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeService(t, func(r chi.Router) {
				r.Post("/advertisements", func(w http.ResponseWriter, req *http.Request) {
					writeJSON(w, tt.status, `{"error":"Failed to create advertisement"}`)
				})
			})
			_, err := fs.client(t, time.Second).CreateAdvertisement(context.Background(), validDraft())
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.Equal(t, tt.status, domain.StatusCodeOf(err))
		})
	}
}

func TestClient_UpdateAdvertisement(t *testing.T) {
	var hadPhoto bool
	fs := newFakeService(t, func(r chi.Router) {
		r.Put("/advertisements/{id}", func(w http.ResponseWriter, req *http.Request) {
			if chi.URLParam(req, "id") == "500" {
				writeJSON(w, http.StatusBadGateway, `{"error":"upstream"}`)
				return
			}
			require.NoError(t, req.ParseMultipartForm(1<<20))
			_, hadPhoto = req.MultipartForm.File["photo"]
			writeJSON(w, http.StatusOK, `{"advertisement":`+sampleAdvertisement+`}`)
		})
	})
	c := fs.client(t, time.Second)

	draft := validDraft()
	draft.Photo = nil
	ad, err := c.UpdateAdvertisement(context.Background(), 7, draft)
	require.NoError(t, err)
	assert.True(t, ad.HasID(7))
	assert.False(t, hadPhoto)

	_, err = c.UpdateAdvertisement(context.Background(), 500, draft)
	require.Error(t, err)
	assert.Equal(t, domain.KindMutation, domain.KindOf(err))
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestClient_DeleteAndMarkSold_FailuresAreMutationErrors(t *testing.T) {
	fs := newFakeService(t, func(r chi.Router) {
		r.Delete("/advertisements/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusInternalServerError, `{"error":"boom"}`)
		})
		r.Post("/advertisements/{id}/sold", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusConflict, `{"error":"already sold"}`)
		})
	})
	c := fs.client(t, time.Second)

	err := c.DeleteAdvertisement(context.Background(), 1)
	assert.Equal(t, domain.KindMutation, domain.KindOf(err))
	assert.ErrorIs(t, err, domain.ErrMutation)

	err = c.MarkAdvertisementSold(context.Background(), 1)
	assert.Equal(t, domain.KindMutation, domain.KindOf(err))
	assert.Equal(t, http.StatusConflict, domain.StatusCodeOf(err))
}

func TestClient_MarkAdvertisementSold_Success(t *testing.T) {
	var path string
	fs := newFakeService(t, func(r chi.Router) {
		r.Post("/advertisements/{id}/sold", func(w http.ResponseWriter, req *http.Request) {
			path = req.URL.Path
			w.WriteHeader(http.StatusOK)
		})
	})

	require.NoError(t, fs.client(t, time.Second).MarkAdvertisementSold(context.Background(), 9))
	assert.Equal(t, "/api/advertisements/9/sold", path)
}

func TestClient_ReferenceData(t *testing.T) {
	var brandScope string
	fs := newFakeService(t, func(r chi.Router) {
		r.Get("/categories", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, `{"categories":[{"id":1,"name_ru":"Смартфоны","name_uz":"Smartfonlar"}]}`)
		})
		r.Get("/brands", func(w http.ResponseWriter, req *http.Request) {
			brandScope = req.URL.Query().Get("category_id")
			writeJSON(w, http.StatusOK, `{"brands":[{"id":1,"name":"Apple"},{"id":2,"name":"Samsung"}]}`)
		})
	})
	c := fs.client(t, time.Second)

	cats, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Smartfonlar", cats[0].Name("uz"))
	assert.Equal(t, "Смартфоны", cats[0].Name("ru"))

	brands, err := c.ListBrands(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, brands, 2)
	assert.Empty(t, brandScope)

	categoryID := int64(1)
	_, err = c.ListBrands(context.Background(), &categoryID)
	require.NoError(t, err)
	assert.Equal(t, "1", brandScope)
}

func TestClient_ValidateInitData(t *testing.T) {
	fs := newFakeService(t, func(r chi.Router) {
		r.Post("/auth/validate", func(w http.ResponseWriter, req *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			if body["initData"] != "good" {
				writeJSON(w, http.StatusOK, `{"valid":false}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"valid":true,"user":{"id":42,"first_name":"Aziz","username":"aziz"}}`)
		})
	})
	c := fs.client(t, time.Second)

	res, err := c.ValidateInitData(context.Background(), "good")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	require.NotNil(t, res.User)
	assert.Equal(t, domain.HostUser{ID: 42, FirstName: "Aziz", Username: "aziz"}, *res.User)

	res, err = c.ValidateInitData(context.Background(), "forged")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Nil(t, res.User)
}

func TestParseCreatedAt(t *testing.T) {
	assert.True(t, parseCreatedAt("").IsZero())
	assert.True(t, parseCreatedAt("yesterday").IsZero())
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), parseCreatedAt("2024-01-02 03:04:05"))
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), parseCreatedAt("2024-01-02T03:04:05"))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, isClientError(&domain.RequestError{Kind: domain.KindFetch, StatusCode: 422}))
	assert.False(t, isClientError(&domain.RequestError{Kind: domain.KindFetch, StatusCode: 503}))
	assert.False(t, isClientError(errors.New("plain")))
}
