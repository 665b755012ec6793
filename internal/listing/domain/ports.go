package domain

import "context"

// CatalogClient is the typed, stateless façade over the remote catalog service.
// Every error it returns is a *RequestError.
type CatalogClient interface {
	ListAdvertisements(ctx context.Context, query ListQuery) (ListResult, error)
	GetUserAdvertisements(ctx context.Context, userID int64, status Status) ([]Advertisement, error)
	CreateAdvertisement(ctx context.Context, draft Draft) (Advertisement, error)
	UpdateAdvertisement(ctx context.Context, id int64, draft Draft) (Advertisement, error)
	DeleteAdvertisement(ctx context.Context, id int64) error
	MarkAdvertisementSold(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]Category, error)
	ListBrands(ctx context.Context, categoryID *int64) ([]Brand, error)
	ValidateInitData(ctx context.Context, initData string) (AuthResult, error)
}

// CredentialProvider exposes the host's opaque init-credential.
type CredentialProvider interface {
	// Credential returns the current credential and false when none is available.
	Credential() (string, bool)
}

// Host is the narrow slice of the host runtime the catalog core consumes.
type Host interface {
	CredentialProvider

	// CurrentUser returns the host user or false when the identity is unknown.
	CurrentUser() (HostUser, bool)

	// ShowAlert displays message; onDismiss may be nil.
	ShowAlert(message string, onDismiss func())

	// ShowConfirm asks the user to confirm; onResult is invoked at most once.
	// Implementations may call it synchronously or from another goroutine.
	ShowConfirm(message string, onResult func(confirmed bool))
}
