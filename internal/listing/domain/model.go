package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// --- Advertisement Status ---

// Status is the moderation/lifecycle state of an advertisement.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusSold     Status = "sold"
)

// transitions lists the permitted next states for every status.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusSold},
	StatusRejected: nil,
	StatusSold:     nil,
}

// IsValid checks if the Status is one of the defined constants.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// CanTransitionTo reports whether the workflow permits moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus converts a raw status string, rejecting unknown values.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}
	return s, nil
}

// --- Advertisement Entity ---

// Advertisement is a single marketplace listing as the remote service reports it.
// ID is nil only for drafts that the service has not created yet.
type Advertisement struct {
	ID           *int64
	CategoryName string
	BrandName    string
	Model        string
	Price        int64 // smallest currency unit
	Description  string
	City         string
	ContactPhone string
	Phone        string
	PhotoPath    *string
	Username     *string
	Status       Status
	CreatedAt    time.Time
}

// IDValue returns the assigned id or 0 for unsaved drafts.
func (a Advertisement) IDValue() int64 {
	if a.ID == nil {
		return 0
	}
	return *a.ID
}

// HasID reports whether the advertisement carries the given service-assigned id.
func (a Advertisement) HasID(id int64) bool {
	return a.ID != nil && *a.ID == id
}

// Clone returns a deep copy so callers never share pointer fields with the working set.
func (a Advertisement) Clone() Advertisement {
	out := a
	if a.ID != nil {
		id := *a.ID
		out.ID = &id
	}
	if a.PhotoPath != nil {
		p := *a.PhotoPath
		out.PhotoPath = &p
	}
	if a.Username != nil {
		u := *a.Username
		out.Username = &u
	}
	return out
}

// CloneAll deep-copies a slice of advertisements. A nil input yields an empty slice.
func CloneAll(ads []Advertisement) []Advertisement {
	out := make([]Advertisement, len(ads))
	for i, ad := range ads {
		out[i] = ad.Clone()
	}
	return out
}

// Cities is the enumerated set of cities an advertisement may be placed in.
var Cities = []string{
	"Tashkent", "Samarkand", "Bukhara", "Andijan", "Namangan",
	"Fergana", "Nukus", "Urgench", "Termez", "Qarshi",
}

// IsKnownCity reports whether city belongs to Cities.
func IsKnownCity(city string) bool {
	for _, c := range Cities {
		if c == city {
			return true
		}
	}
	return false
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// IsPhoneNumber reports whether s has a phone-number shape, ignoring spaces, dashes and parentheses.
func IsPhoneNumber(s string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(s)
	return phonePattern.MatchString(cleaned)
}

// --- Reference Entities ---

type Category struct {
	ID     int64
	NameRU string
	NameUZ string
}

// Name returns the category name for lang ("ru" or "uz"), defaulting to Russian.
func (c Category) Name(lang string) string {
	if lang == "uz" && c.NameUZ != "" {
		return c.NameUZ
	}
	return c.NameRU
}

type Brand struct {
	ID   int64
	Name string
}

// --- Remote Query & Results ---

// ListQuery scopes a remote listing call. Zero values are omitted from the request.
type ListQuery struct {
	Page     int
	Limit    int
	Category string
	Brand    string
	City     string
	Status   Status
}

// ListResult mirrors the service's own paging envelope.
type ListResult struct {
	Items      []Advertisement
	Total      int
	Page       int
	TotalPages int
}

// --- Drafts ---

// Photo is the binary payload attached to a create or update call.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Draft carries every field the service needs to create or replace an advertisement.
type Draft struct {
	UserID       int64
	CategoryID   int64
	BrandID      int64
	Model        string
	Price        int64
	Description  string
	City         string
	ContactPhone string
	Photo        *Photo
}

// Validate checks required fields. Photo is required unless photoOptional is set (updates).
func (d Draft) Validate(photoOptional bool) error {
	var problems []string
	if d.CategoryID <= 0 {
		problems = append(problems, "category is required")
	}
	if d.BrandID <= 0 {
		problems = append(problems, "brand is required")
	}
	if strings.TrimSpace(d.Model) == "" {
		problems = append(problems, "model is required")
	}
	if d.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if strings.TrimSpace(d.Description) == "" {
		problems = append(problems, "description is required")
	}
	if d.City == "" {
		problems = append(problems, "city is required")
	} else if !IsKnownCity(d.City) {
		problems = append(problems, fmt.Sprintf("unknown city %q", d.City))
	}
	if d.ContactPhone == "" {
		problems = append(problems, "contact phone is required")
	} else if !IsPhoneNumber(d.ContactPhone) {
		problems = append(problems, "invalid phone number")
	}
	missingPhoto := !photoOptional && (d.Photo == nil || len(d.Photo.Data) == 0)

	switch {
	case missingPhoto && len(problems) > 0:
		return fmt.Errorf("%w: %s; %w", ErrValidation, strings.Join(problems, "; "), ErrMissingPhoto)
	case missingPhoto:
		return fmt.Errorf("%w: %w", ErrValidation, ErrMissingPhoto)
	case len(problems) > 0:
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// --- Client-side Filter ---

// All selects every category or status.
const All = "all"

// FilterCriteria is the ephemeral search/category/status selection of a view.
type FilterCriteria struct {
	Search   string
	Category string
	Status   string
}

// DefaultCriteria matches everything.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{Category: All, Status: All}
}

// --- Host Identity ---

type HostUser struct {
	ID        int64
	FirstName string
	Username  string
}

// AuthResult is the service's verdict on a host init-credential.
type AuthResult struct {
	Valid bool
	User  *HostUser
}
