package profile

import (
	"errors"
	"fmt"
)

// Purpose is why the user makes cards; it picks the placeholder name.
type Purpose string

const (
	PurposePersonal Purpose = "PERSONAL"
	PurposeBusiness Purpose = "BUSINESS"
)

const (
	personalPlaceholder = "आपका नाम"
	businessPlaceholder = "आपका व्यवसाय"
)

var (
	// ErrInvalidPurpose is returned for purposes other than PERSONAL and BUSINESS.
	ErrInvalidPurpose = errors.New("purpose must be PERSONAL or BUSINESS")
	// ErrPhoneImmutable is returned when a save would change the stored phone.
	ErrPhoneImmutable = errors.New("profile phone cannot be changed")
)

// ParsePurpose validates a purpose string.
func ParsePurpose(s string) (Purpose, error) {
	switch p := Purpose(s); p {
	case PurposePersonal, PurposeBusiness:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPurpose, s)
	}
}

// DefaultName returns the placeholder display name for a purpose.
func (p Purpose) DefaultName() string {
	if p == PurposeBusiness {
		return businessPlaceholder
	}
	return personalPlaceholder
}

// Profile is the single local user's card identity.
type Profile struct {
	Phone        string  `json:"phone"`
	Purpose      Purpose `json:"purpose"`
	Name         string  `json:"name"`
	PhotoURI     string  `json:"photoUri,omitempty"`
	ShowDate     bool    `json:"showDate"`
	DateOverride string  `json:"dateOverride,omitempty"`

	// Premium-only card fields.
	About        string `json:"about,omitempty"`
	Contact      string `json:"contact,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// HasPremiumFields reports whether any premium-only field is filled in.
func (p Profile) HasPremiumFields() bool {
	return p.About != "" || p.Contact != "" || p.Organization != ""
}
