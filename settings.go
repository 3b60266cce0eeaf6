package authrx

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// ActionCodeSettings carries the continue-URL and platform hints attached to
// out-of-band action emails (sign-in links, password resets).
type ActionCodeSettings struct {
	// URL is the continue URL the action email links back to.
	URL string
	// HandleCodeInApp marks the code as consumable only inside the
	// application, never on a hosted page. Required for sign-in links.
	HandleCodeInApp       bool
	IOSBundleID           string
	AndroidPackageName    string
	AndroidMinimumVersion string
	AndroidInstallApp     bool
	DynamicLinkDomain     string
}

// Validate enforces the constraints the identity backend would reject anyway,
// so malformed settings fail before a network round trip.
func (s ActionCodeSettings) Validate() error {
	if (s.AndroidMinimumVersion != "" || s.AndroidInstallApp) && s.AndroidPackageName == "" {
		return errors.New("android options require a package name")
	}

	return validation.ValidateStruct(&s,
		validation.Field(&s.URL, validation.Required, is.URL),
	)
}
