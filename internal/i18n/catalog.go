// Package i18n resolves message keys to localized text. Handlers pick a key
// for a failure kind; rendering happens here, never in the core services.
package i18n

import "golang.org/x/text/language"

// Message keys used across the API.
const (
	KeyAuthenticationFailure         = "authentication_failure"
	KeyInactiveAuthenticationFailure = "inactive_authentication_failure"
	KeyUnauthorizedUserUpdate        = "unauthorized_user_update"
	KeyValidationFailure             = "validation_failure"
	KeyUserNotFound                  = "user_not_found"
	KeyUsernameSize                  = "username_size"
	KeyEmailInvalid                  = "email_invalid"
	KeyEmailInUse                    = "email_inuse"
	KeyUsernameInUse                 = "username_inuse"
	KeyProfileImageSize              = "profile_image_size"
	KeyUnsupportedImageFile          = "unsupported_image_file"
	KeyInternalError                 = "internal_error"
)

var english = map[string]string{
	KeyAuthenticationFailure:         "Incorrect credentials",
	KeyInactiveAuthenticationFailure: "Account is inactive",
	KeyUnauthorizedUserUpdate:        "You are not authorized to update user",
	KeyValidationFailure:             "Validation Failure",
	KeyUserNotFound:                  "User not found",
	KeyUsernameSize:                  "Must have min 4 and max 32 characters",
	KeyEmailInvalid:                  "E-mail is not valid",
	KeyEmailInUse:                    "E-mail in use",
	KeyUsernameInUse:                 "Username in use",
	KeyProfileImageSize:              "Your profile image cannot be bigger than 2MB",
	KeyUnsupportedImageFile:          "Only JPEG or PNG files are allowed",
	KeyInternalError:                 "Unexpected error occurred",
}

var hindi = map[string]string{
	KeyAuthenticationFailure:         "गलत क्रेडेंशियल्स",
	KeyInactiveAuthenticationFailure: "खाता निष्क्रिय है",
	KeyUnauthorizedUserUpdate:        "आप उपयोगकर्ता को अपडेट करने के लिए अधिकृत नहीं हैं",
	KeyValidationFailure:             "सत्यापन विफलता",
	KeyUserNotFound:                  "उपयोगकर्ता नहीं मिला",
	KeyUsernameSize:                  "न्यूनतम 4 और अधिकतम 32 वर्ण होने चाहिए",
	KeyEmailInvalid:                  "ई-मेल मान्य नहीं है",
	KeyEmailInUse:                    "ई-मेल पहले से उपयोग में है",
	KeyUsernameInUse:                 "उपयोगकर्ता नाम पहले से उपयोग में है",
	KeyProfileImageSize:              "आपकी प्रोफ़ाइल छवि 2MB से बड़ी नहीं हो सकती",
	KeyUnsupportedImageFile:          "केवल JPEG या PNG फ़ाइलों की अनुमति है",
	KeyInternalError:                 "अप्रत्याशित त्रुटि हुई",
}

// Catalog negotiates a supported locale and resolves message keys.
type Catalog struct {
	matcher language.Matcher
	tables  []map[string]string
}

// NewCatalog builds the catalog with the supported locales. English is the
// fallback for unsupported or absent Accept-Language values.
func NewCatalog() *Catalog {
	return &Catalog{
		matcher: language.NewMatcher([]language.Tag{language.English, language.Hindi}),
		tables:  []map[string]string{english, hindi},
	}
}

// Resolve returns the localized text for key given an Accept-Language header
// value. Unknown keys fall back to the key itself so a missing translation
// never hides a failure.
func (c *Catalog) Resolve(acceptLanguage, key string) string {
	_, index := language.MatchStrings(c.matcher, acceptLanguage)
	table := c.tables[index]
	if msg, ok := table[key]; ok {
		return msg
	}
	return key
}
