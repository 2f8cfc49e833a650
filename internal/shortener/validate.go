package shortener

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinCodeLength = 4
	MaxCodeLength = 32
)

var validate = validator.New()

// NormalizeURL trims whitespace and prefixes http:// when the URL has no http(s) scheme.
func NormalizeURL(rawURL string) string {
	u := strings.TrimSpace(rawURL)

	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "http://" + u
	}

	return u
}

// IsValidURL reports whether rawURL is a well-formed absolute URL with a host.
func IsValidURL(rawURL string) bool {
	if err := validate.Var(rawURL, "required,url"); err != nil {
		return false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return u.IsAbs() && u.Host != ""
}

// IsValidCode reports whether code is usable as a custom shortcode.
func IsValidCode(code string) bool {
	return validate.Var(code, "required,alphanum,min=4,max=32") == nil
}

// codeLengthInBounds counts characters, not bytes.
func codeLengthInBounds(code string) bool {
	n := utf8.RuneCountInString(code)

	return n >= MinCodeLength && n <= MaxCodeLength
}
