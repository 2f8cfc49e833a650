package handlers

import "time"

// CreateLinkRequest fields are untyped and optional at the schema level so
// that missing or wrongly typed values are reported by the registry as 400s.
// See createParams.
type CreateLinkRequest struct {
	Body struct {
		URL       any `doc:"The URL to shorten. http:// is assumed when no scheme is given" json:"url"                 required:"false"`
		Shortcode any `doc:"Custom alphanumeric code, 4 to 32 characters"                    json:"shortcode,omitempty" required:"false"`
		Validity  any `doc:"Minutes until the link expires. Omit for a permanent link"       json:"validity,omitempty"  required:"false"`
	}
}

type CreateLinkResponse struct {
	Location string `doc:"The short URL" header:"Location"`
	Body     struct {
		ShortURL    string     `doc:"The full short URL"                 example:"http://localhost:8888/abc123"       json:"shortUrl"`
		Shortcode   string     `doc:"The issued code"                    example:"abc123"                             json:"shortcode"`
		OriginalURL string     `doc:"The normalized destination"         example:"https://example.com/very/long/path" json:"originalUrl"`
		ExpiresAt   *time.Time `doc:"When the link expires, null if never"                                           json:"expiresAt"   nullable:"true"`
	}
}

type RedirectRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

type StatusResponse struct {
	Body struct {
		Status     string    `example:"ok"                    json:"status"`
		BaseURL    string    `example:"http://localhost:8888" json:"baseUrl"`
		Timestamp  time.Time `json:"timestamp"`
		TotalURLs  int64     `doc:"Stored links, expired ones included" json:"totalUrls"`
		ActiveURLs int64     `doc:"Links that still resolve"            json:"activeUrls"`
	}
}
