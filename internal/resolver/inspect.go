package resolver

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
)

// Inspection is the raw view of one manual-redirect GET.
type Inspection struct {
	URL        string            `json:"url"`
	StatusCode int               `json:"status"`
	Location   string            `json:"location,omitempty"`
	FinalURL   string            `json:"finalUrl"`
	Headers    map[string]string `json:"headers"`
}

// Inspect performs the same single hop as Expand but returns what the
// server answered instead of interpreting it.
func (r *Resolver) Inspect(ctx context.Context, rawURL string) (Inspection, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return Inspection{}, domain.NewResolutionError(domain.KindInvalidInput, rawURL, nil)
	}

	profile := r.Profile()
	resp, cancel, err := r.do(ctx, rawURL, profile.HeadersFor(domain.PlatformOther), profile)
	if err != nil {
		return Inspection{}, err
	}
	defer cancel()
	defer drainAndClose(resp.Body)

	in := Inspection{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		Headers:    flattenHeaders(resp.Header),
	}
	if loc, err := resp.Location(); err == nil {
		in.Location = loc.String()
	}
	return in, nil
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return out
}
