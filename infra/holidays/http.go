package holidays

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/canada7700/finish-line-calendar-app-sub000/auth"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

// maxFeedBytes caps a holiday feed response.
const maxFeedBytes = 1 << 20

// HTTP fetches holidays from a JSON or YAML feed. When Auth is set every
// request carries a client-credentials bearer token.
type HTTP struct {
	URL    string
	Client *http.Client
	Auth   *auth.ClientCred
}

// NewHTTP builds a feed source. Credentials are only used when conf is
// enabled.
func NewHTTP(url string, conf auth.Conf, timeout time.Duration) *HTTP {
	h := &HTTP{URL: url, Client: &http.Client{Timeout: timeout}}
	if conf.Enabled() {
		h.Auth = auth.NewClientCred(conf)
	}
	return h
}

func (h *HTTP) FetchHolidays(ctx context.Context) ([]model.Holiday, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml")
	if h.Auth != nil {
		if err := h.Auth.SetAuthHeader(req); err != nil {
			return nil, fmt.Errorf("holiday feed auth: %w", err)
		}
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holiday feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday feed %s: unexpected status %d", h.URL, resp.StatusCode)
	}
	return Decode(io.LimitReader(resp.Body, maxFeedBytes), contentFormat(resp.Header.Get("Content-Type"), h.URL))
}

func contentFormat(contentType, url string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "yaml"):
		return "yaml"
	case strings.Contains(ct, "json"):
		return "json"
	default:
		return formatOf(url)
	}
}
