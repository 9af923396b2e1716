// Package mwapi is a minimal read-only client for the wiki's query API.
// It is intentionally thin — only the three lookups the enrichment
// pipeline needs are implemented.
package mwapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is returned when the API answered but did not contain the
// requested entity (e.g. a private filter, or a log entry with no revision).
var ErrNotFound = errors.New("mwapi: not found")

// Client talks to a single wiki's api.php endpoint.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New returns a Client for baseURL with a 15-second timeout.
func New(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// FilterDescription fetches the human description of an abuse filter by id.
// Private filters come back as an empty list, reported as ErrNotFound.
func (c *Client) FilterDescription(ctx context.Context, id int) (string, error) {
	var out struct {
		Query struct {
			AbuseFilters []struct {
				ID          int    `json:"id"`
				Description string `json:"description"`
			} `json:"abusefilters"`
		} `json:"query"`
		Error *apiError `json:"error"`
	}
	params := url.Values{
		"action":     {"query"},
		"list":       {"abusefilters"},
		"abfstartid": {strconv.Itoa(id)},
		"abfendid":   {strconv.Itoa(id)},
		"abfprop":    {"id|description"},
	}
	if err := c.get(ctx, params, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("mwapi: abusefilters query: %s (%s)", out.Error.Info, out.Error.Code)
	}
	for _, f := range out.Query.AbuseFilters {
		if f.ID == id && f.Description != "" {
			return f.Description, nil
		}
	}
	return "", ErrNotFound
}

// RevisionForLogEntry resolves an abuse-log entry id to the revision it
// produced. Entries without an associated revision report ErrNotFound.
func (c *Client) RevisionForLogEntry(ctx context.Context, logID int64) (int64, error) {
	var out struct {
		Query struct {
			AbuseLog []struct {
				RevID int64 `json:"revid"`
			} `json:"abuselog"`
		} `json:"query"`
		Error *apiError `json:"error"`
	}
	params := url.Values{
		"action":   {"query"},
		"list":     {"abuselog"},
		"afllogid": {strconv.FormatInt(logID, 10)},
		"aflprop":  {"ids|revid"},
	}
	if err := c.get(ctx, params, &out); err != nil {
		return 0, err
	}
	if out.Error != nil {
		return 0, fmt.Errorf("mwapi: abuselog query: %s (%s)", out.Error.Info, out.Error.Code)
	}
	if len(out.Query.AbuseLog) == 0 || out.Query.AbuseLog[0].RevID == 0 {
		return 0, ErrNotFound
	}
	return out.Query.AbuseLog[0].RevID, nil
}

// Diff describes a revision compared against its immediate predecessor.
type Diff struct {
	// SizeDelta is the signed byte-size difference (new minus old).
	SizeDelta int
	// EditComment is the editor's edit summary on the revision.
	EditComment string
	// NewPage is set when the revision has no predecessor.
	NewPage bool
}

// CompareWithPrevious obtains the byte delta and edit comment of revID
// relative to the revision before it. A revision with no predecessor is
// reported as a new page, not an error.
func (c *Client) CompareWithPrevious(ctx context.Context, revID int64) (Diff, error) {
	var out struct {
		Compare *struct {
			FromSize    int    `json:"fromsize"`
			ToSize      int    `json:"tosize"`
			FromComment string `json:"fromcomment"`
		} `json:"compare"`
		Error *apiError `json:"error"`
	}
	params := url.Values{
		"action":     {"compare"},
		"fromrev":    {strconv.FormatInt(revID, 10)},
		"torelative": {"prev"},
		"prop":       {"size|comment|ids"},
	}
	if err := c.get(ctx, params, &out); err != nil {
		return Diff{}, err
	}
	if out.Error != nil {
		// Comparing the first revision of a page against "prev" fails with
		// one of these codes; that is the new-page signal.
		if out.Error.Code == "nosuchrevid" || out.Error.Code == "baddiff" {
			return Diff{NewPage: true}, nil
		}
		return Diff{}, fmt.Errorf("mwapi: compare: %s (%s)", out.Error.Info, out.Error.Code)
	}
	if out.Compare == nil {
		return Diff{}, ErrNotFound
	}
	// The request compares revID (from) against its predecessor (to).
	return Diff{
		SizeDelta:   out.Compare.FromSize - out.Compare.ToSize,
		EditComment: out.Compare.FromComment,
	}, nil
}

// get executes one API request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("mwapi: building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mwapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mwapi: HTTP %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mwapi: decoding response: %w", err)
	}
	return nil
}

// SiteName fetches the wiki's site name; used by the doctor command as a
// cheap reachability check.
func (c *Client) SiteName(ctx context.Context) (string, error) {
	var out struct {
		Query struct {
			General struct {
				SiteName string `json:"sitename"`
			} `json:"general"`
		} `json:"query"`
	}
	params := url.Values{
		"action": {"query"},
		"meta":   {"siteinfo"},
		"siprop": {"general"},
	}
	if err := c.get(ctx, params, &out); err != nil {
		return "", err
	}
	if out.Query.General.SiteName == "" {
		return "", ErrNotFound
	}
	return out.Query.General.SiteName, nil
}
