package mwapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// apiServer fakes api.php, routing on the "list"/"action" query params.
func apiServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-agent")
}

func TestFilterDescription(t *testing.T) {
	c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("list") != "abusefilters" || q.Get("abfstartid") != "42" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"query":{"abusefilters":[{"id":42,"description":"Possible vandalism"}]}}`)
	})

	desc, err := c.FilterDescription(context.Background(), 42)
	if err != nil {
		t.Fatalf("FilterDescription: %v", err)
	}
	if desc != "Possible vandalism" {
		t.Errorf("description = %q", desc)
	}
}

func TestFilterDescriptionPrivateFilter(t *testing.T) {
	c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"abusefilters":[]}}`)
	})

	_, err := c.FilterDescription(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for private filter, got %v", err)
	}
}

func TestRevisionForLogEntry(t *testing.T) {
	c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("afllogid") != "555" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"query":{"abuselog":[{"revid":999}]}}`)
	})

	rev, err := c.RevisionForLogEntry(context.Background(), 555)
	if err != nil {
		t.Fatalf("RevisionForLogEntry: %v", err)
	}
	if rev != 999 {
		t.Errorf("revid = %d, want 999", rev)
	}
}

func TestRevisionForLogEntryNoRevision(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty list", `{"query":{"abuselog":[]}}`},
		{"zero revid", `{"query":{"abuselog":[{"revid":0}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			_, err := c.RevisionForLogEntry(context.Background(), 555)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestCompareWithPrevious(t *testing.T) {
	c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "compare" || q.Get("fromrev") != "999" || q.Get("torelative") != "prev" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"compare":{"fromsize":1250,"tosize":1000,"fromcomment":"fix typo"}}`)
	})

	diff, err := c.CompareWithPrevious(context.Background(), 999)
	if err != nil {
		t.Fatalf("CompareWithPrevious: %v", err)
	}
	if diff.SizeDelta != 250 {
		t.Errorf("SizeDelta = %d, want 250", diff.SizeDelta)
	}
	if diff.EditComment != "fix typo" {
		t.Errorf("EditComment = %q", diff.EditComment)
	}
	if diff.NewPage {
		t.Error("NewPage should be false")
	}
}

func TestCompareWithPreviousNewPage(t *testing.T) {
	c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":"nosuchrevid","info":"There is no revision with ID before it."}}`)
	})

	diff, err := c.CompareWithPrevious(context.Background(), 999)
	if err != nil {
		t.Fatalf("CompareWithPrevious: %v", err)
	}
	if !diff.NewPage {
		t.Error("expected NewPage for a revision with no predecessor")
	}
}

func TestCompareWithPreviousOtherAPIError(t *testing.T) {
	c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":"ratelimited","info":"slow down"}}`)
	})

	if _, err := c.CompareWithPrevious(context.Background(), 999); err == nil {
		t.Fatal("expected error for non-newpage API error")
	}
}

func TestGetReportsHTTPErrors(t *testing.T) {
	c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})

	if _, err := c.FilterDescription(context.Background(), 1); err == nil {
		t.Fatal("expected error for HTTP 503")
	}
}

func TestSiteName(t *testing.T) {
	c := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"general":{"sitename":"Wikipedia"}}}`)
	})

	name, err := c.SiteName(context.Background())
	if err != nil {
		t.Fatalf("SiteName: %v", err)
	}
	if name != "Wikipedia" {
		t.Errorf("sitename = %q", name)
	}
}
