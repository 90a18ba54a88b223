package mpx

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
)

// SinceLayout is the timestamp layout byUpdated filters are sent in. The
// feed service documents ISO 8601 but rejects it in practice.
const SinceLayout = time.RFC1123Z

// FeedQuery describes a window of feed entries.
type FeedQuery struct {
	// Start is the 1-based index of the first entry; 0 means 1.
	Start int `validate:"gte=0"`
	// Count is the window size; 0 means no range, i.e. the full list.
	Count int `validate:"gte=0"`
	// Fields limits the returned entry fields.
	Fields []string
	// Since keeps entries updated at or after this instant; zero means no filter.
	Since time.Time
	// Filters are extra query parameters applied last.
	Filters map[string]string
}

// Validate checks the query bounds.
func (q FeedQuery) Validate() error {
	err := validate.Struct(q)
	if err != nil {
		return &ValidationError{Field: "query", Err: err}
	}

	return nil
}

// ToValues translates the query into feed service parameters.
func (q FeedQuery) ToValues() (url.Values, error) {
	err := q.Validate()
	if err != nil {
		return nil, err
	}

	values := url.Values{}

	if r := BuildRange(q.Start, q.Count); r != "" {
		values.Set(constants.QueryRange, r)
	}

	if !q.Since.IsZero() {
		values.Set(constants.QueryByUpdated, FormatSince(q.Since))
	}

	if len(q.Fields) > 0 {
		values.Set(constants.QueryFields, strings.Join(q.Fields, ","))
	}

	for k, v := range q.Filters {
		values.Set(k, v)
	}

	return values, nil
}

// BuildRange returns "<start>-<start+count-1>", or "" when count is not
// positive. A start below 1 is treated as 1.
func BuildRange(start, count int) string {
	if count <= 0 {
		return ""
	}

	if start < 1 {
		start = 1
	}

	return strconv.Itoa(start) + "-" + strconv.Itoa(start+count-1)
}

// FormatSince renders an open-ended "updated at or after" bound.
func FormatSince(since time.Time) string {
	return since.UTC().Format(SinceLayout) + "~"
}

// BuildCustomValue renders mapping in the custom-field filter syntax
// "{k1}{v1},{k2}{v2}", keys in sorted order.
//
// Each key is used as a template: its first "%s" is replaced by prefix. This
// mirrors long-standing behaviour that looks accidental; keys without "%s"
// are emitted unchanged.
func BuildCustomValue(mapping map[string]string, prefix string) string {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))

	for _, k := range keys {
		field := strings.Replace(k, "%s", prefix, 1)
		parts = append(parts, "{"+field+"}{"+mapping[k]+"}")
	}

	return strings.Join(parts, ",")
}

// BuildFeedURL composes the URL of a feed with query appended.
func BuildFeedURL(baseURL, accountPID, feedPID string, query url.Values) string {
	u := FeedBaseURL(baseURL, accountPID, feedPID)
	if len(query) == 0 {
		return u
	}

	return u + "?" + query.Encode()
}

// FeedBaseURL scopes the feed service base URL to one account and feed.
func FeedBaseURL(baseURL, accountPID, feedPID string) string {
	return strings.Join([]string{strings.TrimRight(baseURL, "/"), accountPID, feedPID}, "/")
}

// FieldFilter is a single field/value filter.
type FieldFilter struct {
	Field string `validate:"required"`
	Value string
}

// FeedConfigOptions narrows a FeedConfig listing.
type FeedConfigOptions struct {
	Fields []string
	Filter *FieldFilter
}
