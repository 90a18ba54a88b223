package mpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
)

// Envelope is the decoded JSON object returned by any MPX call. Numbers are
// kept as json.Number so large identifiers survive decoding.
type Envelope map[string]interface{}

// FeedEntry is one element of an envelope's entries array. Its shape is
// owned by the feed configuration and is not interpreted by the client.
type FeedEntry map[string]interface{}

// MediaRequestEntry is a reshaped MediaRequest entry.
type MediaRequestEntry struct {
	MediaID      string `json:"mediaId"      yaml:"mediaId"`
	RequestCount int    `json:"requestCount" yaml:"requestCount"`
}

// RawResponse is an undecoded HTTP response.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string
}

// ParseEnvelope decodes body into an Envelope.
func ParseEnvelope(body []byte) (Envelope, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var raw interface{}

	err := decoder.Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, ErrNotJSONObject
	}

	return Envelope(obj), nil
}

// Has reports whether key is present, whatever its value.
func (e Envelope) Has(key string) bool {
	_, ok := e[key]

	return ok
}

// Entries returns the entries array. ok is false when the key is absent or
// is not an array. Items that are not objects are skipped; CheckEntries
// reports them.
func (e Envelope) Entries() ([]FeedEntry, bool) {
	list, ok := e[constants.KeyEntries].([]interface{})
	if !ok {
		return nil, false
	}

	entries := make([]FeedEntry, 0, len(list))

	for _, item := range list {
		if obj, isObj := item.(map[string]interface{}); isObj {
			entries = append(entries, FeedEntry(obj))
		}
	}

	return entries, true
}

// CheckEntries fails when the entries array holds anything but objects.
func (e Envelope) CheckEntries() error {
	list, ok := e[constants.KeyEntries].([]interface{})
	if !ok {
		return nil
	}

	for i, item := range list {
		if _, isObj := item.(map[string]interface{}); !isObj {
			return fmt.Errorf("%w: entry %d is %T", ErrEntryNotObject, i, item)
		}
	}

	return nil
}

// TotalResults returns the totalResults count.
func (e Envelope) TotalResults() (int, bool) {
	return e.Int(constants.KeyTotalResults)
}

// Int returns the value at key as an int when it is numeric.
func (e Envelope) Int(key string) (int, bool) {
	raw, ok := e[key]
	if !ok {
		return 0, false
	}

	return toInt(raw)
}

// IsException reports whether the isException marker is truthy.
func (e Envelope) IsException() bool {
	return truthy(e[constants.KeyIsException])
}

// Exception converts an exception envelope into a RemoteError; nil when the
// envelope is not an exception.
func (e Envelope) Exception() *RemoteError {
	if !e.IsException() {
		return nil
	}

	remote := &RemoteError{
		Title:         e.String(constants.KeyTitle),
		Description:   e.String(constants.KeyDescription),
		CorrelationID: e.String(constants.KeyCorrelationID),
	}

	if code, ok := toInt(e[constants.KeyResponseCode]); ok {
		remote.ResponseCode = code
	}

	return remote
}

// String returns the value at key when it is a string.
func (e Envelope) String(key string) string {
	s, _ := e[key].(string)

	return s
}

// Object returns the nested object at key.
func (e Envelope) Object(key string) (Envelope, bool) {
	obj, ok := e[key].(map[string]interface{})
	if !ok {
		return nil, false
	}

	return Envelope(obj), true
}

// IsResponseSuccessful reports whether a media service response succeeded.
// The isException marker wins; otherwise responseCode (200 when absent) must
// be 2xx or 304. An unparsable body counts as a failure.
func IsResponseSuccessful(resp *RawResponse) bool {
	if resp == nil {
		return false
	}

	body, err := ParseEnvelope(resp.Body)
	if err != nil {
		return false
	}

	if body.IsException() {
		return false
	}

	code := constants.HTTPStatusOK
	if c, ok := toInt(body[constants.KeyResponseCode]); ok && c != 0 {
		code = c
	}

	return (code >= constants.HTTPStatusOK && code < constants.HTTPStatusMultipleChoices) ||
		code == constants.HTTPStatusNotModified
}

// ResponseError formats the failure reason carried by a media service
// response. It never fails; missing values fall back to defaults.
func ResponseError(resp *RawResponse) string {
	msg := "Unknown error"
	correlationID := "Unknown correlationId"

	if resp != nil {
		body, err := ParseEnvelope(resp.Body)
		if err == nil {
			if d := body.String(constants.KeyDescription); d != "" {
				msg = d
			}

			if c := body.String(constants.KeyCorrelationID); c != "" {
				correlationID = c
			}
		}
	}

	return fmt.Sprintf("Message: %s. Correlation: %s", msg, correlationID)
}

func toInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}

			return int(f), true
		}

		return int(n), true
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}

func truthy(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "0" && v != constants.BooleanFalse
	case json.Number:
		return v.String() != "0"
	case float64:
		return v != 0
	default:
		return true
	}
}
