package mpx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/mpx-client/internal/constants"
)

// ExtractIDString returns the last path segment of a media URI.
func ExtractIDString(uri string) string {
	idx := strings.LastIndex(uri, "/")

	return uri[idx+1:]
}

// ExtractID returns the integer identifier at the end of a media URI such as
// http://data.media.theplatform.com/media/data/Media/358543427929.
func ExtractID(uri string) (int64, error) {
	segment := ExtractIDString(uri)
	if segment == "" {
		return 0, fmt.Errorf("%w: %q", ErrEmptyMediaURI, uri)
	}

	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMediaID, segment)
	}

	return id, nil
}

// BuildMediaURI returns the fully-qualified media URI for id.
func BuildMediaURI(id int64) string {
	return constants.MediaURIPrefix + strconv.FormatInt(id, 10)
}

// RedactURL masks the value of every token query parameter in rawURL,
// leaving the rest of the URL untouched.
func RedactURL(rawURL string) string {
	base, query, found := strings.Cut(rawURL, "?")
	if !found {
		return rawURL
	}

	pairs := strings.Split(query, "&")
	for i, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")
		if key == constants.QueryToken {
			pairs[i] = key + "=" + constants.MaskedSecret
		}
	}

	return base + "?" + strings.Join(pairs, "&")
}
