package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Library identity, sent as "<product>/<version>" in the User-Agent header.
const (
	// DefaultUserAgent is the product part of the User-Agent header.
	DefaultUserAgent = "mpx-client"

	// DefaultVersion is the version part of the User-Agent header.
	DefaultVersion = "4.0.0"
)

// Request defaults shared by every endpoint.
const (
	// DefaultFormat is the value of the "form" query parameter.
	DefaultFormat = "json"

	// DefaultSchema is used when an endpoint does not pin its own schema.
	DefaultSchema = "1.0.0"
)

// MPX endpoint base URLs.
const (
	AuthenticationBaseURL = "https://identity.auth.theplatform.com/idm/web/Authentication/"
	FeedConfigBaseURL     = "http://data.feed.theplatform.com/feed/data/"
	MediaFeedBaseURL      = "http://feed.theplatform.com/f/"
	MediaRequestBaseURL   = "http://mps.theplatform.com/data/MediaRequest"
	MediaBaseURL          = "http://data.media.theplatform.com/media/data/Media/feed"
)

// MPX endpoint schema versions.
const (
	AuthenticationSchema = "1.0"
	FeedConfigSchema     = "2.0.0"
	MediaFeedSchema      = "2.0.0"
	MediaRequestSchema   = "1.2.0"
	MediaSchema          = "2.0.0"
)

// MediaURIPrefix is the prefix of a fully-qualified media identifier.
const MediaURIPrefix = "http://data.media.theplatform.com/media/data/Media/"

// Query parameter keys understood by the MPX data and feed services.
const (
	QueryForm      = "form"
	QuerySchema    = "schema"
	QueryToken     = "token"
	QueryAccount   = "account"
	QueryRange     = "range"
	QueryFields    = "fields"
	QueryCount     = "count"
	QueryEntries   = "entries"
	QueryByUpdated = "byUpdated"
	QueryByID      = "byId"
	QueryHTTPError = "httpError"
)

// Response envelope keys.
const (
	KeyEntries        = "entries"
	KeyTotalResults   = "totalResults"
	KeyIsException    = "isException"
	KeyDescription    = "description"
	KeyCorrelationID  = "correlationId"
	KeyResponseCode   = "responseCode"
	KeyTitle          = "title"
	KeySignInResponse = "signInResponse"
	KeyToken          = "token"
	KeySignOut        = "signOut"
	KeyRequestMediaID = "plrequest$mediaId"
	KeyRequestCount   = "plrequest$requestCount"
)

// Authentication endpoint paths, relative to the authentication base URL.
const (
	SignInPath  = "signIn"
	SignOutPath = "signOut"
)

// FeedConfigPath is the FeedConfig object path, relative to its base URL.
const FeedConfigPath = "FeedConfig"

// DefaultMediaRequestLimit is the upper bound of the default MediaRequest range.
const DefaultMediaRequestLimit = 2000

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are off unless a caller opts in with RetryMax > 0.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// HTTP status codes commonly used.
const (
	// HTTPStatusOK represents a successful HTTP response.
	HTTPStatusOK = 200

	// HTTPStatusMultipleChoices is the first status past the 2xx range.
	HTTPStatusMultipleChoices = 300

	// HTTPStatusNotModified is accepted as a success by the media service.
	HTTPStatusNotModified = 304
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanFalse string representation.
	BooleanFalse = "false"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// DefaultNATSSubject is the subject media-request counts are published on.
const DefaultNATSSubject = "mpx.media.requests"
