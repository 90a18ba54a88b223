// Package mpx provides types, interfaces, and helpers for working with the
// thePlatform MPX web services.
//
// # Overview
//
// The mpx package defines the configuration value (Config), the response
// envelope (Envelope), the endpoint client interfaces (AuthenticationClient,
// FeedConfigClient, MediaFeedClient, MediaRequestClient, MediaClient) and the
// error kinds shared by them. Concrete clients are built by the mpxclient
// package.
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/mpx-client/pkg/mpx"
//	  "github.com/fivetwenty-io/mpx-client/pkg/mpxclient"
//	)
//
//	func example(ctx context.Context) {
//	  feed, err := mpxclient.NewMediaFeedClient("account-pid", "feed-pid")
//	  if err != nil { log.Fatal(err) }
//
//	  entries, err := feed.GetEntries(ctx, mpx.FeedQuery{Start: 1, Count: 50})
//	  if err != nil { log.Fatal(err) }
//	  _ = entries
//	}
//
// # Sessions
//
// Tokens issued by the identity service are limited per user, so every
// sign-in must be paired with a sign-out. mpxclient.WithSession does both:
//
//	err := mpxclient.WithSession(ctx, user, pass, func(ctx context.Context, s *mpxclient.Session) error {
//	  requests, err := s.MediaRequestClient()
//	  if err != nil { return err }
//	  _, err = requests.GetEntries(ctx, url.Values{"account": {"my-account"}})
//	  return err
//	})
//
// # Errors
//
// Failures are reported as TransportError, HTTPStatusError,
// MalformedResponseError, MissingFieldError, ValidationError or RemoteError.
// Each matches a sentinel (ErrTransport, ErrHTTPStatus, ...) with errors.Is,
// and helpers such as IsMissingField and IsRemoteException make branching
// easy. The media service reports failures inside a 200 response; use
// IsResponseSuccessful and ResponseError on the RawResponse it returns.
package mpx
