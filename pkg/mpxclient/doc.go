// Package mpxclient provides the primary entry point for constructing clients
// of the thePlatform MPX web services.
//
// Each constructor starts from mpx.DefaultConfig for its endpoint, applies
// the given options, validates the result and returns the matching mpx
// interface. Options never change shared state, so clients built with
// different options can be used side by side.
//
// Quick start
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
//	  // Public feeds need no token.
//	  feed, err := mpxclient.NewMediaFeedClient("account-pid", "feed-pid",
//	    mpxclient.WithRetry(3, time.Second, 10*time.Second))
//	  if err != nil { log.Fatal(err) }
//
//	  count, err := feed.GetCount(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = count
//
//	  // Data services need a signed-in session.
//	  err = mpxclient.WithSession(ctx, "user", "pass", func(ctx context.Context, s *mpxclient.Session) error {
//	    media, err := s.MediaClient()
//	    if err != nil { return err }
//
//	    resp, err := media.PutPluralJSON(ctx, nil, map[string]interface{}{"entries": entries})
//	    if err != nil { return err }
//	    if !mpx.IsResponseSuccessful(resp) {
//	      log.Print(mpx.ResponseError(resp))
//	    }
//	    return nil
//	  })
//	}
//
// # Endpoints
//
// WithBaseURL replaces the base URL of whatever client it is passed to.
// Sessions build clients for several endpoints; point them elsewhere with
// WithEndpointBaseURL instead.
package mpxclient
