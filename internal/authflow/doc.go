// Package authflow performs one interactive OAuth 2.0 authorization-code
// grant against an arbitrary provider.
//
// A Flow stands up a one-shot redirect receiver on the host:port of the
// first configured redirect URI, opens the provider authorization URL in the
// user's browser, waits for exactly one terminal event (redirect with a
// code, redirect with an error, timeout, or cancellation), and exchanges the
// captured code for a token:
//
//	flow, err := authflow.New(creds,
//		authflow.WithScopes("profile"),
//		authflow.WithOfflineAccess(true),
//	)
//	tok, err := flow.GetToken(ctx)
//
// The receiver never outlives the GetToken call. Provider registration data
// is loaded with LoadCredentials, which accepts both flat credential objects
// and the nested "installed"/"web" shapes of downloadable registrations.
package authflow
