// Package auth authenticates check API callers by API key.
//
// Every key maps to a user name. An authenticated request carries that user
// in its context and the check handler records runs under it, so per-user
// run logs cannot be written on behalf of another caller.
//
// Keys are read from the configured sources in order, for example a bearer
// token in the Authorization header followed by an X-API-Key header:
//
//	validator := auth.NewValidator([]auth.Key{{Key: "sk-123", UserName: "alice"}})
//	mw := auth.NewMiddleware(validator, []auth.Source{
//		{Type: auth.SourceHeader, Name: "Authorization", Scheme: "Bearer"},
//		{Type: auth.SourceHeader, Name: "X-API-Key"},
//	})
//	mux.Handle("/v1/check", mw.Handle(checkHandler))
package auth
