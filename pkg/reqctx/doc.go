// Package reqctx holds request-scoped values shared between HTTP middleware
// and the services they call: request metadata and the authenticated
// caller's claims.
//
// All context keys are unexported; use the typed getters and setters.
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: id})
//	ctx = reqctx.WithClaims(ctx, claims)
//
//	userID, ok := reqctx.UserIDFromContext(ctx)
//	role := reqctx.RoleFromContext(ctx)
//
// RequestMeta is set for every request; claims only for authenticated ones.
package reqctx
