// Package auth decides whether a gateway request may proceed.
//
// A Policy is one of Bearer, Basic or Disabled. Gate.Check evaluates it
// against the request headers and fails closed: a missing header, a malformed
// header, a failed session lookup and a mismatch all deny.
//
//	gate, err := auth.NewGate(auth.Bearer{SessionKeyPrefix: "auth:token:"}, sessions)
//	if err != nil {
//		return err
//	}
//	if err := gate.Check(ctx, r.Header, tenant); err != nil {
//		// errors.Is(err, auth.ErrUnauthorized) is always true here
//	}
package auth
