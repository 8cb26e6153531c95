// Package session mediates between a hosted identity provider and a
// user-record directory, publishing a single current-session value that
// guards and views consume.
//
// Session lifecycle:
//   - Manager owns the session state cell and drives sign-up, sign-in,
//     social sign-in, sign-out, and password reset flows. Every mutating
//     flow brackets itself with a loading flag so observers can render
//     in-flight affordances, and every provider session change is
//     reconciled against the persisted UserRecord.
//   - VerificationPoller re-checks email verification on a fixed interval
//     and owns the resend cooldown. Both timers are idempotent and are
//     stopped automatically on sign-out.
//
// Guards:
//   - Evaluate is a pure decision function over (session snapshot, policy).
//     RouteGuard adapts it into router middleware that redirects denials
//     and carries the originally requested route through the login flow.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter describing sign-up,
//     sign-in, sign-out, verification, and reset events. Sinks run
//     best-effort (errors are logged) so you can forward to a database or
//     queue without blocking authentication.
package session
