// Package accounts implements the account lifecycle engine behind the
// housing-lottery applicant portal: registration, activation, login,
// password change and password reset.
//
// Validation contract:
//   - Every mutating operation runs an ordered, short-circuiting list of
//     checks. The first failing check decides the outcome; later checks
//     never run and never touch collaborators. Operations return a short
//     string code where the empty string is the sole success value, plus
//     an error reserved for infrastructure failures that escape the code
//     taxonomy (see codes.go).
//   - Structural syntax rules (username, password, names, phone, email)
//     live in validate.go and are pure functions with no collaborators.
//
// Keys:
//   - Activation and password-reset keys are single-use random strings
//     with an expiry instant. Issuing a new key of a kind atomically
//     replaces the previous one; a key past its expiry is treated the
//     same as no key at all.
//
// Collaborators:
//   - AccountStore persists accounts and owns the atomic state
//     transitions. The bun-backed implementation in repo_accounts.go is
//     the production store; store_memory.go backs tests and local runs.
//   - BotProtectionGateway fronts the third-party challenge check. Its
//     provider error codes are surfaced verbatim so the portal can show
//     provider-specific guidance.
//   - ActivitySink receives best-effort audit events for every mutation;
//     sink errors are logged and never fail the operation.
package accounts
