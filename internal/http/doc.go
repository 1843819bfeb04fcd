// Package http provides HTTP handlers and middleware for the HR portal API.
//
// The router exposes the following endpoints:
//   - GET /: home payload describing the service. Unknown paths fall back to
//     the same payload, mirroring the single-page app's default route.
//   - POST /register: self-service account registration. Body:
//     {"first_name","last_name","email","password"}. The new account starts
//     unverified and its email is recorded as pending verification.
//   - GET /verifications/pending, POST /verifications/confirm: the simulated
//     email verification flow. Confirm marks the pending account verified.
//   - POST /sessions: issues a session token for a verified account. The token
//     is surfaced in the body, the `X-Session-Token` header, and a
//     `session_token` cookie.
//   - GET /sessions/current: restores the principal for a stored token; stale
//     tokens yield 401. DELETE /sessions/current: unconditional logout.
//   - GET/PUT /profile: the caller's combined account and employment view.
//   - GET /accounts, POST /accounts, PUT /accounts/{id}, DELETE /accounts/{id},
//     POST /accounts/{id}/password: administrator account management.
//   - GET/POST /departments, PUT/DELETE /departments/{id}: department catalog.
//     The route group is admin-only; non-admin callers receive the department
//     list through the profile payload instead.
//   - GET/POST /employees, PUT/DELETE /employees/{id}: employee records.
//   - GET/POST /requests, PUT /requests/{id}/status: the request/approval
//     workflow. Requests cannot be deleted.
//
// Every mutating response carries a notification {severity, message} that a
// client can surface verbatim as a toast. Request/response DTOs live
// alongside their respective handlers.
package http
