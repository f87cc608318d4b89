// Package api hosts the HTTP handlers that front the Natural Masterpieces
// REST API.
//
// Each resource handler dispatches on the request method and owns its own
// input validation; persistence goes through storage.Repository
// implementations injected at construction time. Admin session issuance and
// verification are provided by auth.SessionManager; photo uploads, photo
// analysis, and order notifications go through the object storage, vision,
// and notify collaborators, all injected so endpoint behaviour stays
// testable.
//
// Handlers assume the middleware assembled in internal/server has already
// handled CORS preflight, panic recovery, request logging, and metrics. Every
// failure surfaces as a {"error": ...} JSON envelope.
package api
