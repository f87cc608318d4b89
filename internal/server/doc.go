// Package server assembles the Natural Masterpieces API behind a single HTTP
// server.
//
// Every resource route is wrapped in a CORS layer that answers OPTIONS
// preflight with the resource's method list and guarantees the wildcard
// allow-origin header on all responses, including error paths. A recovery
// middleware converts panics into {"error": ...} envelopes, and logging and
// metrics middleware wrap the whole chain.
package server
