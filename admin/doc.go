// Package admin exposes a module.Manager over HTTP for operational use.
//
// Endpoints:
//
//	GET  /healthz               — process liveness
//	GET  /info                  — build version and registry counts
//	GET  /modules               — all registered modules and their load state
//	GET  /modules/:name         — state of a single module
//	POST /modules/:name/load    — load a registered module
//	POST /modules/:name/unload  — unload a loaded module
//
// Errors are rendered through the errors package, so the HTTP status follows
// the error code (404 for unknown or unloaded modules, 409 for conflicts).
package admin
