// Package docstore provides a lightweight client for a hierarchical JSON
// document store reached over HTTP, following the Firebase Realtime Database
// REST shape: every node is addressed as <base><location>.json and read with
// GET, overwritten with PUT, appended to with POST (the server picks the child
// key) and merged into with PATCH.
//
// A Client optionally carries an auth token, sent as the "auth" query
// parameter on every request once set. Rejected requests surface as
// *RequestError values carrying the remote message, the location and, for
// writes, the content that was sent.
//
// NewFromEnv selects between the remote store and an in-process mock
// (see package mock) using DOCSTORE_RUNTIME_MODE and DOCSTORE_URL.
package docstore
