// Package imgur implements driven.ImageCatalog against the Imgur v3 API.
//
// Searches call GET /3/gallery/search/{page}?q={keyword}. The response is
// the standard Imgur envelope {data, success, status}; data holds gallery
// items, of which only the fields needed to render a hit are decoded.
//
// # Authentication
//
// Anonymous requests carry "Authorization: Client-ID <id>", supplied by the
// caller as a per-request header. When an access token is configured the
// client wraps its transport with an oauth2 static token source and the
// bearer token replaces the Client-ID header.
//
// # Rate Limiting
//
// Requests pass a proactive token bucket first. The client also tracks the
// X-RateLimit-Client* headers and fails fast once the application quota is
// spent, instead of sending requests that would be rejected.
package imgur
