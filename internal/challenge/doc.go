// Package challenge derives Octofence gate credentials from challenge
// pages without ever executing their scripts.
//
// A challenge page embeds an obfuscated script that a browser would run to
// set two cookies. This package instead parses the script into a syntax
// tree, extracts the token from the known document.cookie assignment,
// pairs it with a locally generated client fingerprint, and caches the
// result for an hour. The Coordinator serializes resolution so any number
// of concurrent scrape tasks share one solve.
package challenge
