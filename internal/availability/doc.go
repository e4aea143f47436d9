// Package availability extracts structured booking data from the site's
// calendar and performance-list HTML with strict validity checks, so a
// half-rendered or still-gated page is reported as a failure instead of
// being mistaken for zero availability.
package availability
