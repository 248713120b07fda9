// Package parser turns listings-site markup into normalized records.
//
// Everything here is pure: functions take goquery documents or selections and
// return values. A missing field yields an empty string, never an error; the
// only error surfaced by extraction is ErrContentNotFound. Fetching, logging
// and metrics live in the scraper package.
package parser
