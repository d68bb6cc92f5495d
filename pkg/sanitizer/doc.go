// Package sanitizer normalizes customer-supplied booking data before
// validation and storage.
//
// All functions are idempotent and never fail: input that cannot be
// normalized becomes an empty string so the validator reports it.
//
// Normalization includes:
//   - Phone numbers: E.164, parsed against the provider's region first
//   - Free text: collapse whitespace, trim leading/trailing spaces
//   - Emails: trimmed and lowercased
//   - Vehicles: collapsed and uppercased so plates compare equal
package sanitizer
