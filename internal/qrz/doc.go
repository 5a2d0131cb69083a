// Package qrz talks to the QRZ XML callsign registry and turns its replies
// into the gateway's public record schema.
//
// The package has three moving parts:
//   - Client performs the single authenticated GET against the registry and
//     decodes the XML body into a Payload. It only judges the transport: a
//     non-2xx status, an empty body, or XML that will not parse.
//   - MapRecord navigates Payload to the one Callsign section, validates it,
//     and projects it onto Record. The registry's "class" element becomes
//     "license_class" through a fixed translation table.
//   - Service ties the two together for a caller-supplied callsign, logging
//     and recording metrics for each outcome.
//
// Failures are reported as *Error values whose kind is one of
// ErrUpstreamUnavailable, ErrMalformedResponse or ErrRecordNotFound, so the
// HTTP layer can choose a status code with errors.Is instead of reading error
// text. Credentials never appear in error messages or log lines.
package qrz
