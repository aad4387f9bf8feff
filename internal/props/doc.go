// Package props provides the property values carried by entities and edges.
//
// Properties are JSON-like: every value is one of Null, String, Int, Float,
// Bool, Array or Object. The set of variants is closed (Value is sealed) so
// comparison and serialization can switch exhaustively.
//
// Two rules matter to the rest of semnet:
//   - Equal treats Int and Float as JSON numbers: Int(1) equals Float(1).
//   - Subset implements the subset-equal match used by store filters and the
//     pattern matcher: every filter key must be present in the candidate with
//     an Equal value; extra candidate keys are ignored.
//
// MarshalCanonical produces RFC 8785 style canonical JSON (UTF-16 key order,
// NFC-normalized strings, no HTML escaping). Dumps, golden files and content
// hashes all go through it so that output is byte-stable.
package props
