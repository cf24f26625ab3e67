// Package p21 decodes ISO 10303-21 (STEP Part 21) exchange files.
//
// The decoder is schema-agnostic: it reads the header, every DATA section and
// each instance's attribute values, including complex instances and typed
// parameters, without validating them against an EXPRESS schema.
package p21
