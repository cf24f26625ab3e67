// Package ap242 answers AP242 PDM relationship lookups over decoded models.
//
// A Repository owns every decoded model. Queries run against a
// SchemaInstance, a temporary merged view created from the repository,
// filled with models, frozen read-only and closed after use.
//
// Every relationship is found through one inverse-reference lookup (usedIn).
// Relationships that may hold at most one match go through atMostOne, which
// reports a *domain.IntegrityError for loosely conforming files.
package ap242
