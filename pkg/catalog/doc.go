// Package catalog defines the shared language of the fieldlens system.
//
// This package contains:
//   - Domain entities (Field, Edge, Analysis)
//   - Identifier helpers (Bracket, Strip, Fold)
//   - Enumerations (Category, Strategy)
//
// The Golden Rule: pkg/catalog imports ONLY stdlib.
// All other packages depend on catalog, not the reverse.
package catalog
