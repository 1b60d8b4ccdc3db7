// Package domain contains the core model for pnfem: the notched-plate problem
// definition, its validation rules, solve results and persisted runs.
//
// The domain is transport- and persistence-agnostic: it does not depend on JSON files,
// the FEM engine, the terminal UI or the filesystem. Infra/adapters map into/from
// these types.
package domain
