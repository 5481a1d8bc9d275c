// Package docgen walks a reflection JSON tree produced by a
// type-documentation tool and emits structured markdown documents.
//
// The input schema is the tool's own: nodes carry a kindString, children,
// optional comment and signature lists. docgen treats it as opaque data,
// dispatching on kindString to build pages and sections; unknown kinds are
// counted and skipped so newer reflection dumps degrade gracefully.
package docgen
