// Package stride is a typed browser-testing DSL built on top of the
// chromedp Chrome DevTools Protocol client.
//
// It provides element handles, locator strategies, wait conditions, merged
// test settings and a step runner intended for authoring browser test
// scripts in Go. All browser interaction is delegated to chromedp; stride
// adds the typed surface and user-facing error decoration.
//
// The auxiliary docgen package walks a reflection JSON tree produced by a
// type-documentation tool and emits structured markdown documents.
package stride
