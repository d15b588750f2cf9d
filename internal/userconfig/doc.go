// Package userconfig persists the user's desktop preferences as a YAML
// document addressed by dotted keys ("desktop.onboarded",
// "desktop.filters.min_quality"). FileStore keeps the document on disk and
// Watcher reports external edits; Memory is an in-process variant.
package userconfig
