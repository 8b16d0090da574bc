// Package core builds the statistical-fit model of an analysis: samples,
// systematics, channels and measurements assembled through a Registry.
//
// Builders validate each call and return wrapped sentinel errors; nothing is
// recovered internally. The assembled graph is read-only input for the
// external fitting engine.
package core
