// Public domain.

// Package atmogrid ingests, harmonizes and aggregates atmospheric
// remote-sensing products on a uniform internal data model.
//
// The core is a spherical geometry engine on the WGS84 sphere (package
// sphere) feeding a binning and resampling engine (package binning) that
// reduces products (package product) along time, or onto a time ×
// latitude × longitude grid with polygon-on-grid overlap weighting.
//
// This package is the published in-process surface.  Every function
// returns an error on failure and records it in the errs last-error
// channel for callers that interface through that facade.
package atmogrid
