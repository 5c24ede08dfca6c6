// Package scoring computes the map layers from decoded datasets.
//
// The charging-need layer is a two-pass batch computation: raw demand and raw
// supply are collected for every segment first, normalizers are fitted on the
// complete batch, and only then is each segment scored. A single segment's need
// is therefore relative to the whole input and cannot be streamed.
//
// All functions are pure: they read their inputs, allocate fresh output and
// keep no state between calls.
package scoring
