// Package dataset decodes the raw station, traffic and congestion files into
// domain records.
//
// Inputs come from several producers and are not uniform: a file may be a
// GeoJSON FeatureCollection or a flat JSON array, numbers may be encoded as
// strings, and field names vary in spelling and case. Decoders therefore look
// fields up through ordered synonym lists and coerce values leniently.
// Records without usable coordinates are dropped and counted, never reported
// as errors. An error is returned only when the payload is not JSON at all.
package dataset
