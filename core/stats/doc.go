// Package stats computes demand statistics from historical rental counts.
// Samples are grouped into half-hour slots per station and vehicle type and
// summarized as mean, min, max and a conservative P90 peak estimate.
package stats
