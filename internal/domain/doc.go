// Package domain models satellite fire detections and the fire areas derived
// from them.
//
// # Data Source
//
// Fire detections come from the NASA FIRMS (Fire Information for Resource
// Management System) area API, which serves one CSV row per thermal anomaly
// detected by MODIS or VIIRS. The fetch adapter parses the CSV into
// [FirePoint] values; everything after that point is pure computation.
//
// # FIRMS Conventions
//
// Coordinates:
//
//	latitude / longitude columns in decimal degrees, WGS84.
//
// Brightness:
//
//	MODIS reports "brightness" and "bright_t31" (Kelvin).
//	VIIRS reports "bright_ti4" and "bright_ti5" instead; both map onto the
//	same two fields. Missing or unparsable values become NaN on FirePoint and
//	nil on [EnrichedFirePoint] (NaN has no JSON encoding).
//
// Confidence:
//
//	MODIS uses an integer 0-100, VIIRS uses "l", "n" or "h". Kept as a string.
//
// Acquisition time:
//
//	acq_date is YYYY-MM-DD, acq_time is HHMM in UTC. Both are passed through.
//
// # Attribution Defaults
//
// Points outside every country polygon get country "In Ocean" and continent
// "Ocean". Points farther than the city cutoff (200 km by default) from every
// reference city get city "Remote Area". The display location is
// "<city>, <country>", collapsing to "Remote Area" when no city matched and to
// "In Ocean" whenever the country did not match.
//
// # Fire Areas
//
// Detections are clustered with DBSCAN in a planar (metric) frame. Each
// non-noise cluster with at least three members becomes a [FireArea] bounded by
// the convex hull of its members and labelled with the most frequent member
// country. Cluster ids carry no meaning beyond grouping within a single run.
package domain
