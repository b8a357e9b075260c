// Package domain models USGS earthquake feed data and its visual encoding.
//
// # Data Source
//
// Earthquake observations come from the USGS Earthquake Hazards Program
// GeoJSON summary feeds, documented at
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/geojson.php. Each feed is
// a FeatureCollection snapshot of a rolling window (past hour/day/week/month);
// the service consumes one configured feed URL, all-week by default. Feeds are
// regenerated upstream about once a minute.
//
// # USGS Feed Conventions
//
// Geometry:
//
//	geometry.coordinates = [longitude, latitude, depth]
//	Depth is kilometers below the surface. Slightly negative depths occur for
//	events resolved above the reference ellipsoid (shallow quarry blasts,
//	some volcanic events). [EffectiveDepth] clamps those to [DepthFloor] so
//	the quantile scale stays well-defined; the raw depth is preserved on the
//	event itself.
//
// Properties:
//
//	mag    Moment magnitude. May be null for unreviewed events; decoded as 0,
//	       which the radius floor keeps visible.
//	place  Human-readable locality, e.g. "8 km W of Cobb, California".
//	time   Event origin time, epoch milliseconds UTC.
//	type   Usually "earthquake", but the feeds also carry "quarry blast",
//	       "explosion", and "ice quake" entries, which are rendered the same.
//	       Missing values default to "earthquake".
//
// Feature IDs are assigned by the reporting network ("us7000kufc",
// "nc73649170") and are stable across feed regenerations, so downstream
// consumers can use them for idempotent upserts and replay-safe dedup.
//
// # Visual Encoding
//
// The encoding contract is fixed and must not drift, since rendered maps are
// compared across deployments:
//
//	Radius:  2 when magnitude < 0.5, else magnitude x 4. See [Radius].
//	Color:   six-color green-to-red palette over depth quantiles. Boundaries
//	         are type-7 (linear interpolation) quantiles at k/5 for k = 0..4
//	         over the effective depths; a depth maps to the first boundary
//	         it does not exceed, and past the last boundary to the final
//	         color. See [BuildDepthScale].
//	Popup:   place, separator, "Magnitude: " + magnitude, separator, origin
//	         time as "Jan 2, 2006, 3:04 PM UTC".
//	Legend:  "Depth (km)" title, palette gradient, boundary labels with the
//	         first always the literal floor label "0.01 +".
package domain
