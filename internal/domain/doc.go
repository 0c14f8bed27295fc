// Package domain models provincial disaster situation reports and the two
// computations the impact dashboard runs on them: severity aggregation and
// compensation estimation. Everything here is pure; I/O lives in the adapters.
//
// # Data Sources
//
// Daily situation reports (DSR) are compiled by the provincial reporting desk
// from district submissions and published as one JSON document per date on the
// Kafka source topic. A report carries district summary rows, free-text
// incident narratives, road status lines and a small summary block of counters
// the desk computes itself.
//
// The GIS layer serves a GeoJSON feature collection with one feature per
// district. Its damage counts are coarse (a single houses_damaged figure, no
// full/partial split) and every numeric property may arrive as a string.
//
// The aggregate dashboard serves canonical cumulative totals (deaths, injured,
// houses damaged, livestock lost). These are the authoritative counts shown
// across all views of the same period.
//
// # Input Conventions
//
// Numeric fields decode through [Count]: numbers, numeric strings and floats
// are accepted (floats truncate), anything else is 0. Missing text fields are
// empty strings and are skipped, never replaced with placeholders. A missing
// district name stays empty; labelling it is a presentation decision.
//
// Causes and NatureOfIncident are free text such as "Flood/Landslide" or
// "Rain, Roof Collapse & Flood". They are split on '/', ',' and '&', trimmed,
// and counted once per district row.
//
// # Severity Score
//
//	severity = deaths*death + injured*injury + housesFull*houseFull +
//	           housesPartial*housePartial + schools*school + other*other +
//	           cattle*cattle
//
// Default weights: death 1.0, injury 0.25, houseFull 0.6, housePartial 0.25,
// school 0.5, other 0.1, cattle 0.05. Rankings use stable sorts so districts
// with equal scores keep their report order.
//
// # Compensation Estimates
//
// Rates come from a fixed 21-row PKR policy table ([RateTable]). Damage counts
// arrive either itemized per incident ([DetailedDamage]) or as GIS district
// totals ([AggregateDamage]). The GIS path splits houses 20% fully / 80%
// partially damaged. Business and vehicle losses are never measured and are
// estimated from other-damaged structures (30% / 20%) on the detailed path or
// from houses (10% / 5%) on the GIS path. Agricultural and ration support are
// priced per affected family, max(deaths, injured, fully damaged houses), with
// ten trees assumed per family.
//
// The provincial summary sums money from the district breakdown but copies its
// four headline counts from the canonical totals, so the estimate always agrees
// with the other dashboard views even when the GIS figures drift.
//
// # Report IDs
//
// Impact reports are keyed by a name-based UUID of the report date. Replaying
// the same date yields the same key, so downstream compacted topics keep only
// the latest estimate. See [ReportID].
package domain
