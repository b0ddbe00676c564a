// Package provenance persists and transmits semantic annotations.
//
// [LocalStore] keeps an XML data file per plugin with one entry per
// annotation and answers descriptor lookups against it. [RemoteExporter]
// serialises an annotation as a Turtle provenance record, zips it and
// uploads it over HTTP or a WebSocket, and queries the remote service for
// the average parameter settings of a descriptor. [Exporter] combines both
// behind the analysis.Exporter interface.
package provenance
