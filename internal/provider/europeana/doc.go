// Package europeana searches the Europeana cultural heritage aggregator via
// its Search API.
package europeana
