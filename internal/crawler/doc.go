// Package crawler defines the records and collaborator interfaces shared by
// the fetch, extract, scrape and enrich packages: data sources, scraped
// items, fetch requests and responses, and the fetcher, feed reader,
// limiter and clock seams that tests replace.
package crawler
