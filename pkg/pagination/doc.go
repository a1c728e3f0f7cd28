// Package pagination walks the business-search results page by page and
// exports the flattened records.
//
// The provider pages with limit/offset. The fetcher requests one page at a
// time, advances the offset by the number of entries actually returned and
// pauses between pages to stay under the provider's per-second limit.
//
// Example usage:
//
//	cfg := pagination.DefaultConfig("Toronto, ON", "indpak", 200)
//	fetcher := pagination.NewFetcher(searchClient, cfg)
//	summary, err := fetcher.Run(ctx, "indian_restaurants_toronto.csv")
//
// Pagination stops when:
//   - the offset reaches MaxResults (the last page is kept whole, so the
//     result set may exceed MaxResults by less than one page)
//   - the provider answers with a non-success status or the request fails
//     in transport (records fetched so far are still exported)
//   - a page comes back empty
//
// A response body that is not valid JSON aborts the run without writing
// output.
package pagination
