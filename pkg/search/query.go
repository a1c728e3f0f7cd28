// Package search holds the business-search data model: the query sent to
// the provider, the flattened records kept from each page and the result
// set accumulated over a run.
package search

import (
	"net/url"
	"strconv"
)

// DefaultTerm is the fixed search term sent with every request.
const DefaultTerm = "Indian Restaurants"

// SearchQuery is the parameter set of a single business-search request.
// A new query is built for every page; only Offset changes between pages.
type SearchQuery struct {
	Term     string
	Location string
	Category string
	Limit    int
	Offset   int
}

// Values encodes the query as URL parameters.
// The provider expects the category under "categories".
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	v.Set("term", q.Term)
	v.Set("location", q.Location)
	v.Set("categories", q.Category)
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("offset", strconv.Itoa(q.Offset))
	return v
}
