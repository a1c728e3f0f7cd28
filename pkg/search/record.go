package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// MissingName is written in place of a business name the provider omitted.
const MissingName = "N/A"

// addressSeparator joins the provider's display address lines.
const addressSeparator = ", "

// ErrMalformedResponse indicates a response body that is not valid JSON
// or whose business list is not an array.
var ErrMalformedResponse = errors.New("malformed search response")

// BusinessRecord is the flattened (name, address) projection of one
// provider business entry.
type BusinessRecord struct {
	Name    string
	Address string
}

// ResultSet is the ordered, append-only collection of records of one run.
type ResultSet []BusinessRecord

// Page is one parsed search response.
type Page struct {
	// Records are the flattened businesses, in response order.
	Records []BusinessRecord

	// Total is the provider's count of all matching businesses (0 if absent).
	Total int
}

// ParsePage extracts the businesses of a search response body.
// A missing or null business list yields an empty page.
func ParsePage(body []byte) (Page, error) {
	if !gjson.ValidBytes(body) {
		return Page{}, ErrMalformedResponse
	}

	page := Page{Total: int(gjson.GetBytes(body, "total").Int())}

	businesses := gjson.GetBytes(body, "businesses")
	if !businesses.Exists() || businesses.Type == gjson.Null {
		return page, nil
	}
	if !businesses.IsArray() {
		return Page{}, fmt.Errorf("%w: businesses is %s, not an array", ErrMalformedResponse, businesses.Type)
	}

	entries := businesses.Array()
	page.Records = make([]BusinessRecord, 0, len(entries))
	for _, entry := range entries {
		page.Records = append(page.Records, Flatten(entry))
	}
	return page, nil
}

// Flatten projects a single business entry onto a BusinessRecord.
// A missing name becomes MissingName; a null name stays empty.
// Address lines that are not strings are kept as their JSON text.
func Flatten(entry gjson.Result) BusinessRecord {
	record := BusinessRecord{Name: MissingName}

	if name := entry.Get("name"); name.Exists() {
		record.Name = name.String()
	}

	lines := entry.Get("location.display_address")
	if lines.IsArray() {
		items := lines.Array()
		parts := make([]string, 0, len(items))
		for _, line := range items {
			if line.Type == gjson.String {
				parts = append(parts, line.String())
			} else {
				parts = append(parts, line.Raw)
			}
		}
		record.Address = strings.Join(parts, addressSeparator)
	}

	return record
}
