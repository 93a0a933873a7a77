package documents

import "net/url"

// Filter narrows document listings.
type Filter struct {
	Search    *string
	OwnerID   *string
	VisitorID *string
}

// FilterFromQuery extracts listing filters from URL query values.
func FilterFromQuery(values url.Values) Filter {
	var f Filter

	if v := values.Get("search"); v != "" {
		f.Search = &v
	}
	if v := values.Get("owner_id"); v != "" {
		f.OwnerID = &v
	}
	if v := values.Get("visitor_id"); v != "" {
		f.VisitorID = &v
	}

	return f
}
