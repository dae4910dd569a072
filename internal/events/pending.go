package events

import (
	"context"
	"log"
)

// Status is the three-way classification the UI uses to pick a render branch:
// normal content, "coming soon" (legitimately empty), or "pending updates"
// (section not yet configured).
type Status string

const (
	StatusPopulated    Status = "populated"
	StatusEmpty        Status = "empty"
	StatusUnconfigured Status = "unconfigured"
)

// Classify decides a category's operator-facing state. Unconfigured when the
// directory has no matching active entry; Empty when an entry exists but
// yields zero usable events (no rows endpoint, zero rows, or a fetch failure
// with nothing cached); Populated otherwise. Populated implies a non-empty
// event list. Every distinct failure cause deliberately collapses into the
// same soft states so transient backend issues never alarm end users.
func (f *Fetcher) Classify(ctx context.Context, category, subcategory string) Status {
	if !f.Directory.Loaded() {
		f.Directory.Load(ctx)
	}

	if _, ok := f.findConfig(category, subcategory); !ok {
		for _, pattern := range f.searchPatterns(category, subcategory) {
			if entry, exists := f.Directory.FindAnyPattern(pattern); exists {
				log.Printf("events: %s matches deactivated entry %q",
					displayCategory(category, subcategory), entry.Category)
				break
			}
		}
		return StatusUnconfigured
	}

	res, err := f.FetchCategory(ctx, category, subcategory)
	if err != nil || len(res.Events) == 0 {
		return StatusEmpty
	}
	return StatusPopulated
}
