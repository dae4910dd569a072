package models

import "strings"

// ConfigEntry is one row of the remote configuration directory table. It maps a
// logical category (optionally narrowed by subcategory) to the API endpoints that
// serve its rows and field metadata.
type ConfigEntry struct {
	ID          int    `json:"id"`
	TableKey    string `json:"baserow_id"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	RowsURL     string `json:"api_rows_url"`
	FieldsURL   string `json:"api_fields_url"`
	Status      string `json:"Status"`
}

// IsActive reports whether the entry is usable. Status casing varies at the
// source ("active", "Active"), so the check is case-insensitive.
func (e *ConfigEntry) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(e.Status), "active")
}

// FieldDescriptor is one field definition from a remote table's schema endpoint.
// The type tag is carried verbatim and not interpreted.
type FieldDescriptor struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Primary bool   `json:"primary"`
}

// CanonicalEvent is the normalized record every UI consumer binds to, regardless
// of which remote table the row came from.
type CanonicalEvent struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Year      string         `json:"year,omitempty"`
	City      string         `json:"city,omitempty"`
	Location  string         `json:"location,omitempty"`
	Region    string         `json:"region,omitempty"`
	MediaURL  string         `json:"media_url,omitempty"`
	AudioURL  string         `json:"audio_url,omitempty"`
	EmbedHTML string         `json:"embed_html,omitempty"`
	Category  string         `json:"category"`
	Raw       map[string]any `json:"raw_data,omitempty"`
}

// HasIdentity reports whether the event carries enough displayable identity to
// be worth returning. Rows with neither a year nor a city are dropped.
func (e *CanonicalEvent) HasIdentity() bool {
	return e.Year != "" || e.City != ""
}
