package graph

// Item represents a drive item (file or folder).
// Fields are normalized from the Graph API response; callers never see raw API data.
type Item struct {
	ID       string
	Name     string
	DriveID  string // normalized: lowercase (Graph API casing is inconsistent)
	ParentID string
	Size     int64
	IsFolder bool
	WebURL   string
}

// Site identifies a SharePoint site resolved from its web URL.
type Site struct {
	ID     string
	Name   string
	WebURL string
}

// Drive identifies a site's document library.
type Drive struct {
	ID        string
	Name      string
	DriveType string
	WebURL    string
}
