package model

// LinkType classifies what a raw link target points at
type LinkType string

const (
	LinkTypeWeb        LinkType = "web"          // http(s) URL
	LinkTypeMail       LinkType = "mail"         // mailto: address
	LinkTypeFile       LinkType = "file"         // local file path
	LinkTypeNetwork    LinkType = "network"      // UNC / network share path
	LinkTypeAnchor     LinkType = "anchor"       // internal document anchor
	LinkTypeCrossRef   LinkType = "crossref"     // "Section 3.2", "Table 4" style reference
	LinkTypeFTP        LinkType = "ftp"          // ftp:// URL
	LinkTypeUnknown    LinkType = "unknown"
)

// LinkCandidate is one link target handed in by the extraction collaborator.
// DisplayText and SourceLocationHint are extraction metadata passed through
// unchanged for reporting.
type LinkCandidate struct {
	Target             string `json:"target"`
	DisplayText        string `json:"display_text,omitempty"`
	SourceLocationHint string `json:"source_location_hint,omitempty"`
}
