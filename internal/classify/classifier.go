package classify

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
)

// Classification is the outcome of classifying one raw link target
type Classification struct {
	Type        model.LinkType
	FormatValid bool
	ErrorDetail string
}

// acceptedSchemes are the URL schemes the web classifier treats as valid
var acceptedSchemes = map[string]bool{
	"http":  true,
	"https": true,
}

var (
	crossRefPattern    = regexp.MustCompile(`(?i)^(section|table|figure|appendix|chapter)\s+[\w.\-]+`)
	driveLetterPattern = regexp.MustCompile(`^[a-zA-Z]:[\\/]`)
	relativePattern    = regexp.MustCompile(`^\.{0,2}[\\/][\w]`)
)

// Classify maps a raw link string to its link type and basic format
// validity. It is a pure function and performs no I/O.
//
// Priority order: internal anchor, mailto, http(s), ftp, UNC/network
// path, drive-letter or relative file path, textual cross-reference,
// unknown.
func Classify(raw string) Classification {
	target := strings.TrimSpace(raw)
	if target == "" {
		return Classification{Type: model.LinkTypeUnknown, ErrorDetail: "empty link target"}
	}

	switch {
	case strings.HasPrefix(target, "#"):
		return classifyAnchor(target)
	case hasScheme(target, "mailto"):
		return classifyMail(target)
	case hasScheme(target, "http"), hasScheme(target, "https"):
		return classifyWeb(target)
	case hasScheme(target, "ftp"):
		return Classification{Type: model.LinkTypeFTP, FormatValid: true}
	case strings.HasPrefix(target, `\\`), strings.HasPrefix(target, "//"):
		return classifyNetwork(target)
	case driveLetterPattern.MatchString(target), relativePattern.MatchString(target):
		return Classification{Type: model.LinkTypeFile, FormatValid: true}
	case crossRefPattern.MatchString(target):
		return Classification{Type: model.LinkTypeCrossRef, FormatValid: true}
	default:
		return Classification{Type: model.LinkTypeUnknown, ErrorDetail: "unrecognized link form"}
	}
}

func hasScheme(target, scheme string) bool {
	return strings.HasPrefix(strings.ToLower(target), scheme+":")
}

func classifyAnchor(target string) Classification {
	if len(target) == 1 {
		return Classification{Type: model.LinkTypeAnchor, ErrorDetail: "anchor has no name"}
	}
	return Classification{Type: model.LinkTypeAnchor, FormatValid: true}
}

func classifyMail(target string) Classification {
	addr := strings.TrimPrefix(strings.ToLower(target), "mailto:")
	// Strip query parameters like ?subject=
	if idx := strings.Index(addr, "?"); idx >= 0 {
		addr = addr[:idx]
	}
	at := strings.Index(addr, "@")
	if at <= 0 || at == len(addr)-1 || !strings.Contains(addr[at+1:], ".") {
		return Classification{Type: model.LinkTypeMail, ErrorDetail: fmt.Sprintf("malformed mail address %q", addr)}
	}
	return Classification{Type: model.LinkTypeMail, FormatValid: true}
}

func classifyWeb(target string) Classification {
	parsed, err := url.Parse(target)
	if err != nil {
		return Classification{Type: model.LinkTypeWeb, ErrorDetail: fmt.Sprintf("parse URL: %v", err)}
	}
	if !acceptedSchemes[strings.ToLower(parsed.Scheme)] {
		return Classification{Type: model.LinkTypeWeb, ErrorDetail: fmt.Sprintf("scheme %q not accepted", parsed.Scheme)}
	}
	if parsed.Host == "" {
		return Classification{Type: model.LinkTypeWeb, ErrorDetail: "URL has no host"}
	}
	return Classification{Type: model.LinkTypeWeb, FormatValid: true}
}

func classifyNetwork(target string) Classification {
	trimmed := strings.TrimLeft(target, `\/`)
	if trimmed == "" {
		return Classification{Type: model.LinkTypeNetwork, ErrorDetail: "network path has no host"}
	}
	return Classification{Type: model.LinkTypeNetwork, FormatValid: true}
}
