package remote

import (
	"strconv"
	"strings"
)

// Mode selects how the target is interpreted when listing repositories.
type Mode string

const (
	// ModeUser lists repositories owned by a user account.
	ModeUser Mode = "user"
	// ModeOrg lists repositories owned by an organization or group.
	ModeOrg Mode = "org"
	// ModeSearch runs a repository search query.
	ModeSearch Mode = "search"
)

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeUser:
		return ModeUser, nil
	case ModeOrg:
		return ModeOrg, nil
	case ModeSearch:
		return ModeSearch, nil
	default:
		return "", NewError(KindConfiguration, "", "unknown mode %q (want user, org, or search)", s)
	}
}

// ImportOptions is the request handed to an Importer for one fetch. It is
// validated by NewImportOptions and treated as read-only afterwards; a
// fresh value is built for every fetch.
type ImportOptions struct {
	Mode            Mode
	Target          string
	BaseURL         string
	Token           string
	IncludeForks    bool
	IncludeArchived bool
	Language        string
	Topics          []string
	MinStars        int
	Limit           int
}

// NewImportOptions validates o and returns an independent copy. The Topics
// slice is copied so later caller mutation cannot leak into a running fetch.
func NewImportOptions(o ImportOptions) (ImportOptions, error) {
	if o.Limit < 1 {
		return ImportOptions{}, NewError(KindConfiguration, "", "limit must be >= 1, got %d", o.Limit)
	}
	if o.MinStars < 0 {
		return ImportOptions{}, NewError(KindConfiguration, "", "min stars must be >= 0, got %d", o.MinStars)
	}
	switch o.Mode {
	case ModeUser, ModeOrg, ModeSearch:
	default:
		return ImportOptions{}, NewError(KindConfiguration, "", "unknown mode %q", string(o.Mode))
	}
	if len(o.Topics) > 0 {
		topics := make([]string, len(o.Topics))
		copy(topics, o.Topics)
		o.Topics = topics
	}
	return o, nil
}

// CacheKey returns a stable key identifying this request for result caching.
func (o ImportOptions) CacheKey(service string) string {
	var b strings.Builder
	b.WriteString(service)
	b.WriteByte(':')
	b.WriteString(string(o.Mode))
	b.WriteByte(':')
	b.WriteString(o.Target)
	b.WriteByte(':')
	b.WriteString(o.BaseURL)
	if o.IncludeForks {
		b.WriteString(":forks")
	}
	if o.IncludeArchived {
		b.WriteString(":archived")
	}
	if o.Language != "" {
		b.WriteString(":lang=" + o.Language)
	}
	if len(o.Topics) > 0 {
		b.WriteString(":topics=" + strings.Join(o.Topics, ","))
	}
	if o.MinStars > 0 {
		b.WriteString(":stars>=")
		b.WriteString(strconv.Itoa(o.MinStars))
	}
	b.WriteString(":limit=")
	b.WriteString(strconv.Itoa(o.Limit))
	return b.String()
}
