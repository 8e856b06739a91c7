package remote

import "strings"

// FilterRepo reports whether repo passes the request's client-side filters.
// It is pure and applied identically after normalization regardless of
// which backend produced the record.
func FilterRepo(repo RemoteRepo, opts ImportOptions) bool {
	if !opts.IncludeForks && repo.IsFork {
		return false
	}
	if !opts.IncludeArchived && repo.IsArchived {
		return false
	}
	if opts.Language != "" && !strings.EqualFold(opts.Language, repo.Language) {
		return false
	}
	if len(opts.Topics) > 0 {
		have := make(map[string]bool, len(repo.Topics))
		for _, t := range repo.Topics {
			have[t] = true
		}
		for _, want := range opts.Topics {
			if !have[want] {
				return false
			}
		}
	}
	if repo.Stars < opts.MinStars {
		return false
	}
	return true
}
