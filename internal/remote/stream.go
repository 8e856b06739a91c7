package remote

import "context"

// PageFunc fetches the next raw page of normalized repositories. It returns
// the page, whether more pages may follow, and an error. Implementations
// must keep whatever pagination state they need (page number, continuation
// token) in their closure, and must use the same fixed page size on every
// call within one fetch.
type PageFunc func(ctx context.Context) ([]RemoteRepo, bool, error)

// RepoStream is a lazy, finite, forward-only sequence of repositories.
// Pages are pulled strictly on demand: once the consumer stops calling
// Next, no further network or subprocess calls occur. A stream is for one
// fetch only and is not safe for concurrent use.
type RepoStream struct {
	opts    ImportOptions
	fetch   PageFunc
	buf     []RemoteRepo
	pos     int
	more    bool
	yielded int
	done    bool
	closeFn func()
}

// NewRepoStream builds a stream over fetch, filtering each raw record and
// capping post-filter yields at opts.Limit.
func NewRepoStream(opts ImportOptions, fetch PageFunc) *RepoStream {
	return &RepoStream{opts: opts, fetch: fetch, more: true}
}

// OnClose registers fn to run when the stream finishes, whether by
// exhaustion, error, or an early Close.
func (s *RepoStream) OnClose(fn func()) {
	s.closeFn = fn
}

// Next returns the next repository passing the filters, or (nil, nil) once
// the stream is exhausted. After an error or exhaustion the stream stays
// terminated and issues no further calls.
func (s *RepoStream) Next(ctx context.Context) (*RemoteRepo, error) {
	if s.done {
		return nil, nil
	}
	for {
		for s.pos < len(s.buf) {
			repo := s.buf[s.pos]
			s.pos++
			if !FilterRepo(repo, s.opts) {
				continue
			}
			s.yielded++
			if s.yielded >= s.opts.Limit {
				s.finish()
			}
			return &repo, nil
		}
		if !s.more {
			s.finish()
			return nil, nil
		}
		page, more, err := s.fetch(ctx)
		if err != nil {
			s.finish()
			return nil, err
		}
		s.buf = page
		s.pos = 0
		s.more = more
	}
}

// Close terminates the stream early and releases its resources. It is safe
// to call more than once.
func (s *RepoStream) Close() {
	s.finish()
}

func (s *RepoStream) finish() {
	if s.done {
		return
	}
	s.done = true
	s.buf = nil
	if s.closeFn != nil {
		s.closeFn()
		s.closeFn = nil
	}
}

// Collect drains the stream into a slice.
func (s *RepoStream) Collect(ctx context.Context) ([]RemoteRepo, error) {
	defer s.Close()
	var repos []RemoteRepo
	for {
		repo, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if repo == nil {
			return repos, nil
		}
		repos = append(repos, *repo)
	}
}
