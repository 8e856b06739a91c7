package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vcsync/vcsync/internal/remote"
)

// WriteJSON writes formatted JSON to w, optionally wrapped in a slack code block.
func WriteJSON(w io.Writer, v any, slackMode bool) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	fmt.Fprintln(w, string(output))
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	return nil
}

// WriteRepoLine writes one repository as a single text line in the form
// "owner/name<TAB>url". The URL is the vcspull form of the clone URL.
func WriteRepoLine(w io.Writer, repo remote.RemoteRepo, useSSH bool) {
	fmt.Fprintf(w, "%s\t%s\n", repo.FullName(), repo.ToVcspullURL(useSSH))
}

// ReposJSON converts repositories into their stable dictionary form for
// JSON output.
func ReposJSON(repos []remote.RemoteRepo) []map[string]any {
	out := make([]map[string]any, 0, len(repos))
	for _, r := range repos {
		out = append(out, r.ToDict())
	}
	return out
}
