package codecommit

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/vcsync/vcsync/internal/remote"
)

// Runner executes one AWS CLI invocation and returns its stdout. The args
// are the subcommand and its arguments; the runner prepends the binary,
// the JSON output flag, and any region/profile flags.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// execRunner shells out to the real binary, bounding every call with a
// timeout so a broken credential provider cannot hang a fetch forever.
type execRunner struct {
	binary  string
	region  string
	profile string
	timeout time.Duration
}

func (r *execRunner) commandArgs(args []string) []string {
	full := []string{"--output", "json"}
	if r.region != "" {
		full = append(full, "--region", r.region)
	}
	if r.profile != "" {
		full = append(full, "--profile", r.profile)
	}
	return append(full, args...)
}

func (r *execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binary, r.commandArgs(args)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, remote.NewError(remote.KindServiceUnavailable, serviceName,
			"%s %s timed out after %s", r.binary, strings.Join(args, " "), r.timeout)
	}
	if errors.Is(err, exec.ErrNotFound) {
		// Binary vanished between the construction check and this call.
		return nil, remote.WrapError(remote.KindDependency, serviceName, err,
			"%s is no longer runnable", r.binary)
	}
	return nil, classifyCLIError(stderr.String(), err)
}

// classifyCLIError maps a non-zero CLI exit to an importer error by matching
// known substrings in the command's error text.
func classifyCLIError(stderr string, cause error) error {
	text := strings.TrimSpace(stderr)
	lower := strings.ToLower(text)

	for _, phrase := range []string{
		"unable to locate credentials",
		"invalidclienttokenid",
		"expiredtoken",
		"security token",
		"accessdenied",
	} {
		if strings.Contains(lower, phrase) {
			return remote.WrapError(remote.KindAuthentication, serviceName, cause, "%s", text)
		}
	}
	for _, phrase := range []string{
		"could not connect to the endpoint",
		"invalid endpoint",
		"endpoint url",
		"region",
	} {
		if strings.Contains(lower, phrase) {
			return remote.WrapError(remote.KindConfiguration, serviceName, cause, "%s", text)
		}
	}
	if text == "" {
		text = cause.Error()
	}
	return remote.WrapError(remote.KindConfiguration, serviceName, cause, "%s", text)
}
