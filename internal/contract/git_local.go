package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(_ context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.Command("git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git clone' first", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// CommitExists implements the GitClient interface.
func (c *LocalGitClient) CommitExists(ctx context.Context, repoPath string, ref string) bool {
	_, err := c.Run(ctx, repoPath, "cat-file", "-e", ref+"^{commit}")
	return err == nil
}

// FirstParent implements the GitClient interface. It returns an empty string
// for a root commit, which callers treat as an empty change set.
func (c *LocalGitClient) FirstParent(ctx context.Context, repoPath string, sha string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-list", "--parents", "-n", "1", sha)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) < 2 {
		return "", nil // Root commit
	}
	return fields[1], nil
}

// DiffNameStatus implements the GitClient interface.
func (c *LocalGitClient) DiffNameStatus(ctx context.Context, repoPath string, fromRef, toRef string) ([]byte, error) {
	return c.Run(ctx, repoPath, "diff", "--name-status", "-M", fromRef, toRef)
}

// DiffNumstat implements the GitClient interface.
func (c *LocalGitClient) DiffNumstat(ctx context.Context, repoPath string, fromRef, toRef string) ([]byte, error) {
	return c.Run(ctx, repoPath, "diff", "--numstat", "-M", fromRef, toRef)
}
