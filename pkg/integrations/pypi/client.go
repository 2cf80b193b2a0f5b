package pypi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/pipelock/pkg/cache"
	"github.com/matzehuels/pipelock/pkg/integrations"
	"github.com/matzehuels/pipelock/pkg/pep"
)

// ErrNoReleases is returned by ReleaseHashes when the index has no
// release metadata for the requested version. Callers treat this as a
// signal to fall back to resolver-provided hashes rather than a hard
// failure.
var ErrNoReleases = errors.New("no release metadata")

// properNameTimeout bounds ProperName lookups. The lookup is cosmetic,
// so it fails fast rather than delaying the caller.
const properNameTimeout = 300 * time.Millisecond

// Client provides access to the PyPI JSON API.
type Client struct {
	*integrations.Client
	baseURL  string
	nameHTTP *http.Client
}

// NewClient creates a PyPI client with the given cache backend.
// Pass cache.NullCache{} to disable response caching.
func NewClient(backend cache.Cache, ttl time.Duration) *Client {
	return &Client{
		Client:   integrations.NewClient(backend, ttl, nil),
		baseURL:  "https://pypi.org/pypi",
		nameHTTP: &http.Client{Timeout: properNameTimeout},
	}
}

type apiResponse struct {
	Releases map[string][]apiArtifact `json:"releases"`
}

type apiArtifact struct {
	Digests struct {
		SHA256 string `json:"sha256"`
	} `json:"digests"`
}

// ReleaseHashes returns the sha256 digests of all artifacts published
// for the given package version, each prefixed with "sha256:".
//
// The package name is normalized before the request and every release
// key is normalized before lookup, so callers can pass resolver output
// directly. ErrNoReleases is returned when the version has no release
// entry; an empty slice with a nil error means the entry exists but
// carries no digests.
func (c *Client) ReleaseHashes(ctx context.Context, name, version string) ([]string, error) {
	pkg := pep.NormalizeName(name)
	version = pep.NormalizeVersion(version)

	var data apiResponse
	if err := c.GetJSON(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		return nil, err
	}

	cleaned := make(map[string][]apiArtifact, len(data.Releases))
	for apiVersion, artifacts := range data.Releases {
		cleaned[pep.NormalizeVersion(apiVersion)] = artifacts
	}

	artifacts, ok := cleaned[version]
	if !ok {
		return nil, fmt.Errorf("%w for %s %s", ErrNoReleases, pkg, version)
	}

	hashes := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		if artifact.Digests.SHA256 != "" {
			hashes = append(hashes, "sha256:"+artifact.Digests.SHA256)
		}
	}
	return hashes, nil
}

// ProperName returns the canonically cased project name as published
// on the index. The JSON endpoint redirects to the canonical spelling,
// so the name is read back from the final request url.
//
// A non-success response maps to [integrations.ErrNotFound]; transport
// failures are returned as-is. Either way callers are expected to fall
// back to the name they already have.
func (c *Client) ProperName(ctx context.Context, name string) (string, error) {
	url := fmt.Sprintf("%s/%s/json", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.nameHTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unable to find package %s in the index", integrations.ErrNotFound, name)
	}

	return nameFromURL(resp.Request.URL.Path, name), nil
}

// nameFromURL extracts <name> from a ".../pypi/<name>/json" path,
// returning fallback when the path has an unexpected shape.
func nameFromURL(path, fallback string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) >= 2 && segments[len(segments)-1] == "json" {
		return segments[len(segments)-2]
	}
	return fallback
}
