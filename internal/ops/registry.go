// Registry implements RegistryOps against an HTTP package registry and the
// environment's install/cache-clean sub-commands. No HTTP client library
// appears anywhere in the example pack, so this one corner uses net/http
// directly (see DESIGN.md).
package ops

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	waymarkerrors "github.com/waymark/waymark/internal/errors"
	"github.com/waymark/waymark/pkg/semver"
)

// Registry is the production RegistryOps implementation.
type Registry struct {
	BaseURL        string
	Client         *http.Client
	Process        ProcessOps
	InstallCommand string
	CleanCommand   string
	CleanArgs      []string
}

// NewRegistry returns a RegistryOps backed by baseURL and process.
func NewRegistry(baseURL string, process ProcessOps) *Registry {
	return &Registry{
		BaseURL:        baseURL,
		Client:         &http.Client{Timeout: 30 * time.Second},
		Process:        process,
		InstallCommand: "install",
		CleanCommand:   "cache",
		CleanArgs:      []string{"clean"},
	}
}

// IsPackageAvailable queries the registry for name@version and returns true
// iff that exact version is fetchable.
func (r *Registry) IsPackageAvailable(name string, version semver.Version) (bool, error) {
	url := fmt.Sprintf("%s/%s/%s", r.BaseURL, name, version.String())
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return false, waymarkerrors.NewNetworkError("build availability request", err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return false, waymarkerrors.NewNetworkError("query registry for "+name+"@"+version.String(), err)
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// WaitForPackage polls IsPackageAvailable with exponential backoff and
// jitter until the version is available, policy.MaxAttempts is exhausted,
// or policy.Timeout elapses (§4.9).
func (r *Registry) WaitForPackage(name string, version semver.Version, policy WaitPolicy) error {
	ctx, cancel := context.WithTimeout(context.Background(), policy.Timeout)
	defer cancel()

	delay := policy.Initial
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		available, err := r.IsPackageAvailable(name, version)
		if err == nil && available {
			return nil
		}

		if attempt == policy.MaxAttempts {
			break
		}

		jitter := time.Duration(rand.Int63n(int64(delay) / 10 + 1))
		select {
		case <-ctx.Done():
			return waymarkerrors.NewNetworkError(fmt.Sprintf("waiting for %s@%s to become available", name, version.String()), ctx.Err())
		case <-time.After(delay + jitter):
		}

		delay = time.Duration(float64(delay) * policy.Growth)
		if delay > policy.Max {
			delay = policy.Max
		}
	}

	return waymarkerrors.NewNetworkError(fmt.Sprintf("%s@%s did not become available after %d attempts", name, version.String(), policy.MaxAttempts), nil)
}

// CheckIdentity verifies the configured registry credentials resolve to an
// authenticated identity.
func (r *Registry) CheckIdentity() error {
	req, err := http.NewRequest(http.MethodGet, r.BaseURL+"/-/whoami", nil)
	if err != nil {
		return waymarkerrors.NewNetworkError("build identity request", err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return waymarkerrors.NewNetworkError("check registry identity", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return waymarkerrors.NewNetworkError(fmt.Sprintf("registry identity check failed with status %d", resp.StatusCode), nil)
	}
	return nil
}

// Ping verifies the registry is reachable.
func (r *Registry) Ping() error {
	req, err := http.NewRequest(http.MethodGet, r.BaseURL+"/-/ping", nil)
	if err != nil {
		return waymarkerrors.NewNetworkError("build ping request", err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return waymarkerrors.NewNetworkError("ping registry", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return waymarkerrors.NewNetworkError(fmt.Sprintf("registry ping failed with status %d", resp.StatusCode), nil)
	}
	return nil
}

func (r *Registry) Install(cwd string) (ProcessResult, error) {
	return r.Process.Spawn(ProcessSpec{Cmd: r.InstallCommand, Cwd: cwd})
}

func (r *Registry) CacheClean(cwd string) error {
	result, err := r.Process.Spawn(ProcessSpec{Cmd: r.CleanCommand, Args: r.CleanArgs, Cwd: cwd})
	if err != nil {
		return err
	}
	if !result.OK {
		return waymarkerrors.NewNetworkError("cache clean failed: "+result.Stderr, nil)
	}
	return nil
}
