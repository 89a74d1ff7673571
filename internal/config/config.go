// Package config loads the repository-set configuration naming which
// local git clones waymark operates over and which registry to publish to
// (§1.3's out-of-scope "configuration input" for spec §6). Nothing
// downstream of Load touches viper or the YAML file again; everything past
// this package works with repository.Descriptor slices.
package config

import "fmt"

// RegistryConfig names the package registry waymark publishes to and
// installs from.
type RegistryConfig struct {
	URL string `mapstructure:"url"`
}

// RepositoryEntry names one local repository clone by its canonical
// package name and its path on disk, relative to the workspace root (the
// directory that contains .waymark/) unless absolute.
type RepositoryEntry struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

// Config is the full `.waymark/config.yaml` document (§1.3).
type Config struct {
	Registry     RegistryConfig    `mapstructure:"registry"`
	Repositories []RepositoryEntry `mapstructure:"repositories"`
}

// Validate checks that the config names at least one repository and that
// every repository has a non-empty name and path, with no duplicate names.
func (c *Config) Validate() error {
	if len(c.Repositories) == 0 {
		return fmt.Errorf("config must name at least one repository")
	}

	seen := make(map[string]bool, len(c.Repositories))
	for _, r := range c.Repositories {
		if r.Name == "" {
			return fmt.Errorf("repository entry missing a name")
		}
		if r.Path == "" {
			return fmt.Errorf("repository %q missing a path", r.Name)
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate repository name %q", r.Name)
		}
		seen[r.Name] = true
	}

	if c.Registry.URL == "" {
		return fmt.Errorf("config must set registry.url")
	}

	return nil
}

// ResolvedDirs returns each repository's path resolved relative to
// configDir, preserving the config's repository order.
func (c *Config) ResolvedDirs(configDir string) []string {
	dirs := make([]string, len(c.Repositories))
	for i, r := range c.Repositories {
		dirs[i] = resolvePath(configDir, r.Path)
	}
	return dirs
}

// Names returns the canonical names of every configured repository, in
// config order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Repositories))
	for i, r := range c.Repositories {
		names[i] = r.Name
	}
	return names
}
