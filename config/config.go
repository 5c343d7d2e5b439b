/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// Package config loads the process-wide configuration for borg-restore: the
// backup repository URL, an optional cache base path override, and the
// ordered list of path rewrite rules applied to a lookup path before it is
// queried against the index.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Error is the custom error type for the config package.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrNoRepository is returned when a config file omits the repository URL.
	ErrNoRepository = Error("config: repository is required")
	// ErrBadRewriteRule is returned when a rewrite rule's regex fails to compile.
	ErrBadRewriteRule = Error("config: invalid rewrite rule")
)

// RewriteRule is a single regex -> replacement pair applied, in order, to
// an absolute lookup path before it is queried against the index. The first
// rule whose regex matches wins; its replacement is applied and no further
// rules are tried.
type RewriteRule struct {
	Regex       string `yaml:"regex"`
	Replacement string `yaml:"replacement"`

	compiled *regexp.Regexp
}

// Config is the process-wide configuration for borg-restore.
type Config struct {
	// Repository is the backup tool's repository URL, passed through to
	// every archive-source and extractor invocation.
	Repository string `yaml:"repository"`

	// CacheBase overrides $XDG_CACHE_HOME/borg-restore.pl (or
	// $HOME/.cache/borg-restore.pl) as the directory holding the index.
	CacheBase string `yaml:"cache_base"`

	// Rewrites is the ordered list of path rewrite rules.
	Rewrites []RewriteRule `yaml:"rewrites"`

	// DirectTable selects the ancestor-cache aggregation strategy over the
	// default full in-memory tree. It trades peak memory for a dependency
	// on ingest ordering (archive listings must be depth-first).
	DirectTable bool `yaml:"direct_table"`
}

// Load reads and parses a YAML config file at path, compiling every rewrite
// rule's regex up front so a bad config fails fast rather than at query time.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if cfg.Repository == "" {
		return nil, ErrNoRepository
	}

	for i := range cfg.Rewrites {
		re, err := regexp.Compile(cfg.Rewrites[i].Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrBadRewriteRule, cfg.Rewrites[i].Regex, err)
		}

		cfg.Rewrites[i].compiled = re
	}

	return &cfg, nil
}

// Rewrite applies the first matching rewrite rule to path and returns the
// result. If no rule matches, path is returned unchanged.
func (c *Config) Rewrite(path string) string {
	for _, r := range c.Rewrites {
		if r.compiled.MatchString(path) {
			return r.compiled.ReplaceAllString(path, r.Replacement)
		}
	}

	return path
}

// DefaultCacheBase returns $XDG_CACHE_HOME/borg-restore.pl, falling back to
// $HOME/.cache/borg-restore.pl when XDG_CACHE_HOME is unset.
func DefaultCacheBase() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg + "/borg-restore.pl"
	}

	return os.Getenv("HOME") + "/.cache/borg-restore.pl"
}

// CacheBaseOrDefault returns c.CacheBase if set, else DefaultCacheBase().
func (c *Config) CacheBaseOrDefault() string {
	if c.CacheBase != "" {
		return c.CacheBase
	}

	return DefaultCacheBase()
}
