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

// Package borgcli implements archivesource.Source and archivesource.
// Extractor by shelling out to the borg binary, the way watch.Watch shells
// out to "wr add" with a piped stdin.
package borgcli

import (
	"bufio"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/wtsi-hgi/borg-restore/archivesource"
	"github.com/wtsi-hgi/borg-restore/untaint"
)

// CLI talks to a borg repository via subprocesses.
type CLI struct {
	Repository string
	BorgPath   string // defaults to "borg" if empty
}

func (c *CLI) binary() string {
	if c.BorgPath != "" {
		return c.BorgPath
	}

	return "borg"
}

// ListArchives runs `borg list <repository>` and returns the first token of
// each output line.
func (c *CLI) ListArchives() ([]string, error) {
	out, err := exec.Command(c.binary(), "list", c.Repository).Output() //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("borgcli: list archives: %w", err)
	}

	var names []string

	scanner := bufio.NewScanner(strings.NewReader(string(out)))

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		names = append(names, fields[0])
	}

	return names, scanner.Err()
}

// ListArchive runs `borg list <repository>::<archive>` and streams its
// output lines to sink as they arrive.
func (c *CLI) ListArchive(archive string, sink archivesource.LineSink) error {
	if err := untaint.ArchiveName(archive); err != nil {
		return err
	}

	cmd := exec.Command(c.binary(), "list", c.Repository+"::"+archive) //nolint:gosec

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := sink(scanner.Text()); err != nil {
			cmd.Wait() //nolint:errcheck

			return err
		}
	}

	if err := scanner.Err(); err != nil {
		cmd.Wait() //nolint:errcheck

		return err
	}

	return cmd.Wait()
}

// Extract runs `borg extract --strip-components N <repository>::<archive>
// <path>` in the current working directory.
func (c *CLI) Extract(stripComponents int, archive, path string) error {
	if err := untaint.ArchiveName(archive); err != nil {
		return err
	}

	cmd := exec.Command(c.binary(), "extract", //nolint:gosec
		"--strip-components", strconv.Itoa(stripComponents),
		c.Repository+"::"+archive, path)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("borgcli: extract %s from %s: %w: %s", path, archive, err, out)
	}

	return nil
}
