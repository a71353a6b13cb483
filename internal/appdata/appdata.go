// Package appdata loads and saves application descriptors (.app files).
package appdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/conn-castle/apps/internal/fsutil"
	"github.com/conn-castle/apps/internal/messages"
)

// Descriptor keys understood by the installer. Unknown keys are preserved as-is.
const (
	KeyID           = "id"
	KeyTitle        = "title"
	KeySlug         = "slug"
	KeyVersion      = "version"
	KeyDescription  = "description"
	KeyPackages     = "packages"
	KeyDependencies = "dependencies"
	KeyIconURL      = "icon_url"
	KeyExec         = "launch_command"
	KeyRunCommand   = "run_cmd"
	KeyCategories   = "categories"
)

// Descriptor is the parsed manifest of an application.
type Descriptor map[string]any

// ID returns the store identifier, if the descriptor carries one.
func (d Descriptor) ID() string {
	switch v := d[KeyID].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	}
	return ""
}

// Title returns the human readable application name.
func (d Descriptor) Title() string { return d.str(KeyTitle) }

// Slug returns the filesystem-safe application identifier.
func (d Descriptor) Slug() string { return d.str(KeySlug) }

// Version returns the declared version, if any.
func (d Descriptor) Version() string { return d.str(KeyVersion) }

// Description returns the one-line application summary.
func (d Descriptor) Description() string { return d.str(KeyDescription) }

// IconURL returns where the store serves the application icon.
func (d Descriptor) IconURL() string { return d.str(KeyIconURL) }

// Exec returns the command the launcher runs. It falls back to the slug.
func (d Descriptor) Exec() string {
	if cmd := d.str(KeyExec); cmd != "" {
		return cmd
	}
	return d.Slug()
}

// RunCommand returns an optional post-install shell command.
func (d Descriptor) RunCommand() string { return d.str(KeyRunCommand) }

// Packages returns the Debian packages providing the application.
func (d Descriptor) Packages() []string { return d.list(KeyPackages) }

// Dependencies returns extra Debian packages the application needs.
func (d Descriptor) Dependencies() []string { return d.list(KeyDependencies) }

// Categories returns the freedesktop menu categories.
func (d Descriptor) Categories() []string { return d.list(KeyCategories) }

func (d Descriptor) str(key string) string {
	s, _ := d[key].(string)
	return strings.TrimSpace(s)
}

// list accepts either a JSON array of strings or a single space separated string.
func (d Descriptor) list(key string) []string {
	switch v := d[key].(type) {
	case string:
		return strings.Fields(v)
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

// Parse decodes descriptor JSON and validates the required fields. Numbers are kept
// as json.Number so WriteFile reproduces them exactly. source is used in error messages.
func Parse(data []byte, source string) (Descriptor, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var d Descriptor
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf(messages.AppDataDecodeFmt, source, err)
	}
	if err := d.validate(source); err != nil {
		return nil, err
	}
	return d, nil
}

func (d Descriptor) validate(source string) error {
	for _, key := range []string{KeyTitle, KeySlug} {
		if d.str(key) == "" {
			return fmt.Errorf(messages.AppDataMissingFieldFmt, source, key)
		}
	}
	if d.FileSlug() == "" {
		return fmt.Errorf(messages.AppDataNoFileSlugFmt, source)
	}
	if v := d.Version(); v != "" {
		if _, err := goversion.NewVersion(v); err != nil {
			return fmt.Errorf(messages.AppDataInvalidVersionFmt, source, v, err)
		}
	}
	return nil
}

// LoadFile reads and validates the descriptor stored at path.
func LoadFile(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.AppDataReadFmt, path, err)
	}
	return Parse(data, path)
}

// WriteFile replaces path with the JSON encoding of d.
func WriteFile(path string, d Descriptor) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf(messages.AppDataEncodeFmt, d.Slug(), err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.AppDataWriteFmt, path, err)
	}
	return nil
}
