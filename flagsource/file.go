package flagsource

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dzonerzy/go-respawn/respawn"
)

type file struct {
	path string
}

// File returns a provider that reads flags from path. The format follows the
// extension:
//
//	.txt, .flags    one flag per line, '#' starts a comment
//	.yaml, .yml     a sequence, or a mapping with a "flags" sequence
//	.toml           flags = ["--harmony", ...]
func File(path string) Provider {
	return file{path: path}
}

func (f file) Key() string {
	if abs, err := filepath.Abs(f.path); err == nil {
		return "file:" + abs
	}
	return "file:" + f.path
}

func (f file) Flags(context.Context) ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fileError(f.path, "cannot read flags file", err)
	}

	var flags []string
	switch ext := strings.ToLower(filepath.Ext(f.path)); ext {
	case ".txt", ".flags", "":
		flags = parseLines(data)
	case ".yaml", ".yml":
		flags, err = parseYAML(data)
	case ".toml":
		flags, err = parseTOML(data)
	default:
		return nil, fileError(f.path, "unsupported flags file format "+ext, nil)
	}
	if err != nil {
		return nil, fileError(f.path, "cannot parse flags file", err)
	}

	for _, flag := range flags {
		if !respawn.IsFlag(flag) {
			return nil, fileError(f.path, fmt.Sprintf("%q is not a flag", flag), nil).
				WithContext("entry", flag)
		}
	}
	return flags, nil
}

func parseLines(data []byte) []string {
	var flags []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			flags = append(flags, line)
		}
	}
	return flags
}

func parseYAML(data []byte) ([]string, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		return stringList(v)
	case map[string]any:
		list, ok := v["flags"].([]any)
		if !ok {
			return nil, fmt.Errorf("expected a \"flags\" sequence")
		}
		return stringList(list)
	default:
		return nil, fmt.Errorf("expected a sequence of flags, got %T", doc)
	}
}

func parseTOML(data []byte) ([]string, error) {
	var doc struct {
		Flags []string `toml:"flags"`
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}
	return doc.Flags, nil
}

func stringList(list []any) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("flag entries must be strings, got %T", e)
		}
		out = append(out, s)
	}
	return out, nil
}

func fileError(path, msg string, cause error) *respawn.Error {
	e := respawn.NewError(respawn.ErrorTypeConfiguration, msg).WithContext("path", path)
	if cause != nil {
		e = e.WithCause(cause)
	}
	return e
}
