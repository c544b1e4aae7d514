// Package holidays provides holiday sources backed by local files and
// remote HTTP feeds.
package holidays

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

// File reads holidays from a YAML or JSON document on every fetch, so a
// forced reload picks up edits. The document is either a bare list of
// {date, name} entries or an object with a "holidays" list.
type File struct {
	Path string
}

// NewFile returns a File source for path.
func NewFile(path string) *File { return &File{Path: path} }

type document struct {
	Holidays []model.Holiday `json:"holidays" yaml:"holidays"`
}

func (f *File) FetchHolidays(ctx context.Context) ([]model.Holiday, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open holiday file: %w", err)
	}
	defer fh.Close()
	return Decode(fh, formatOf(f.Path))
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

// Decode parses a holiday document in the given format ("yaml" or "json").
// Entries are returned sorted by date; a later entry for the same date wins.
func Decode(r io.Reader, format string) ([]model.Holiday, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read holidays: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	var list []model.Holiday
	switch format {
	case "json":
		if raw[0] == '[' {
			err = json.Unmarshal(raw, &list)
		} else {
			var doc document
			err = json.Unmarshal(raw, &doc)
			list = doc.Holidays
		}
	case "yaml", "yml":
		var node yaml.Node
		if err = yaml.Unmarshal(raw, &node); err == nil && len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			err = node.Decode(&list)
		} else if err == nil {
			var doc document
			err = node.Decode(&doc)
			list = doc.Holidays
		}
	default:
		return nil, fmt.Errorf("unsupported holiday format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s holidays: %w", format, err)
	}
	return normalize(list)
}

func normalize(list []model.Holiday) ([]model.Holiday, error) {
	byDate := make(map[model.Date]model.Holiday, len(list))
	for i, h := range list {
		if h.Date.IsZero() {
			return nil, fmt.Errorf("holiday %d (%q): date is required", i, h.Name)
		}
		byDate[h.Date] = h
	}
	out := make([]model.Holiday, 0, len(byDate))
	for _, h := range byDate {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
