// Package parser reads recorded Home Assistant responses from disk and serves
// them through the same source interfaces as the live client.
package parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-ha-logbook/internal/core/model"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

// Parser serves recorded history and logbook files. Files are either saved API
// responses (a JSON array, nested for history) or JSON Lines with one record per line.
// Parsed files are cached until their modification time changes.
type Parser struct {
	historyFile string
	logbookFile string

	mu    sync.Mutex
	cache map[string]cachedFile
}

type cachedFile struct {
	modTime time.Time
	history []model.RawStateSample
	logs    []model.RawLogEntry
}

// NewParser creates a Parser. Either file may be empty.
func NewParser(historyFile, logbookFile string) *Parser {
	return &Parser{
		historyFile: historyFile,
		logbookFile: logbookFile,
		cache:       make(map[string]cachedFile),
	}
}

// FetchHistory returns the recorded samples of the entity that fall in the window.
// The last sample before since is included with its time moved to since, the way
// Home Assistant reports the state at the start of a period.
func (p *Parser) FetchHistory(_ context.Context, entityID string, since, until time.Time) ([]model.RawStateSample, error) {
	if p.historyFile == "" {
		return nil, nil
	}
	all, err := p.ParseHistoryFile(p.historyFile)
	if err != nil {
		return nil, err
	}

	var (
		out     []model.RawStateSample
		initial *model.RawStateSample
	)
	for i := range all {
		s := all[i]
		if s.EntityID != entityID || s.ObservedAt.After(until) {
			continue
		}
		if s.ObservedAt.Before(since) {
			initial = &s
			continue
		}
		out = append(out, s)
	}
	if initial != nil {
		initial.ObservedAt = since
		out = append([]model.RawStateSample{*initial}, out...)
	}
	return out, nil
}

// FetchLogs returns the recorded logbook entries of the entity within the window.
func (p *Parser) FetchLogs(_ context.Context, entityID string, since, until time.Time) ([]model.RawLogEntry, error) {
	if p.logbookFile == "" {
		return nil, nil
	}
	all, err := p.ParseLogbookFile(p.logbookFile)
	if err != nil {
		return nil, err
	}

	var out []model.RawLogEntry
	for _, e := range all {
		if e.EntityID != entityID || e.When.Before(since) || e.When.After(until) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// FetchState returns the latest recorded sample of the entity, or nil when the
// history file has none. Without a history file every entity is assumed to exist.
func (p *Parser) FetchState(_ context.Context, entityID string) (*model.RawStateSample, error) {
	if p.historyFile == "" {
		return &model.RawStateSample{EntityID: entityID, State: model.StateUnknown}, nil
	}
	all, err := p.ParseHistoryFile(p.historyFile)
	if err != nil {
		return nil, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].EntityID == entityID {
			latest := all[i]
			return &latest, nil
		}
	}
	return nil, nil
}

// ParseHistoryFile parses a recorded history file, sorted by time.
func (p *Parser) ParseHistoryFile(path string) ([]model.RawStateSample, error) {
	cached, err := p.load(path, func(data []byte, c *cachedFile) error {
		samples, err := decodeHistory(data)
		if err != nil {
			return err
		}
		sort.SliceStable(samples, func(i, j int) bool {
			return samples[i].ObservedAt.Before(samples[j].ObservedAt)
		})
		c.history = samples
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cached.history, nil
}

// ParseLogbookFile parses a recorded logbook file, sorted by time.
func (p *Parser) ParseLogbookFile(path string) ([]model.RawLogEntry, error) {
	cached, err := p.load(path, func(data []byte, c *cachedFile) error {
		var entries []model.RawLogEntry
		if isArray(data) {
			if err := sonic.Unmarshal(data, &entries); err != nil {
				return err
			}
		} else {
			entries = decodeLines[model.RawLogEntry](path, data)
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].When.Before(entries[j].When.Time)
		})
		c.logs = entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cached.logs, nil
}

func (p *Parser) load(path string, decode func(data []byte, c *cachedFile) error) (cachedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return cachedFile{}, fmt.Errorf("failed to stat recorded file %s: %w", path, err)
	}

	p.mu.Lock()
	if cached, ok := p.cache[path]; ok && cached.modTime.Equal(info.ModTime()) {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	util.LogDebug("Parsing recorded file", util.F("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return cachedFile{}, fmt.Errorf("failed to read recorded file %s: %w", path, err)
	}

	c := cachedFile{modTime: info.ModTime()}
	if err := decode(data, &c); err != nil {
		return cachedFile{}, fmt.Errorf("failed to parse recorded file %s: %w", path, err)
	}

	p.mu.Lock()
	p.cache[path] = c
	p.mu.Unlock()

	return c, nil
}

// decodeHistory accepts the API shape [[...], [...]], a flat array, or JSON Lines.
func decodeHistory(data []byte) ([]model.RawStateSample, error) {
	trimmed := bytes.TrimSpace(data)
	if !isArray(trimmed) {
		return decodeLines[model.RawStateSample]("history", trimmed), nil
	}

	inner := bytes.TrimSpace(trimmed[1:])
	if len(inner) > 0 && inner[0] == '[' {
		var periods [][]model.RawStateSample
		if err := sonic.Unmarshal(trimmed, &periods); err != nil {
			return nil, err
		}
		var flat []model.RawStateSample
		for _, period := range periods {
			flat = append(flat, period...)
		}
		return flat, nil
	}

	var samples []model.RawStateSample
	if err := sonic.Unmarshal(trimmed, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// decodeLines parses JSON Lines, skipping lines that are not valid records.
func decodeLines[T any](name string, data []byte) []T {
	var out []T
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineCount := 0
	for scanner.Scan() {
		lineCount++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record T
		if err := sonic.Unmarshal(line, &record); err != nil {
			util.LogDebug(fmt.Sprintf("Skip invalid JSON line %s:%d - %v", name, lineCount, err))
			continue
		}
		out = append(out, record)
	}
	return out
}

func isArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}
