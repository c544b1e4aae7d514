package reschedule

import (
	"sort"
	"sync"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/model"
)

// ProjectCache is the displayed project list. Changes are applied
// optimistically and undone from a Snapshot when the write fails.
type ProjectCache struct {
	mu       sync.RWMutex
	projects map[string]model.Project
}

// Snapshot is the cached state of one project before a change.
type Snapshot struct {
	id      string
	project model.Project
	present bool
}

// NewProjectCache seeds the cache.
func NewProjectCache(list []model.Project) *ProjectCache {
	c := &ProjectCache{projects: make(map[string]model.Project, len(list))}
	c.Replace(list)
	return c
}

// Replace swaps the whole cache, e.g. after a reload from the store.
func (c *ProjectCache) Replace(list []model.Project) {
	m := make(map[string]model.Project, len(list))
	for _, p := range list {
		m[p.ID] = p.Clone()
	}
	c.mu.Lock()
	c.projects = m
	c.mu.Unlock()
}

// Get returns a copy of the cached project.
func (c *ProjectCache) Get(id string) (model.Project, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.projects[id]
	if !ok {
		return model.Project{}, false
	}
	return p.Clone(), true
}

// List returns the cached projects ordered by install date then id.
func (c *ProjectCache) List() []model.Project {
	c.mu.RLock()
	out := make([]model.Project, 0, len(c.projects))
	for _, p := range c.projects {
		out = append(out, p.Clone())
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if d := out[i].InstallDate.Compare(out[j].InstallDate); d != 0 {
			return d < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Snapshot captures the current entry for id.
func (c *ProjectCache) Snapshot(id string) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.projects[id]
	return Snapshot{id: id, project: p.Clone(), present: ok}
}

// Apply stores p, replacing any entry with the same id.
func (c *ProjectCache) Apply(p model.Project) {
	c.mu.Lock()
	c.projects[p.ID] = p.Clone()
	c.mu.Unlock()
}

// Revert restores the entry captured by s.
func (c *ProjectCache) Revert(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !s.present {
		delete(c.projects, s.id)
		return
	}
	c.projects[s.id] = s.project.Clone()
}
