// Package cache keeps the client's local copy of tasks and the later backlog
// on disk, so reads and writes never wait on the network.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"

	"github.com/sandeepkv93/daycal/internal/model"
)

const (
	KeyTasks    = "calendar_tasks"
	KeyLater    = "later_backup"
	KeyProjects = "calendar_projects"
	KeyPhone    = "sms_phone"
)

type Cache struct {
	d *diskv.Diskv
}

// Open returns a cache rooted at dir. A leading ~ is expanded.
func Open(dir string) (*Cache, error) {
	path, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create %s: %w", path, err)
	}
	return &Cache{d: diskv.New(diskv.Options{
		BasePath:     path,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1024 * 1024,
	})}, nil
}

func expandHome(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("cache: empty directory")
	}
	return homedir.Expand(p)
}

func (c *Cache) readJSON(key string, into any) error {
	if !c.d.Has(key) {
		return nil
	}
	raw, err := c.d.Read(key)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return nil
}

func (c *Cache) writeJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.d.Write(key, raw)
}

func (c *Cache) Tasks() ([]model.Task, error) {
	out := make([]model.Task, 0)
	if err := c.readJSON(KeyTasks, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Cache) SetTasks(tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return c.writeJSON(KeyTasks, tasks)
}

func (c *Cache) Later() ([]model.LaterItem, error) {
	out := make([]model.LaterItem, 0)
	if err := c.readJSON(KeyLater, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Cache) SetLater(items []model.LaterItem) error {
	if items == nil {
		items = []model.LaterItem{}
	}
	return c.writeJSON(KeyLater, items)
}

func (c *Cache) Projects() ([]string, error) {
	out := make([]string, 0)
	if err := c.readJSON(KeyProjects, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Cache) SetProjects(projects []string) error {
	if projects == nil {
		projects = []string{}
	}
	return c.writeJSON(KeyProjects, projects)
}

// Phone is the last SMS destination the user typed.
func (c *Cache) Phone() string {
	if !c.d.Has(KeyPhone) {
		return ""
	}
	raw, err := c.d.Read(KeyPhone)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (c *Cache) SetPhone(phone string) error {
	return c.d.Write(KeyPhone, []byte(strings.TrimSpace(phone)))
}
