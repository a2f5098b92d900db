// Package inventory loads the device inventory from YAML files.
//
// The inventory follows the hosts/groups/defaults layout: hosts.yaml is
// required, groups.yaml and defaults.yaml are optional. Attribute
// resolution order is host, then the host's groups in listed order,
// then defaults. Hosts are resolved once at load time and treated as
// immutable for the duration of a run.
package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/netauto-dev/netauto/pkg/filter"
)

// Host is one device in the inventory, fully resolved against its
// groups and the inventory defaults.
type Host struct {
	Name     string            `yaml:"-"`
	Hostname string            `yaml:"hostname"`
	Platform string            `yaml:"platform"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Groups   []string          `yaml:"groups"`
	Data     map[string]string `yaml:"data"`
}

// Attributes returns the flat attribute map predicates evaluate
// against: the data bag plus the identity and connection attributes.
func (h *Host) Attributes() map[string]string {
	attrs := make(map[string]string, len(h.Data)+3)
	for k, v := range h.Data {
		attrs[k] = v
	}
	attrs["name"] = h.Name
	attrs["hostname"] = h.Hostname
	attrs["platform"] = h.Platform
	return attrs
}

// Role returns the host's role attribute, or "" if unset.
func (h *Host) Role() string {
	return h.Data["role"]
}

// Addr returns the host's dial address, defaulting the port to 22.
func (h *Host) Addr() string {
	port := h.Port
	if port == 0 {
		port = 22
	}
	return h.Hostname + ":" + strconv.Itoa(port)
}

// group holds group-level attribute defaults.
type group struct {
	Hostname string            `yaml:"hostname"`
	Platform string            `yaml:"platform"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Data     map[string]string `yaml:"data"`
}

// Inventory is the read-only host collection for one run.
type Inventory struct {
	hosts map[string]*Host
}

// Load reads hosts.yaml plus optional groups.yaml and defaults.yaml
// from dir and returns the resolved inventory.
func Load(dir string) (*Inventory, error) {
	var hosts map[string]*Host
	if err := readYAML(filepath.Join(dir, "hosts.yaml"), &hosts, true); err != nil {
		return nil, err
	}

	var groups map[string]*group
	if err := readYAML(filepath.Join(dir, "groups.yaml"), &groups, false); err != nil {
		return nil, err
	}

	var defaults group
	if err := readYAML(filepath.Join(dir, "defaults.yaml"), &defaults, false); err != nil {
		return nil, err
	}

	for name, h := range hosts {
		if h == nil {
			h = &Host{}
			hosts[name] = h
		}
		h.Name = name

		for _, gname := range h.Groups {
			g, ok := groups[gname]
			if !ok {
				return nil, fmt.Errorf("host %s references unknown group %q", name, gname)
			}
			mergeLayer(h, g)
		}
		mergeLayer(h, &defaults)

		if h.Hostname == "" {
			h.Hostname = name
		}
	}

	return &Inventory{hosts: hosts}, nil
}

// mergeLayer fills unset host fields from a lower-precedence layer.
func mergeLayer(h *Host, g *group) {
	if g == nil {
		return
	}
	if h.Hostname == "" {
		h.Hostname = g.Hostname
	}
	if h.Platform == "" {
		h.Platform = g.Platform
	}
	if h.Port == 0 {
		h.Port = g.Port
	}
	if h.Username == "" {
		h.Username = g.Username
	}
	if h.Password == "" {
		h.Password = g.Password
	}
	for k, v := range g.Data {
		if h.Data == nil {
			h.Data = make(map[string]string)
		}
		if _, ok := h.Data[k]; !ok {
			h.Data[k] = v
		}
	}
}

func readYAML(path string, out interface{}, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("reading inventory file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing inventory file %s: %w", path, err)
	}
	return nil
}

// New builds an inventory from already-resolved hosts. Used by tests
// and by callers that source hosts elsewhere.
func New(hosts ...*Host) *Inventory {
	m := make(map[string]*Host, len(hosts))
	for _, h := range hosts {
		m[h.Name] = h
	}
	return &Inventory{hosts: m}
}

// Len returns the number of hosts in the inventory.
func (inv *Inventory) Len() int {
	return len(inv.hosts)
}

// Host returns a host by name.
func (inv *Inventory) Host(name string) (*Host, bool) {
	h, ok := inv.hosts[name]
	return h, ok
}

// All returns every host sorted by name.
func (inv *Inventory) All() []*Host {
	return inv.Filter(nil)
}

// Filter returns the hosts matching the predicate, sorted by name.
// A nil predicate matches every host.
func (inv *Inventory) Filter(pred filter.Predicate) []*Host {
	var out []*Host
	for _, h := range inv.hosts {
		if pred == nil || pred.Matches(h.Attributes()) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
