package digo

import (
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// ServiceInfo describes one registration.
type ServiceInfo struct {
	Type        string
	Lifetime    Lifetime
	Constructor string
	Params      []string
	Cached      bool
}

// Services lists the registrations ordered by interface name. Cached is set
// for singletons that have been built and for scoped services built in the
// calling goroutine's current scope.
func (c *Container) Services() []ServiceInfo {
	keys := c.registry.Keys()
	current := c.scopes.Current()
	singletons := c.resolver.Singletons()

	services := make([]ServiceInfo, 0, len(keys))
	for _, t := range keys {
		entry, err := c.registry.Get(t)
		if err != nil {
			// unregistered concurrently
			continue
		}

		var cached bool
		switch entry.Lifetime {
		case Singleton:
			cached = singletons.Contains(t)
		case Scoped:
			if current != nil {
				_, cached = current.GetInstance(t)
			}
		}

		services = append(services, ServiceInfo{
			Type:        t.String(),
			Lifetime:    entry.Lifetime,
			Constructor: entry.Constructor.Name(),
			Params:      entry.Constructor.Params(),
			Cached:      cached,
		})
	}
	return services
}

// Describe writes the registrations to w as a table.
func (c *Container) Describe(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Interface", "Lifetime", "Constructor", "Parameters", "Cached"})

	for _, svc := range c.Services() {
		cached := ""
		if svc.Cached {
			cached = "yes"
		}
		t.AppendRow(table.Row{svc.Type, svc.Lifetime.String(), shortName(svc.Constructor), strings.Join(svc.Params, "\n"), cached})
	}
	t.AppendFooter(table.Row{"", "", "", "services", c.registry.Len()})
	t.Render()
}

// PrintDescribe writes the registration table to stdout.
func (c *Container) PrintDescribe() {
	c.Describe(os.Stdout)
}

// SprintDescribe returns the registration table as a string.
func (c *Container) SprintDescribe() string {
	var sb strings.Builder
	c.Describe(&sb)
	return sb.String()
}

// shortName strips the import path from a function name.
func shortName(s string) string {
	if idx := strings.LastIndex(s, "/"); idx != -1 {
		return s[idx+1:]
	}
	return s
}
