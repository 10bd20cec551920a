package resolver

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/types"
)

// Source derives monitor targets from one part of the configuration
type Source interface {
	// Name identifies the source in logs
	Name() string
	// Targets returns the targets contributed by this source
	Targets(snapshot types.MonitorSnapshot, defaults Defaults) []types.MonitorTarget
}

// Defaults are the global monitoring values applied to every target
type Defaults struct {
	Interval time.Duration
	Timeout  time.Duration
	Retries  int
}

// DefaultsFrom converts monitoring settings into defaults, falling back to the
// built-in values for unset fields. An explicit Retries of 0 is kept.
func DefaultsFrom(settings types.MonitoringSettings) Defaults {
	d := Defaults{
		Interval: types.DefaultMonitorInterval,
		Timeout:  types.DefaultMonitorTimeout,
		Retries:  types.DefaultMonitorRetries,
	}
	if settings.DefaultInterval > 0 {
		d.Interval = time.Duration(settings.DefaultInterval) * time.Second
	}
	if settings.Timeout > 0 {
		d.Timeout = time.Duration(settings.Timeout) * time.Millisecond
	}
	if settings.Retries != nil && *settings.Retries >= 0 {
		d.Retries = *settings.Retries
	}
	return d
}

// interval returns seconds as a duration, or fallback when unset
func (d Defaults) interval(seconds int) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return d.Interval
}

// Resolver turns a configuration snapshot into the set of monitor targets
type Resolver struct {
	sources []Source
	logger  zerolog.Logger
}

// NewResolver creates a resolver over the given sources. With no sources it
// uses links and server-monitor widgets.
func NewResolver(sources ...Source) *Resolver {
	if len(sources) == 0 {
		sources = []Source{
			NewLinkSource(),
			NewWidgetServerSource(),
		}
	}
	return &Resolver{
		sources: sources,
		logger:  log.WithComponent("resolver"),
	}
}

// Resolve returns the targets of snapshot in first-seen order. When two
// entries share an id the later one wins.
func (r *Resolver) Resolve(snapshot types.MonitorSnapshot) []types.MonitorTarget {
	defaults := DefaultsFrom(snapshot.Monitoring)

	var out []types.MonitorTarget
	index := make(map[string]int)

	for _, src := range r.sources {
		for _, target := range src.Targets(snapshot, defaults) {
			if i, ok := index[target.ID]; ok {
				r.logger.Warn().
					Str("source", src.Name()).
					Str("target_id", target.ID).
					Msg("Duplicate monitor target id, keeping the later entry")
				out[i] = target
				continue
			}
			index[target.ID] = len(out)
			out = append(out, target)
		}
	}

	return out
}

// LinkSource yields one target per link with monitoring enabled
type LinkSource struct {
	logger zerolog.Logger
}

// NewLinkSource creates a link source
func NewLinkSource() *LinkSource {
	return &LinkSource{logger: log.WithComponent("resolver")}
}

// Name implements Source
func (s *LinkSource) Name() string { return "links" }

// Targets implements Source
func (s *LinkSource) Targets(snapshot types.MonitorSnapshot, defaults Defaults) []types.MonitorTarget {
	var targets []types.MonitorTarget

	for _, link := range snapshot.Links {
		mon := link.Monitoring
		if mon == nil || !mon.Enabled {
			continue
		}

		host := mon.Host
		if host == "" {
			var err error
			host, err = hostFromURL(link.URL)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("link_id", link.ID).
					Str("url", link.URL).
					Msg("Skipping monitored link without a usable host")
				continue
			}
		}

		targets = append(targets, types.MonitorTarget{
			ID:       LinkTargetID(link.ID),
			Name:     link.Name,
			Host:     host,
			Port:     mon.Port,
			Interval: defaults.interval(mon.Interval),
			Timeout:  defaults.Timeout,
			Retries:  defaults.Retries,
			Origin:   types.OriginLink,
			Ref:      types.TargetRef{LinkID: link.ID},
		})
	}

	return targets
}

// WidgetServerSource yields one target per server of every enabled
// server-monitor widget
type WidgetServerSource struct {
	logger zerolog.Logger
}

// NewWidgetServerSource creates a widget server source
func NewWidgetServerSource() *WidgetServerSource {
	return &WidgetServerSource{logger: log.WithComponent("resolver")}
}

// Name implements Source
func (s *WidgetServerSource) Name() string { return "widgets" }

// Targets implements Source
func (s *WidgetServerSource) Targets(snapshot types.MonitorSnapshot, defaults Defaults) []types.MonitorTarget {
	var targets []types.MonitorTarget

	for _, widget := range snapshot.Widgets {
		if widget.Type != types.WidgetTypeServerMonitor || !widget.Enabled {
			continue
		}

		for _, server := range widget.Config.Servers {
			if server.Host == "" {
				s.logger.Warn().
					Str("widget_id", widget.ID).
					Str("server_id", server.ID).
					Msg("Skipping widget server without a host")
				continue
			}

			targets = append(targets, types.MonitorTarget{
				ID:       WidgetServerTargetID(widget.ID, server.ID),
				Name:     server.Name,
				Host:     server.Host,
				Port:     server.Port,
				Interval: defaults.interval(server.Interval),
				Timeout:  defaults.Timeout,
				Retries:  defaults.Retries,
				Origin:   types.OriginWidgetServer,
				Ref:      types.TargetRef{WidgetID: widget.ID, ServerID: server.ID},
			})
		}
	}

	return targets
}

// LinkTargetID returns the monitor target id of a link
func LinkTargetID(linkID string) string {
	return "link-" + linkID
}

// WidgetServerTargetID returns the monitor target id of a widget server
func WidgetServerTargetID(widgetID, serverID string) string {
	return "widget-" + widgetID + "-" + serverID
}

func hostFromURL(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("url has no host")
	}
	return u.Hostname(), nil
}
