package types

import (
	"encoding/json"
	"time"
)

// Document is the full dashboard configuration as persisted and exported
type Document struct {
	Settings   Settings   `json:"settings"`
	Categories []Category `json:"categories"`
	Links      []Link     `json:"links"`
	Widgets    []Widget   `json:"widgets"`
}

// Settings holds appearance settings and the global monitoring defaults
type Settings struct {
	SiteName               string              `json:"siteName"`
	TitleSize              string              `json:"titleSize,omitempty"`
	TitleAlignment         string              `json:"titleAlignment,omitempty"`
	ShowTitle              *bool               `json:"showTitle,omitempty"`
	SiteLogo               string              `json:"siteLogo,omitempty"`
	SiteLogoMode           string              `json:"siteLogoMode,omitempty"`
	BackgroundColor        string              `json:"backgroundColor"`
	BackgroundImage        string              `json:"backgroundImage,omitempty"`
	FontFamily             string              `json:"fontFamily"`
	TitleFontFamily        string              `json:"titleFontFamily"`
	TextColor              string              `json:"textColor"`
	AccentColor            string              `json:"accentColor"`
	Theme                  string              `json:"theme,omitempty"`
	LinkDisplayMode        string              `json:"linkDisplayMode"`
	Columns                int                 `json:"columns"`
	LinkOpenBehavior       string              `json:"linkOpenBehavior"`
	ShowLinkIcons          bool                `json:"showLinkIcons"`
	ShowCategoryBackground bool                `json:"showCategoryBackground,omitempty"`
	LinkHoverEffect        string              `json:"linkHoverEffect"`
	CategoryHoverEffect    string              `json:"categoryHoverEffect"`
	CategoryHeadingSize    string              `json:"categoryHeadingSize,omitempty"`
	NestingAnimation       string              `json:"nestingAnimation"`
	Monitoring             *MonitoringSettings `json:"monitoringSettings,omitempty"`
}

// MonitoringSettings are the global defaults applied to every monitored host
type MonitoringSettings struct {
	DefaultInterval int  `json:"defaultInterval"` // Seconds between checks
	Timeout         int  `json:"timeout"`         // Milliseconds per probe attempt
	Retries         *int `json:"retries,omitempty"`
}

// Default monitoring values used when settings leave a field unset
const (
	DefaultMonitorInterval = 60 * time.Second
	DefaultMonitorTimeout  = 5 * time.Second
	DefaultMonitorRetries  = 2
)

// Category groups links on the dashboard
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Order    int    `json:"order"`
}

// Link is a dashboard entry, optionally monitored
type Link struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	URL          string          `json:"url"`
	CategoryID   string          `json:"categoryId"`
	Tags         []string        `json:"tags"`
	Icon         string          `json:"icon,omitempty"`
	CustomIcon   string          `json:"customIcon,omitempty"`
	OpenBehavior string          `json:"openBehavior,omitempty"`
	Order        int             `json:"order"`
	Monitoring   *LinkMonitoring `json:"monitoring,omitempty"`
}

// LinkMonitoring configures liveness monitoring for a link
type LinkMonitoring struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host,omitempty"` // Defaults to the link URL hostname
	Port     int    `json:"port,omitempty"` // 0 means ICMP ping
	Interval int    `json:"interval,omitempty"`
}

// WidgetType identifies the kind of widget
type WidgetType string

const (
	WidgetTypeClock         WidgetType = "clock"
	WidgetTypeWeather       WidgetType = "weather"
	WidgetTypeIframe        WidgetType = "iframe"
	WidgetTypeServerMonitor WidgetType = "server-monitor"
)

// Valid reports whether the widget type is one the dashboard knows how to render
func (t WidgetType) Valid() bool {
	switch t {
	case WidgetTypeClock, WidgetTypeWeather, WidgetTypeIframe, WidgetTypeServerMonitor:
		return true
	}
	return false
}

// Widget is a small dashboard panel
type Widget struct {
	ID      string       `json:"id"`
	Type    WidgetType   `json:"type"`
	Title   string       `json:"title,omitempty"`
	Enabled bool         `json:"enabled"`
	Order   int          `json:"order"`
	Config  WidgetConfig `json:"config"`
}

// WidgetConfig carries the per-type widget options. Only the fields
// relevant to the widget's type are populated.
type WidgetConfig struct {
	// Clock
	Timezone string `json:"timezone,omitempty"`
	Format   string `json:"format,omitempty"`

	// Weather
	Location string `json:"location,omitempty"`
	Units    string `json:"units,omitempty"`

	// Iframe
	URL    string `json:"url,omitempty"`
	Height int    `json:"height,omitempty"`

	// Server monitor
	Servers []WidgetServer `json:"servers,omitempty"`
}

// WidgetServer is one host listed in a server-monitor widget
type WidgetServer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"`
	Interval int    `json:"interval,omitempty"`
}

// MonitorSnapshot is the read-only view of the configuration the monitor needs
type MonitorSnapshot struct {
	Links      []Link
	Widgets    []Widget
	Monitoring MonitoringSettings
}

// OriginKind records where a monitor target was derived from
type OriginKind string

const (
	OriginLink         OriginKind = "link"
	OriginWidgetServer OriginKind = "widgetServer"
)

// TargetRef holds the ids needed to re-derive a target from configuration
type TargetRef struct {
	LinkID   string `json:"linkId,omitempty"`
	WidgetID string `json:"widgetId,omitempty"`
	ServerID string `json:"serverId,omitempty"`
}

// MonitorTarget is a host to probe, derived from configuration and never
// persisted. Its JSON form carries intervalSeconds and timeoutMs.
type MonitorTarget struct {
	ID       string
	Name     string
	Host     string
	Port     int // 0 means ICMP ping
	Interval time.Duration
	Timeout  time.Duration
	Retries  int
	Origin   OriginKind
	Ref      TargetRef
}

type monitorTargetJSON struct {
	ID              string     `json:"id"`
	Name            string     `json:"name,omitempty"`
	Host            string     `json:"host"`
	Port            *int       `json:"port"`
	IntervalSeconds int64      `json:"intervalSeconds"`
	TimeoutMs       int64      `json:"timeoutMs"`
	Retries         int        `json:"retries"`
	Origin          OriginKind `json:"origin"`
	Ref             TargetRef  `json:"ref"`
}

// MarshalJSON encodes durations in explicit units and an ICMP port as null
func (t MonitorTarget) MarshalJSON() ([]byte, error) {
	return json.Marshal(monitorTargetJSON{
		ID:              t.ID,
		Name:            t.Name,
		Host:            t.Host,
		Port:            PortPtr(t.Port),
		IntervalSeconds: int64(t.Interval / time.Second),
		TimeoutMs:       t.Timeout.Milliseconds(),
		Retries:         t.Retries,
		Origin:          t.Origin,
		Ref:             t.Ref,
	})
}

// UnmarshalJSON decodes the form written by MarshalJSON
func (t *MonitorTarget) UnmarshalJSON(data []byte) error {
	var v monitorTargetJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*t = MonitorTarget{
		ID:       v.ID,
		Name:     v.Name,
		Host:     v.Host,
		Interval: time.Duration(v.IntervalSeconds) * time.Second,
		Timeout:  time.Duration(v.TimeoutMs) * time.Millisecond,
		Retries:  v.Retries,
		Origin:   v.Origin,
		Ref:      v.Ref,
	}
	if v.Port != nil {
		t.Port = *v.Port
	}
	return nil
}

// SameParams reports whether two targets would be probed identically
func (t MonitorTarget) SameParams(other MonitorTarget) bool {
	return t.Host == other.Host &&
		t.Port == other.Port &&
		t.Interval == other.Interval &&
		t.Timeout == other.Timeout &&
		t.Retries == other.Retries
}

// HostStatus is the observed liveness of a host
type HostStatus string

const (
	HostOnline  HostStatus = "online"
	HostOffline HostStatus = "offline"
)

// StatusRecord is the last known status of a monitor target
type StatusRecord struct {
	ID                  string     `json:"id"`
	Host                string     `json:"host"`
	Port                *int       `json:"port"`
	Status              HostStatus `json:"status"`
	LatencyMs           *int64     `json:"latencyMs"`
	LastCheckedAt       time.Time  `json:"lastCheckedAt"`
	LastStatusChangeAt  time.Time  `json:"lastStatusChangeAt"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	Error               string     `json:"error,omitempty"`
}

// TestResult is the outcome of an ad-hoc probe that is never cached
type TestResult struct {
	Host      string     `json:"host"`
	Port      *int       `json:"port"`
	Status    HostStatus `json:"status"`
	LatencyMs *int64     `json:"latencyMs"`
	Error     string     `json:"error,omitempty"`
	CheckedAt time.Time  `json:"checkedAt"`
	Method    string     `json:"method"`
}

// PortPtr converts the 0-means-none port convention to a nullable value
func PortPtr(port int) *int {
	if port <= 0 {
		return nil
	}
	p := port
	return &p
}
