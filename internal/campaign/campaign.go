// Package campaign holds the static campaign catalog. The catalog is loaded
// once at boot and injected; there is no mutation API. Order in the source
// JSON is serving priority: the first matching campaign wins.
package campaign

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

// defaultCatalogJSON ships the production seed catalog so the service runs
// without a CAMPAIGNS_FILE.
//
//go:embed default_campaigns.json
var defaultCatalogJSON []byte

// TimeWindow is a same-day serving window, inclusive on both ends.
// Cross-midnight windows are unsupported.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Definition is one campaign as configured.
type Definition struct {
	CampaignID           string     `json:"campaign_id"`
	Locations            []string   `json:"locations"`
	TimeWindow           TimeWindow `json:"time_window"`
	MaxExposuresPerPlate int        `json:"max_exposures_per_plate"`
	AdContent            string     `json:"ad_content"`

	startMinutes int
	endMinutes   int
	locations    map[string]struct{}
}

// InWindow reports whether a minute-of-day falls inside the campaign's
// window. Both boundary minutes are in the window.
func (d *Definition) InWindow(minuteOfDay int) bool {
	return d.startMinutes <= minuteOfDay && minuteOfDay <= d.endMinutes
}

// Covers reports whether the campaign serves at the given checkpoint.
func (d *Definition) Covers(checkpointID string) bool {
	_, ok := d.locations[checkpointID]
	return ok
}

// Catalog is an immutable, ordered campaign list.
type Catalog struct {
	defs []*Definition
}

// New builds a catalog from configured definitions, preserving order.
// Malformed definitions (empty ids, no locations, non-positive cap, bad or
// cross-midnight window) are excluded, not fatal; each exclusion is reported
// in the returned slice so the caller can log it.
func New(defs []Definition) (*Catalog, []error) {
	c := &Catalog{}
	var skipped []error

	for i := range defs {
		d := defs[i]
		if err := prepare(&d); err != nil {
			skipped = append(skipped, fmt.Errorf("campaign %q excluded: %w", d.CampaignID, err))
			continue
		}
		c.defs = append(c.defs, &d)
	}

	return c, skipped
}

// Load reads a catalog from a JSON file, or from the embedded default
// catalog when path is empty.
func Load(path string) (*Catalog, []error, error) {
	data := defaultCatalogJSON
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read campaigns file: %w", err)
		}
		data = b
	}

	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, nil, fmt.Errorf("parse campaigns: %w", err)
	}

	catalog, skipped := New(defs)
	return catalog, skipped, nil
}

// For returns the campaigns covering a checkpoint, in catalog order.
func (c *Catalog) For(checkpointID string) []*Definition {
	var out []*Definition
	for _, d := range c.defs {
		if d.Covers(checkpointID) {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of valid definitions in the catalog.
func (c *Catalog) Len() int { return len(c.defs) }

func prepare(d *Definition) error {
	if d.CampaignID == "" {
		return fmt.Errorf("campaign_id is empty")
	}
	if d.AdContent == "" {
		return fmt.Errorf("ad_content is empty")
	}
	if len(d.Locations) == 0 {
		return fmt.Errorf("locations is empty")
	}
	if d.MaxExposuresPerPlate <= 0 {
		return fmt.Errorf("max_exposures_per_plate must be positive, got %d", d.MaxExposuresPerPlate)
	}

	start, err := parseMinuteOfDay(d.TimeWindow.Start)
	if err != nil {
		return fmt.Errorf("time_window.start: %w", err)
	}
	end, err := parseMinuteOfDay(d.TimeWindow.End)
	if err != nil {
		return fmt.Errorf("time_window.end: %w", err)
	}
	if start > end {
		return fmt.Errorf("time_window %s-%s wraps past midnight", d.TimeWindow.Start, d.TimeWindow.End)
	}

	d.startMinutes = start
	d.endMinutes = end
	d.locations = make(map[string]struct{}, len(d.Locations))
	for _, loc := range d.Locations {
		d.locations[loc] = struct{}{}
	}

	return nil
}

// parseMinuteOfDay parses "HH:MM" into minutes since midnight.
func parseMinuteOfDay(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("%q is not HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	return h*60 + m, nil
}
