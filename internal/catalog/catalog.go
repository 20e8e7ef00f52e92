// Package catalog holds the Imihigo reference data: the Pillar → Output →
// Indicator hierarchy with its targets and the four fiscal quarters. A
// Catalog is built once at start-up and is read-only afterwards.
package catalog

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GregMSThompson/imihigo-backend/internal/progress"
)

//go:embed imihigo.yaml
var defaultData []byte

const monthsPerQuarter = 3

type Pillar struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Outputs []Output `json:"outputs"`
}

type Output struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Indicators []Indicator `json:"indicators"`
}

// Indicator is a progress.Indicator placed in the hierarchy. Sub-indicator
// records of composite indicators carry the id of their parent.
type Indicator struct {
	progress.Indicator
	PillarID   string      `json:"pillarId"`
	OutputID   string      `json:"outputId"`
	ParentID   string      `json:"parentId,omitempty"`
	Components []Indicator `json:"components,omitempty"`
}

type Summary struct {
	Pillars    int `json:"pillarsCount"`
	Outputs    int `json:"outputsCount"`
	Indicators int `json:"indicatorsCount"`
}

type Catalog struct {
	pillars      []Pillar
	quarters     []progress.Quarter
	indicators   map[string]Indicator
	pillarIndex  map[string]int
	quarterIndex map[string]int
	monthQuarter map[string]string
	summary      Summary
	fingerprint  string
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultData))
}

// LoadFile reads a catalog document from path, falling back to the embedded
// catalog when path is empty.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	var doc rawDocument
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	c, err := build(doc)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	c.fingerprint = hex.EncodeToString(sum[:6])
	return c, nil
}

func build(doc rawDocument) (*Catalog, error) {
	c := &Catalog{
		indicators:   make(map[string]Indicator),
		pillarIndex:  make(map[string]int),
		quarterIndex: make(map[string]int),
		monthQuarter: make(map[string]string),
	}

	if len(doc.Quarters) == 0 {
		return nil, fmt.Errorf("catalog: no quarters defined")
	}
	for _, rq := range doc.Quarters {
		if _, dup := c.quarterIndex[rq.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate quarter %q", rq.ID)
		}
		if len(rq.Months) != monthsPerQuarter {
			return nil, fmt.Errorf("catalog: quarter %q has %d months, want %d", rq.ID, len(rq.Months), monthsPerQuarter)
		}
		for _, m := range rq.Months {
			if other, dup := c.monthQuarter[m]; dup {
				return nil, fmt.Errorf("catalog: month %q in both %q and %q", m, other, rq.ID)
			}
			c.monthQuarter[m] = rq.ID
		}
		c.quarterIndex[rq.ID] = len(c.quarters)
		c.quarters = append(c.quarters, progress.Quarter{ID: rq.ID, Name: rq.Name, Months: rq.Months})
	}

	for _, rp := range doc.Pillars {
		if _, dup := c.pillarIndex[rp.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate pillar %q", rp.ID)
		}
		pillar := Pillar{ID: rp.ID, Name: rp.Name}
		for _, ro := range rp.Outputs {
			output := Output{ID: ro.ID, Name: ro.Name}
			for _, ri := range ro.Indicators {
				ind, err := c.addIndicator(rp.ID, ro.ID, ri)
				if err != nil {
					return nil, err
				}
				output.Indicators = append(output.Indicators, ind)
				c.summary.Indicators++
			}
			pillar.Outputs = append(pillar.Outputs, output)
			c.summary.Outputs++
		}
		c.pillarIndex[rp.ID] = len(c.pillars)
		c.pillars = append(c.pillars, pillar)
		c.summary.Pillars++
	}
	return c, nil
}

func (c *Catalog) addIndicator(pillarID, outputID string, ri rawIndicator) (Indicator, error) {
	if ri.ID == "" {
		return Indicator{}, fmt.Errorf("catalog: indicator without id in output %q", outputID)
	}
	ind := Indicator{
		Indicator: progress.Indicator{
			ID:      ri.ID,
			Name:    ri.Name,
			IsDual:  ri.Dual || len(ri.SubIndicators) > 0,
			Targets: ri.Targets.parse(),
		},
		PillarID: pillarID,
		OutputID: outputID,
	}
	keys := make(map[string]bool, len(ri.SubIndicators))
	for _, rs := range ri.SubIndicators {
		if rs.Key == "" || keys[rs.Key] {
			return Indicator{}, fmt.Errorf("catalog: indicator %q has empty or duplicate sub-indicator key %q", ri.ID, rs.Key)
		}
		keys[rs.Key] = true
		sub := Indicator{
			Indicator: progress.Indicator{
				ID:      rs.ID,
				Name:    rs.Name,
				Targets: rs.Targets.parse(),
			},
			PillarID: pillarID,
			OutputID: outputID,
			ParentID: ri.ID,
		}
		if err := c.register(sub); err != nil {
			return Indicator{}, err
		}
		ind.SubIndicators = append(ind.SubIndicators, progress.SubIndicatorRef{Key: rs.Key, IndicatorID: rs.ID})
		ind.Components = append(ind.Components, sub)
	}
	if err := c.register(ind); err != nil {
		return Indicator{}, err
	}
	return ind, nil
}

func (c *Catalog) register(ind Indicator) error {
	if ind.ID == "" {
		return fmt.Errorf("catalog: sub-indicator without id under %q", ind.ParentID)
	}
	if _, dup := c.indicators[ind.ID]; dup {
		return fmt.Errorf("catalog: duplicate indicator %q", ind.ID)
	}
	c.indicators[ind.ID] = ind
	return nil
}

func (c *Catalog) Pillars() []Pillar { return c.pillars }

func (c *Catalog) Pillar(id string) (Pillar, bool) {
	i, ok := c.pillarIndex[id]
	if !ok {
		return Pillar{}, false
	}
	return c.pillars[i], true
}

func (c *Catalog) Quarters() []progress.Quarter { return c.quarters }

func (c *Catalog) Quarter(id string) (progress.Quarter, bool) {
	i, ok := c.quarterIndex[id]
	if !ok {
		return progress.Quarter{}, false
	}
	return c.quarters[i], true
}

// QuarterForMonth returns the quarter a month name belongs to.
func (c *Catalog) QuarterForMonth(month string) (progress.Quarter, bool) {
	id, ok := c.monthQuarter[month]
	if !ok {
		return progress.Quarter{}, false
	}
	return c.Quarter(id)
}

// Indicator finds an indicator or sub-indicator record by id.
func (c *Catalog) Indicator(id string) (Indicator, bool) {
	ind, ok := c.indicators[id]
	return ind, ok
}

// Lookup satisfies progress.IndicatorLookup.
func (c *Catalog) Lookup(id string) (progress.Indicator, bool) {
	ind, ok := c.indicators[id]
	return ind.Indicator, ok
}

// PillarIndicators lists the top-level indicators of a pillar in output order.
func (c *Catalog) PillarIndicators(pillarID string) []Indicator {
	p, ok := c.Pillar(pillarID)
	if !ok {
		return nil
	}
	var out []Indicator
	for _, o := range p.Outputs {
		out = append(out, o.Indicators...)
	}
	return out
}

func (c *Catalog) Summary() Summary { return c.summary }

// Fingerprint identifies the catalog document content. Any change to a
// target changes it.
func (c *Catalog) Fingerprint() string { return c.fingerprint }

// TargetFilter narrows the target registry. Empty fields match everything.
type TargetFilter struct {
	PillarID    string
	OutputID    string
	IndicatorID string
}

type TargetRow struct {
	PillarID      string           `json:"pillarId"`
	PillarName    string           `json:"pillarName"`
	OutputID      string           `json:"outputId"`
	OutputName    string           `json:"outputName"`
	IndicatorID   string           `json:"indicatorId"`
	IndicatorName string           `json:"indicatorName"`
	IsDual        bool             `json:"isDual"`
	Targets       progress.Targets `json:"targets"`
}

// Targets lists the target registry rows of the top-level indicators that
// match f, in catalog order.
func (c *Catalog) Targets(f TargetFilter) []TargetRow {
	rows := make([]TargetRow, 0)
	for _, p := range c.pillars {
		if f.PillarID != "" && p.ID != f.PillarID {
			continue
		}
		for _, o := range p.Outputs {
			if f.OutputID != "" && o.ID != f.OutputID {
				continue
			}
			for _, ind := range o.Indicators {
				if f.IndicatorID != "" && ind.ID != f.IndicatorID {
					continue
				}
				rows = append(rows, TargetRow{
					PillarID:      p.ID,
					PillarName:    p.Name,
					OutputID:      o.ID,
					OutputName:    o.Name,
					IndicatorID:   ind.ID,
					IndicatorName: ind.Name,
					IsDual:        ind.IsDual,
					Targets:       ind.Targets,
				})
			}
		}
	}
	return rows
}
