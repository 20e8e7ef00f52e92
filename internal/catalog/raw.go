package catalog

import "github.com/GregMSThompson/imihigo-backend/internal/progress"

type rawDocument struct {
	Quarters []rawQuarter `yaml:"quarters"`
	Pillars  []rawPillar  `yaml:"pillars"`
}

type rawQuarter struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	Months []string `yaml:"months"`
}

type rawPillar struct {
	ID      string      `yaml:"id"`
	Name    string      `yaml:"name"`
	Outputs []rawOutput `yaml:"outputs"`
}

type rawOutput struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Indicators []rawIndicator `yaml:"indicators"`
}

type rawIndicator struct {
	ID            string            `yaml:"id"`
	Name          string            `yaml:"name"`
	Dual          bool              `yaml:"dual"`
	Targets       rawTargets        `yaml:"targets"`
	SubIndicators []rawSubIndicator `yaml:"subIndicators"`
}

type rawSubIndicator struct {
	Key     string     `yaml:"key"`
	ID      string     `yaml:"id"`
	Name    string     `yaml:"name"`
	Targets rawTargets `yaml:"targets"`
}

// rawTargets keeps the literal YAML scalars; numbers decode as int or float64
// and everything else as string.
type rawTargets struct {
	Q1     any `yaml:"q1"`
	Q2     any `yaml:"q2"`
	Q3     any `yaml:"q3"`
	Q4     any `yaml:"q4"`
	Annual any `yaml:"annual"`
}

func (r rawTargets) parse() progress.Targets {
	return progress.Targets{
		Q1:     progress.ParseTarget(r.Q1),
		Q2:     progress.ParseTarget(r.Q2),
		Q3:     progress.ParseTarget(r.Q3),
		Q4:     progress.ParseTarget(r.Q4),
		Annual: progress.ParseTarget(r.Annual),
	}
}
