package model

// Default series colours of a new chart.
const (
	DefaultActualColor  Color = "#fdae6b"
	DefaultAverageColor Color = "#bcbddc"
)

// EvaluationItem maps one chart label to the column holding the record's own
// score and the column holding the population average.
type EvaluationItem struct {
	Label    string `json:"label"`
	ScoreCol string `json:"scoreCol"`
	AvgCol   string `json:"avgCol"`
}

// Normalize fills an empty label with the score column name.
func (e EvaluationItem) Normalize() EvaluationItem {
	if e.Label == "" {
		e.Label = e.ScoreCol
	}
	return e
}

// ChartConfig is the data binding of a chart. Labels, ScoreCols and AvgCols
// are index-aligned.
type ChartConfig struct {
	Labels       []string `json:"labels"`
	ScoreCols    []string `json:"scoreCol"`
	AvgCols      []string `json:"avgCol"`
	ActualColor  Color    `json:"actualColor"`
	AverageColor Color    `json:"avgColor"`
}

// NewChartConfig copies the evaluation items named in order into a chart
// configuration. Labels in order that match no item are skipped. A nil order
// keeps every item in its given order.
func NewChartConfig(items []EvaluationItem, order []string, actual, average Color) ChartConfig {
	if order == nil {
		order = make([]string, len(items))
		for i, it := range items {
			order[i] = it.Normalize().Label
		}
	}
	if actual == "" {
		actual = DefaultActualColor
	}
	if average == "" {
		average = DefaultAverageColor
	}

	cfg := ChartConfig{ActualColor: actual, AverageColor: average}
	for _, label := range order {
		for _, it := range items {
			it = it.Normalize()
			if it.Label != label {
				continue
			}
			cfg.Labels = append(cfg.Labels, it.Label)
			cfg.ScoreCols = append(cfg.ScoreCols, it.ScoreCol)
			cfg.AvgCols = append(cfg.AvgCols, it.AvgCol)
			break
		}
	}
	return cfg
}

// Len returns the number of labels.
func (c ChartConfig) Len() int { return len(c.Labels) }

func (c ChartConfig) clone() ChartConfig {
	c.Labels = append([]string(nil), c.Labels...)
	c.ScoreCols = append([]string(nil), c.ScoreCols...)
	c.AvgCols = append([]string(nil), c.AvgCols...)
	return c
}
