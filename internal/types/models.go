package types

import "time"

// --------------------------------------------
// Company identity, folded from several sheets
// --------------------------------------------
type Profile struct {
	Key             string `json:"key"`
	RUC             string `json:"ruc,omitempty"`
	AltID           string `json:"alt_id,omitempty"`
	Name            string `json:"name,omitempty"`
	Size            string `json:"size,omitempty"`
	Sector          string `json:"sector,omitempty"`
	AffiliationYear int    `json:"affiliation_year,omitempty"`
	Status          string `json:"status,omitempty"`
	Placeholder     bool   `json:"placeholder,omitempty"`
}

// Merge fills the empty fields of p from o. Fields already set on p are
// never overwritten.
func (p *Profile) Merge(o Profile) {
	if p.Key == "" {
		p.Key = o.Key
	}
	if p.RUC == "" {
		p.RUC = o.RUC
	}
	if p.AltID == "" {
		p.AltID = o.AltID
	}
	if p.Name == "" {
		p.Name = o.Name
	}
	if p.Size == "" {
		p.Size = o.Size
	}
	if p.Sector == "" {
		p.Sector = o.Sector
	}
	if p.AffiliationYear == 0 {
		p.AffiliationYear = o.AffiliationYear
	}
	if p.Status == "" {
		p.Status = o.Status
	}
}

// Override pins a list of name spellings to one RUC.
type Override struct {
	RUC     string   `yaml:"ruc" json:"ruc"`
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// --------------------------------------------
// Destination table
// --------------------------------------------

// Number formats applied to destination columns.
const (
	FormatMoney    = `"$"#,##0.00`
	FormatMillions = `"$"#,##0.00" M"`
	FormatPercent  = `0.00%`
)

type Sheet struct {
	Name    string            `json:"name"`
	Header  []string          `json:"header"`
	Rows    [][]any           `json:"-"`
	Formats map[string]string `json:"formats,omitempty"`
}

func NewSheet(name string, header ...string) *Sheet {
	return &Sheet{Name: name, Header: header, Formats: map[string]string{}}
}

// Append adds one row. Short rows are padded to the header width.
func (s *Sheet) Append(vals ...any) {
	row := make([]any, len(s.Header))
	copy(row, vals)
	for i := len(vals); i < len(row); i++ {
		row[i] = ""
	}
	s.Rows = append(s.Rows, row)
}

// Format sets the number format of the named columns.
func (s *Sheet) Format(format string, columns ...string) *Sheet {
	if s.Formats == nil {
		s.Formats = map[string]string{}
	}
	for _, c := range columns {
		s.Formats[c] = format
	}
	return s
}

// --------------------------------------------
// Run log
// --------------------------------------------
type RunLog struct {
	RunID      string         `json:"run_id"`
	Dashboard  string         `json:"dashboard"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	RowsRead   map[string]int `json:"rows_read"`
	Skipped    int            `json:"rows_skipped"`
	Duplicates int            `json:"duplicates"`
	Unmatched  int            `json:"unmatched_entities"`
	Outputs    map[string]int `json:"outputs"`
	Error      string         `json:"error,omitempty"`
}

func NewRunLog(runID, dashboard string) *RunLog {
	return &RunLog{
		RunID:     runID,
		Dashboard: dashboard,
		StartedAt: time.Now().UTC(),
		RowsRead:  map[string]int{},
		Outputs:   map[string]int{},
	}
}

func (l *RunLog) Read(source string, n int) { l.RowsRead[source] += n }
func (l *RunLog) Skip()                     { l.Skipped++ }
func (l *RunLog) Duplicate()                { l.Duplicates++ }
func (l *RunLog) Miss()                     { l.Unmatched++ }
