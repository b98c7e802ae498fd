// Package dashboard holds the declarative dashboard definitions. Each one
// reads source sheets through a Context, folds them into typed records and
// returns its destination sheets, the slicer master last.
package dashboard

import (
	"github.com/sirupsen/logrus"

	"capig-dash-go/internal/dataset"
	"capig-dash-go/internal/entity"
	"capig-dash-go/internal/table"
	"capig-dash-go/internal/types"
)

// Context carries everything one dashboard run may read.
type Context struct {
	Source    dataset.Source
	Fields    types.Fields
	Overrides []types.Override
	HistYear  int
	TopN      int
	Log       *logrus.Entry
	Run       *types.RunLog
}

// NewContext fills the optional fields of a context with usable defaults.
func NewContext(src dataset.Source, fields types.Fields, log *logrus.Entry, run *types.RunLog) *Context {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if run == nil {
		run = types.NewRunLog("", "")
	}
	return &Context{
		Source:   src,
		Fields:   fields,
		HistYear: 2025,
		TopN:     5,
		Log:      log,
		Run:      run,
	}
}

// Table reads the first existing sheet among candidates and counts its rows
// in the run log. A missing sheet reads as an empty table.
func (c *Context) Table(candidates ...string) (table.Table, error) {
	t, err := dataset.Table(c.Source, candidates...)
	if err != nil {
		return t, err
	}
	c.Run.Read(t.Name, t.Len())
	c.Log.WithFields(logrus.Fields{
		"sheet":      t.Name,
		"rows":       t.Len(),
		"header_row": t.HeaderRow,
	}).Debug("source sheet read")
	return t, nil
}

// Directory returns an empty entity directory bound to the context fields.
func (c *Context) Directory() *entity.Directory {
	return entity.New(c.Fields, c.Log)
}

// Definition is one dashboard: its name, the sheets it writes and the build
// function producing them.
type Definition struct {
	Name    string                                   `json:"name"`
	Title   string                                   `json:"title"`
	Outputs []string                                 `json:"outputs"`
	Build   func(c *Context) ([]*types.Sheet, error) `json:"-"`
}

// All lists every dashboard in refresh order.
func All() []Definition {
	return []Definition{
		{
			Name:  "sales",
			Title: "Ventas, tamanos y afiliaciones",
			Outputs: []string{
				OutSalesDetail, OutSalesBySize, OutSalesBySector, OutAffiliationsDetail,
				OutAffiliations, OutCompaniesBySize, OutSizeGlobal, OutSalesMaster,
			},
			Build: BuildSales,
		},
		{
			Name:  "sizes",
			Title: "Cambios de tamano por anio",
			Outputs: []string{
				OutSizeDetail, OutSizeTransitions, OutSizeLatest, OutSizeLatestFull, OutSizeFlows, OutSizeMaster,
			},
			Build: BuildSizes,
		},
		{
			Name:    "gender",
			Title:   "Gerentes por genero y tamano",
			Outputs: []string{OutGenderDetail, OutGenderPivot, OutGenderWide, OutGenderMaster},
			Build:   BuildGender,
		},
		{
			Name:  "performance",
			Title: "Desempeno de ventas y estado",
			Outputs: []string{
				OutPerfSummary, OutPerfSector, OutPerfStatus, OutPerfQuarter, OutPerfTop, OutPerfMaster,
			},
			Build: BuildPerformance,
		},
		{
			Name:  "trainings",
			Title: "Capacitaciones",
			Outputs: []string{
				OutTrainSummary, OutTrainMemberSummary, OutTrainTop, OutTrainMembers,
				OutTrainMembersBySize, OutTrainDetail, OutTrainDuplicates, OutTrainMaster,
			},
			Build: BuildTrainings,
		},
		{
			Name:    "diagnostics",
			Title:   "Diagnosticos",
			Outputs: []string{OutDiagSummary, OutDiagByType, OutDiagByCompany, OutDiagMaster},
			Build:   BuildDiagnostics,
		},
		{
			Name:    "advisories",
			Title:   "Asesorias legales",
			Outputs: []string{OutAdvSummary, OutAdvBySubtype, OutAdvByCompany, OutAdvMaster},
			Build:   BuildAdvisories,
		},
	}
}

// Lookup finds a dashboard by name.
func Lookup(name string) (Definition, bool) {
	for _, d := range All() {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
