package constants

// CurriculumModule is a training module and the number of sessions it requires.
type CurriculumModule struct {
	Code     string `yaml:"code" json:"code"`
	Label    string `yaml:"label" json:"label"`
	Required int    `yaml:"required" json:"required"`
}

// DefaultCurriculum is the instrument-rating course layout.
var DefaultCurriculum = []CurriculumModule{
	{Code: "VBAS", Label: "Vuelo Básico", Required: 12},
	{Code: "VRAD", Label: "Radionavegación", Required: 20},
	{Code: "VPRA", Label: "Procedimientos", Required: 16},
}

// HourGoals are the per-student hour targets of the course, in hours.
type HourGoals struct {
	Real      float64 `yaml:"real" json:"real"`
	Simulator float64 `yaml:"simulator" json:"simulator"`
	Total     float64 `yaml:"total" json:"total"`
}

var DefaultHourGoals = HourGoals{Real: 45, Simulator: 21, Total: 66}

// Grade labels accepted besides a numeric grade.
const (
	GradeApto        = "APTO"
	GradeNoApto      = "NO APTO"
	GradeNoEvaluable = "NO EVALUABLE"
)

var GradeLabels = []string{GradeApto, GradeNoApto, GradeNoEvaluable}
