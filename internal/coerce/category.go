package coerce

import (
	"strconv"
	"strings"

	"capig-dash-go/internal/label"
)

// Company size buckets, ordered by SizeRank.
const (
	SizeMicro   = "MICRO"
	SizeSmall   = "PEQUENA"
	SizeMedium  = "MEDIANA"
	SizeLarge   = "GRANDE"
	SizeUnknown = "SIN_TAMANO"
	SizeGlobal  = "GLOBAL"
)

const (
	GenderFemale = "FEMENINO"
	GenderMale   = "MASCULINO"
)

const (
	StatusPaid    = "PAGADO"
	StatusUnpaid  = "NO PAGADO"
	StatusUnknown = "DESCONOCIDO"
)

const (
	SectorUnclassified = "SIN CLASIFICAR"
	DiagNoType         = "SIN TIPO"
	DiagNone           = "NINGUNO"
	DiagNoSubtype      = "SIN SUBTIPO"
)

var sizeByCode = map[string]string{
	"1": SizeMicro,
	"2": SizeSmall,
	"3": SizeMedium,
	"4": SizeLarge,
}

var sizeRank = map[string]int{
	SizeGlobal: 0,
	SizeMicro:  1,
	SizeSmall:  2,
	SizeMedium: 3,
	SizeLarge:  4,
}

func upperClean(s string) string {
	return label.StripAccents(strings.ToUpper(strings.TrimSpace(s)))
}

// Size maps free text to a size bucket by keyword. Size codes 1..4 are
// accepted too. Empty and header-echo noise ("TAMAÑO", "NAN") give "".
// Unmatched text passes through uppercased.
func Size(s string) string {
	t := upperClean(s)
	switch {
	case t == "":
		return ""
	case strings.HasPrefix(t, "TAMA"), strings.HasPrefix(t, "NAN"):
		return ""
	case strings.Contains(t, "MICRO"):
		return SizeMicro
	case strings.Contains(t, "PEQU"):
		return SizeSmall
	case strings.Contains(t, "MEDI"):
		return SizeMedium
	case strings.Contains(t, "GRAN"):
		return SizeLarge
	}
	if c := SizeFromCode(t); c != "" {
		return c
	}
	return t
}

// SizeFromCode maps the numeric size codes used in yearly roster columns.
// "3" and "3.0" are both MEDIANA.
func SizeFromCode(s string) string {
	t := strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(t, 64); err == nil && v == float64(int(v)) {
		t = strconv.Itoa(int(v))
	}
	return sizeByCode[t]
}

// SizeFromAmount infers a size bucket from annual sales. Non-positive
// amounts give "".
func SizeFromAmount(v float64) string {
	switch {
	case v <= 0:
		return ""
	case v <= 100_000:
		return SizeMicro
	case v <= 1_000_000:
		return SizeSmall
	case v <= 5_000_000:
		return SizeMedium
	default:
		return SizeLarge
	}
}

// SizeRank orders sizes MICRO < PEQUENA < MEDIANA < GRANDE, GLOBAL first and
// anything else last.
func SizeRank(size string) int {
	if r, ok := sizeRank[size]; ok {
		return r
	}
	return 99
}

// Gender returns FEMENINO, MASCULINO or "".
func Gender(s string) string {
	t := upperClean(s)
	switch {
	case t == "":
		return ""
	case strings.Contains(t, "MUJER"), strings.Contains(t, "FEMEN"):
		return GenderFemale
	case strings.Contains(t, "HOMBRE"), strings.Contains(t, "MASC"):
		return GenderMale
	case strings.HasPrefix(t, "F"):
		return GenderFemale
	case strings.HasPrefix(t, "M"):
		return GenderMale
	}
	return ""
}

var sectorRules = []struct {
	keys  []string
	label string
}{
	{[]string{"QUIM"}, "QUIMICO"},
	{[]string{"METAL"}, "METALMECANICO"},
	{[]string{"ALIMENT"}, "ALIMENTOS"},
	{[]string{"AGRIC", "AGROP"}, "AGRICOLA"},
	{[]string{"MAQUIN"}, "MAQUINARIAS"},
	{[]string{"CONST"}, "CONSTRUCCION"},
	{[]string{"TEXT"}, "TEXTIL"},
	{[]string{"COME", "RETAIL"}, "COMERCIO"},
}

// Sector maps free text to a sector label; first matching rule wins.
func Sector(s string) string {
	t := upperClean(s)
	if t == "" {
		return SectorUnclassified
	}
	for _, r := range sectorRules {
		for _, k := range r.keys {
			if strings.Contains(t, k) {
				return r.label
			}
		}
	}
	return t
}

var unpaidKeys = []string{"NO", "PEND", "INACTIV", "SUSPEND", "RETIR", "BAJA", "MORA"}

// Status maps an affiliation status cell to PAGADO, NO PAGADO or DESCONOCIDO.
func Status(s string) string {
	t := label.Name(s)
	if t == "" {
		return StatusUnknown
	}
	switch t {
	case "ACTIVO", "ACTIVA", "PAGADO", "PAGADA":
		return StatusPaid
	}
	if strings.Contains(t, "PAG") && !strings.Contains(t, "NO") && !strings.Contains(t, "PEND") {
		return StatusPaid
	}
	for _, k := range unpaidKeys {
		if strings.Contains(t, k) {
			return StatusUnpaid
		}
	}
	return StatusUnknown
}

func compact(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), "")
}

// IsMarkerEmpty reports blank cells and the placeholder marks X, -, N/A, NA.
func IsMarkerEmpty(s string) bool {
	switch compact(s) {
	case "", "X", "-", "N/A", "NA", `N\A`:
		return true
	}
	return false
}

// DiagType maps a diagnostic type cell to its canonical label.
func DiagType(s string) string {
	t := upperClean(s)
	if t == "" || IsMarkerEmpty(t) {
		return DiagNoType
	}
	switch compact(t) {
	case "NINGUNO", "NINGUNA", "NINGUN":
		return DiagNone
	}
	switch {
	case strings.Contains(t, "ESTRAT"):
		return "ESTRATEGIA"
	case strings.Contains(t, "LEAN"):
		return "LEAN"
	case strings.Contains(t, "AMBI"):
		return "AMBIENTE"
	case strings.Contains(t, "LEGAL"):
		return "LEGAL"
	case strings.Contains(t, "RRHH"), strings.Contains(t, "RH"), strings.Contains(t, "RECURSO"):
		return "RRHH"
	}
	return t
}

var subtypeRules = []struct{ key, label string }{
	{"PEND", "PENDIENTE"},
	{"LABOR", "LABORAL"},
	{"PROPIEDAD", "PROPIEDAD INTELECTUAL"},
	{"SOCIETA", "SOCIETARIO"},
	{"CONTACT", "CONTACTO"},
	{"OTRO", "OTROS"},
}

// Subtype maps an advisory subtype cell to its canonical label.
func Subtype(s string) string {
	t := upperClean(s)
	if t == "" || IsMarkerEmpty(t) {
		return DiagNoSubtype
	}
	t = strings.ReplaceAll(t, "_", " ")
	for _, r := range subtypeRules {
		if strings.Contains(t, r.key) {
			return r.label
		}
	}
	return t
}

// CountFlag reads a yes/no style cell as 0 or 1. Numbers above zero and
// SI, TRUE or X count as 1.
func CountFlag(s string) int {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(t, 64); err == nil {
		if v > 0 {
			return 1
		}
		return 0
	}
	switch upperClean(t) {
	case "SI", "TRUE", "X":
		return 1
	}
	return 0
}

// SkipFlag reports whether a "took diagnostic" flag means no: blank, a
// placeholder mark, or anything starting with NO.
func SkipFlag(s string) bool {
	t := strings.ToUpper(strings.TrimSpace(s))
	return t == "" || IsMarkerEmpty(t) || strings.HasPrefix(t, "NO")
}
