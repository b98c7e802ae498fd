package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                   "",
		"   ":                "",
		"  Razón  Social ":   "RAZON_SOCIAL",
		"TAMAÑO":             "TAMANO",
		"tamaño empresa":     "TAMANO_EMPRESA",
		"N°":                 "N",
		"--Fecha de ingreso": "FECHA_DE_INGRESO",
		"T_2023":             "T_2023",
		"TAMA�O":             "TAMANO",
		"año/venta":          "ANO_VENTA",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"Razón Social", "  ventas__total ", "AÑO VENTA", "#RUC#"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestStripAccents(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PEQUENA", StripAccents("PEQUEÑA"))
	assert.Equal(t, "Quimico", StripAccents("Químico"))
	assert.Equal(t, "plain", StripAccents("plain"))
}

func TestName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "TONISA S.A.", Name("  tonisa   S.A. "))
	assert.Equal(t, "", Name("\t"))
}

func TestLegalName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Tonisa S.A.":                    "TONISA",
		"TONISA SA":                      "TONISA",
		"Mundocare, S. A.":               "MUNDOCARE",
		"Acme Cía. Ltda.":                "ACME",
		"Plasticos del Litoral C.A.":     "PLASTICOS DEL LITORAL",
		"Sociedad Anónima Ecuatoriana":   "ECUATORIANA",
		"Construcciones (Construme) SAS": "CONSTRUCCIONES CONSTRUME",
		"Luis Andrade":                   "LUIS ANDRADE",
	}
	for in, want := range cases {
		assert.Equal(t, want, LegalName(in), "input %q", in)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SIN_TIPO", Key(" sin  tipo "))
	assert.Equal(t, "", Key(""))
}
