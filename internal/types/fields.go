package types

// Fields is the alias catalogue: for every logical field, the header
// spellings accepted in source sheets, most preferred first.
type Fields struct {
	RUC             []string   `yaml:"ruc"`
	Name            []string   `yaml:"name"`
	AltID           []string   `yaml:"alt_id"`
	Size            []string   `yaml:"size"`
	Sector          []string   `yaml:"sector"`
	AffiliationDate []string   `yaml:"affiliation_date"`
	Status          []string   `yaml:"status"`
	Sales           []string   `yaml:"sales"`
	Year            []string   `yaml:"year"`
	Date            []string   `yaml:"date"`
	Gender          []string   `yaml:"gender"`
	Role            []string   `yaml:"role"`
	Value           []string   `yaml:"value"`
	Trainings       []string   `yaml:"trainings"`
	Employees       []string   `yaml:"employees"`
	QuarterCounts   [][]string `yaml:"quarter_counts"`
	QuarterValues   [][]string `yaml:"quarter_values"`
	DiagType        []string   `yaml:"diag_type"`
	DiagSubtype     []string   `yaml:"diag_subtype"`
	DiagFlag        []string   `yaml:"diag_flag"`
	DiagColumns     []string   `yaml:"diag_columns"`
	AdvisoryTotal   []string   `yaml:"advisory_total"`
	AdvisoryFlag    []string   `yaml:"advisory_flag"`
	AdvisoryMarkers []string   `yaml:"advisory_markers"`
}

func DefaultFields() Fields {
	return Fields{
		RUC:  []string{"RUC", "NUMERO_RUC", "NUM_RUC"},
		Name: []string{"RAZON_SOCIAL", "RAZON SOCIAL", "EMPRESA", "NOMBRE", "RAZON_SOCIA"},
		AltID: []string{
			"ID_UNICO", "ID UNICO", "ID_INTERNO", "ID INTERNO", "ID", "ID_SOCIO", "CODIGO_SOCIO",
			"CODIGO", "CLAVE", "CLAVE_UNICA", "NO", "NO.", "NRO", "N°", "NUM", "NUMERO",
		},
		Size:   []string{"TAMANO", "TAMANIO", "TAMAÑO", "TAMANO_EMPRESA", "TAMANO_EMP", "TAMANO EMPRESA"},
		Sector: []string{"SECTOR", "SECTOR_ECONOMICO", "SECTOR_PRODUCTIVO", "ACTIVIDAD"},
		AffiliationDate: []string{
			"FECHA_AFILIACION", "FECHA AFILIACION", "FECHA_INGRESO", "FECHA DE INGRESO", "FECHA_REGISTRO", "FECHA",
		},
		Status: []string{"ESTADO", "ESTADO_PAGO", "ESTADO_SOCIO", "PAGADO"},
		Sales: []string{
			"VENTAS", "VENTAS_TOTAL", "VENTAS_ANUAL", "VENTAS_ANUALES", "VENTAS_MONT_EST", "MONTO_ESTIMADO",
			"VALOR TOTAL", "MONTO", "VALOR_APORTE", "MONTO_TOTAL",
		},
		Year: []string{"ANIO", "ANO", "AÑO", "ANIO_VENTA", "ANO_VENTA", "AÑO_VENTA", "AÑO VENTA"},
		Date: []string{
			"FECHA", "FECHA_REGISTRO", "FECHA_VENTA", "FECHA_CAP", "FECHA_CAPACITACION",
			"FECHA_DIAGNOSTICO", "FECHA DE DIAGNOSTICO",
		},
		Gender: []string{"GENERO", "GÉNERO", "SEXO"},
		Role:   []string{"CARGO", "PUESTO", "OCUPACION"},
		Value:  []string{"VALOR TOTAL", "VALOR_TOTAL", "VALOR DEL PAGO", "VALOR_PAGO", "VALOR"},
		Employees: []string{
			"EMPLEADOS", "NUM_EMPLEADOS", "NUMERO_EMPLEADOS", "COLABORADORES", "NUM_COLABORADORES",
			"NUMERO_COLABORADORES", "TRABAJADORES", "NO_COLABORADORES",
		},
		Trainings: []string{"TOTAL CAPAC.", "TOTAL_CAPACITACIONES", "NUM_CAPACITACIONES", "CAPACITACIONES", "CANTIDAD"},
		QuarterCounts: [][]string{
			{"1ER_TRIMESTRE", "PRIMER_TRIMESTRE", "Q1_CAPACITACIONES", "Q1"},
			{"2DO_TRIMESTRE", "SEGUNDO_TRIMESTRE", "Q2_CAPACITACIONES", "Q2"},
			{"3ER_TRIMESTRE", "TERCER_TRIMESTRE", "Q3_CAPACITACIONES", "Q3"},
			{"4TO_TRIMESTRE", "CUARTO_TRIMESTRE", "Q4_CAPACITACIONES", "Q4"},
		},
		QuarterValues: [][]string{
			{"VALOR_1ER", "VALOR_1ER_TRIMESTRE", "Q1_VALOR", "VALOR_Q1"},
			{"VALOR_2DO", "VALOR_2DO_TRIMESTRE", "Q2_VALOR", "VALOR_Q2"},
			{"VALOR_3ER", "VALOR_3ER_TRIMESTRE", "Q3_VALOR", "VALOR_Q3"},
			{"VALOR_4TO", "VALOR_4TO_TRIMESTRE", "Q4_VALOR", "VALOR_Q4"},
		},
		DiagType: []string{"TIPO_DE_DIAGNOSTICO", "TIPO", "TIPO DIAGNOSTICO", "TIPO DE DIAGNOSTICO", "TIPO_DE_ASESORIA"},
		DiagSubtype: []string{
			"SUBTIPO_DIAGNOSTICO", "SUBTIPO_DE_DIAGNOSTICO", "SUBTIPO", "SUBTIPO DIAGNOSTICO", "SUBTIPO_DE_ASESORIA",
			"SUBTIPO_ASESORIA", "OTROS_SUBTIPO",
		},
		DiagFlag: []string{
			"SE_DIAGNOSTICO", "SE DIAGNOSTICO", "REALIZO_DIAGNOSTICO", "TIENE_DIAGNOSTICO",
			"TOTAL_DIAGNOSTICO", "TOTAL_DIAGNOSTICOS", "DIAGNOSTICO",
		},
		DiagColumns: []string{"LEAN", "ESTRATEGIA", "LEGAL", "AMBIENTE", "RRHH"},
		AdvisoryTotal: []string{
			"TOTAL", "TOTAL_ASESORIAS", "TOTAL_ASESORIA", "TOTAL_SERVICIO_LEGAL", "TOTAL LEGAL",
		},
		AdvisoryFlag: []string{
			"SERVICIO_LEGAL", "SERVICIO LEGAL?", "SERVICIOS_LEGALES", "SERVICIO LEGAL 1", "SERVICIO LEGAL 2", "SERVICIO",
		},
		// Each marker column counts on its own.
		AdvisoryMarkers: []string{
			"LEGAL", "LEGAL1", "LEGAL_1", "LEGAL2", "LEGAL_2", "LEGAL_DIAGNOSTICO", "LEGAL_SERVICIO",
			"LEGAL_SERVICIOS", "ASESORIA_LEGAL", "ASESORIAS_LEGALES", "ASESORIA LEGAL 1", "ASESORIA LEGAL 2",
		},
	}
}

// Merge returns f with every non-empty list of o replacing the default.
func (f Fields) Merge(o Fields) Fields {
	pick := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = append([]string(nil), src...)
		}
	}
	pick(&f.RUC, o.RUC)
	pick(&f.Name, o.Name)
	pick(&f.AltID, o.AltID)
	pick(&f.Size, o.Size)
	pick(&f.Sector, o.Sector)
	pick(&f.AffiliationDate, o.AffiliationDate)
	pick(&f.Status, o.Status)
	pick(&f.Sales, o.Sales)
	pick(&f.Year, o.Year)
	pick(&f.Date, o.Date)
	pick(&f.Gender, o.Gender)
	pick(&f.Role, o.Role)
	pick(&f.Value, o.Value)
	pick(&f.Trainings, o.Trainings)
	pick(&f.Employees, o.Employees)
	pick(&f.DiagType, o.DiagType)
	pick(&f.DiagSubtype, o.DiagSubtype)
	pick(&f.DiagFlag, o.DiagFlag)
	pick(&f.DiagColumns, o.DiagColumns)
	pick(&f.AdvisoryTotal, o.AdvisoryTotal)
	pick(&f.AdvisoryFlag, o.AdvisoryFlag)
	pick(&f.AdvisoryMarkers, o.AdvisoryMarkers)
	if len(o.QuarterCounts) > 0 {
		f.QuarterCounts = o.QuarterCounts
	}
	if len(o.QuarterValues) > 0 {
		f.QuarterValues = o.QuarterValues
	}
	return f
}
