package dashboard

// Source sheets, primary name first.
var (
	BaseSheets         = []string{"SOCIOS", "BASE DE DATOS"}
	RegistrySheets     = []string{"REGISTRO_AFILIADO"}
	SalesSheets        = []string{"VENTAS_SOCIO", "VENTAS_AFILIADOS"}
	StatusSheets       = []string{"ESTADO_SOCIO", "ESTADO_AFILIADOS"}
	SectorSheets       = []string{"SECTOR"}
	TrainingHistSheets = []string{"CAPACITACIONES_HISTORICAS", "CAPACITACIONES_HISTORICO"}
	TrainingSheets     = []string{"CAPACITACIONES", "CAPACITACIONES_FINAL"}
	DiagSheets         = []string{"DIAGNOSTICOS", "DIAGNOSTICO_FINAL"}
	DiagHistSheets     = []string{"DIAGNOSTICOS_HISTORICOS"}
	AdvisorySheets     = []string{"ASESORIAS", "DIAGNOSTICOS", "DIAGNOSTICO_FINAL", "DIAGNOSTICO"}
	LegalSheets        = []string{"LEGAL_UNIFICADO"}
	LegalPartSheets    = []string{"LEGAL 1", "LEGAL1", "LEGAL_1", "LEGAL 2", "LEGAL2", "LEGAL_2"}
)

// Destination sheets.
const (
	OutSalesDetail        = "DASH_VENTAS_ANIO"
	OutSalesBySize        = "PIVOT_VENTAS_ANIO_TAMANO"
	OutSalesBySector      = "PIVOT_VENTAS_ANIO_SECTOR"
	OutAffiliationsDetail = "DASH_AFILIACIONES_ANIO"
	OutAffiliations       = "PIVOT_AFILIACIONES_ANIO"
	OutCompaniesBySize    = "DASH_EMPRESAS_TAMANO"
	OutSizeGlobal         = "TAMANO_EMPRESA_GLOBAL"
	OutSalesMaster        = "DASH1_MAESTRA"

	OutSizeDetail      = "DASH_TAMANO_ANIO"
	OutSizeTransitions = "PIVOT_CAMBIO_TAMANO_ANIO"
	OutSizeLatest      = "DASH_CAMBIO_TAMANO_ULTIMO"
	OutSizeLatestFull  = "DASH_CAMBIO_TAMANO_ULTIMO_FULL"
	OutSizeFlows       = "DASH_TRANSICIONES"
	OutSizeMaster      = "DASH2_MAESTRA"

	OutGenderDetail = "DASH_GENERO_GERENTES"
	OutGenderPivot  = "PIVOT_GERENTES_GENERO_TAMANO"
	OutGenderWide   = "PIVOT_GERENTES_GENERO_WIDE"
	OutGenderMaster = "DASH3_MAESTRA"

	OutPerfSummary = "PIVOT_VENTAS_RESUMEN_ANIO"
	OutPerfSector  = "PIVOT_VENTAS_SECTOR_ANIO"
	OutPerfStatus  = "PIVOT_ESTADO_EMPRESAS"
	OutPerfQuarter = "PIVOT_VENTAS_TRIMESTRE"
	OutPerfTop     = "PIVOT_TOP_EMPRESAS_ANIO"
	OutPerfMaster  = "DASH4_MAESTRA"

	OutTrainSummary       = "PIVOT_CAPAC_RESUMEN_ANIO"
	OutTrainMemberSummary = "PIVOT_CAPAC_RESUMEN_ANIO_SOCIOS"
	OutTrainTop           = "PIVOT_CAPAC_TOP_EMPRESAS"
	OutTrainMembers       = "PIVOT_CAPAC_SOCIOS"
	OutTrainMembersBySize = "PIVOT_CAPAC_SOCIOS_TAMANO"
	OutTrainDetail        = "PIVOT_CAPAC_MASTER"
	OutTrainDuplicates    = "PIVOT_CAPAC_DUPLICADOS"
	OutTrainMaster        = "DASH5_MAESTRA"

	OutDiagSummary   = "PIVOT_DIAGNOSTICOS_RESUMEN_ANIO"
	OutDiagByType    = "PIVOT_DIAGNOSTICOS_TIPO_ANIO"
	OutDiagByCompany = "PIVOT_DIAGNOSTICOS_POR_EMPRESA"
	OutDiagMaster    = "DASH6_MAESTRA"

	OutAdvSummary   = "PIVOT_ASESORIAS_RESUMEN_ANIO"
	OutAdvBySubtype = "PIVOT_ASESORIAS_SUBTIPO_ANIO"
	OutAdvByCompany = "PIVOT_ASESORIAS_POR_EMPRESA"
	OutAdvMaster    = "DASH7_MAESTRA"
)
