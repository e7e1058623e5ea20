package rcv

// Document is one line of the purchase or sales register (RCV) as returned by
// the SII gateway. Missing amounts decode as zero.
type Document struct {
	Folio            int64   `json:"dcv_folio"`
	Type             int     `json:"dcv_tipo"`
	CounterpartyRUT  string  `json:"dcv_rut"`
	CounterpartyName string  `json:"dcv_razon_social"`
	IssueDate        string  `json:"dcv_fecha_emision"`
	ReceiptDate      string  `json:"dcv_fecha_recepcion"`
	NetAmount        float64 `json:"dcv_monto_neto"`
	ExemptAmount     float64 `json:"dcv_monto_exento"`
	TaxAmount        float64 `json:"dcv_monto_iva"`
	TotalAmount      float64 `json:"dcv_monto_total"`
	TransactionType  string  `json:"dcv_tipo_transaccion,omitempty"`
}

// SummaryLine aggregates every document of one DTE type in a period.
type SummaryLine struct {
	Code            string  `json:"dcv_codigo"`
	Operation       string  `json:"dcv_operacion"`
	Type            int     `json:"dcv_tipo"`
	TypeDescription string  `json:"dcv_tipo_descripcion,omitempty"`
	Count           int     `json:"cantidad"`
	NetAmount       float64 `json:"monto_neto"`
	ExemptAmount    float64 `json:"monto_exento"`
	TaxAmount       float64 `json:"monto_iva"`
	TotalAmount     float64 `json:"monto_total"`
}

// Summary is the period-level register summary.
type Summary struct {
	Period         string        `json:"periodo"`
	TotalDocuments int           `json:"total_documentos,omitempty"`
	Lines          []SummaryLine `json:"resumen,omitempty"`
}

// DetailResponse wraps the detail endpoint payload.
type DetailResponse struct {
	Data []Document `json:"datos"`
}

// Activity is an economic activity registered for a taxpayer.
type Activity struct {
	Code     string `json:"codigo"`
	Name     string `json:"glosa"`
	Affected bool   `json:"afecta"`
	Category int    `json:"categoria"`
}

// TaxSituation is the public taxpayer situation of a RUT.
type TaxSituation struct {
	RUT               int64      `json:"rut"`
	DV                string     `json:"dv"`
	BusinessName      string     `json:"razon_social"`
	StartedActivities bool       `json:"inicio_actividades"`
	StartDate         string     `json:"fecha_inicio_actividades"`
	ProPyme           bool       `json:"pro_pyme"`
	ForeignCurrency   bool       `json:"moneda_extranjera"`
	DTEObligation     bool       `json:"obligacion_dte"`
	Activities        []Activity `json:"actividades"`
}

// Extraction is everything pulled from the register for one company and
// period. Detail slices are preferred; summaries are the fallback.
type Extraction struct {
	TaxSituation    *TaxSituation `json:"situacion_tributaria,omitempty"`
	PurchaseSummary *Summary      `json:"rcv_compras_resumen,omitempty"`
	SalesSummary    *Summary      `json:"rcv_ventas_resumen,omitempty"`
	PurchaseDetail  []Document    `json:"rcv_compras_detalle"`
	SalesDetail     []Document    `json:"rcv_ventas_detalle"`
}

// HasData reports whether the extraction carries any register information.
func (e *Extraction) HasData() bool {
	if e == nil {
		return false
	}
	if len(e.PurchaseDetail) > 0 || len(e.SalesDetail) > 0 {
		return true
	}
	return e.PurchaseSummary.hasLines() || e.SalesSummary.hasLines()
}

func (s *Summary) hasLines() bool {
	return s != nil && len(s.Lines) > 0
}
