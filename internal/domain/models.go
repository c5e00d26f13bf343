package domain

// FileRef is one entry in the request manifest. The storage path is an
// opaque key into object storage; nothing else about the file is known
// until it is resolved.
type FileRef struct {
	StoragePath string `json:"storage_path"`
}

// Manifest groups the uploaded files by document kind.
type Manifest struct {
	Exogena   []FileRef `json:"exogena"`
	Prediales []FileRef `json:"prediales"`
	Vehiculos []FileRef `json:"vehiculos"`
}

// Counts returns the true per-kind file counts derived from the manifest.
func (m Manifest) Counts() FileCounts {
	return FileCounts{
		Exogena:   len(m.Exogena),
		Prediales: len(m.Prediales),
		Vehiculos: len(m.Vehiculos),
	}
}

// DecisionRequest is the inbound analyze request. Immutable once received.
type DecisionRequest struct {
	AnioGravable int      `json:"anio_gravable"`
	Archivos     Manifest `json:"archivos"`
}

// ResolvedFile pairs a storage path with a time-limited fetch URL.
// Recomputed per attempt, never mutated.
type ResolvedFile struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// FileCounts holds per-kind file counts as reported in the decision.
type FileCounts struct {
	Exogena   int `json:"exogena"`
	Prediales int `json:"prediales"`
	Vehiculos int `json:"vehiculos"`
}

// Montos holds the itemized monetary determinants, all in COP.
type Montos struct {
	PatrimonioPredialTotalCOP float64 `json:"patrimonio_predial_total_cop"`
	PatrimonioExogenaCOP      float64 `json:"patrimonio_exogena_cop"`
	IngresosBrutosCOP         float64 `json:"ingresos_brutos_cop"`
	ComprasConsumosCOP        float64 `json:"compras_consumos_cop"`
	RetencionesCOP            float64 `json:"retenciones_cop"`
}

// UVTInfo records which UVT value the decision was computed against.
type UVTInfo struct {
	ValorUVTCOP float64 `json:"valor_uvt_cop"`
	AnioUVT     int     `json:"anio_uvt"`
}

// RagVerification is one grounding citation inside a decision.
type RagVerification struct {
	Consulta   string  `json:"consulta"`
	Fuente     string  `json:"fuente"`
	Similitud  float64 `json:"similitud"`
	Conclusion string  `json:"conclusion"`
}

// DecisionCandidate is the model's structured answer to the filing
// question. Field names are the wire contract of the renta_check
// decision schema.
type DecisionCandidate struct {
	AnioGravable               int               `json:"anio_gravable"`
	DebeDeclarar               bool              `json:"debe_declarar"`
	Motivos                    []string          `json:"motivos"`
	Resumen                    string            `json:"resumen"`
	Montos                     Montos            `json:"montos"`
	UVT                        UVTInfo           `json:"uvt"`
	PrioridadPredialesAplicada bool              `json:"prioridad_prediales_aplicada"`
	VerificacionesRag          []RagVerification `json:"verificaciones_rag"`
	Incertidumbres             []string          `json:"incertidumbres"`
	ArchivosDetectados         FileCounts        `json:"archivos_detectados"`
	ResponsableIVA             bool              `json:"responsable_iva"`
}

// RagMatch is one ranked normative passage returned by retrieval.
// Ordered by descending similarity by the underlying search.
type RagMatch struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
}

// MovimientosSummary is the server-side aggregate over the exógena
// movements sheet. Zero value means the summary could not be computed.
type MovimientosSummary struct {
	SheetName string  `json:"movimientos_sheet,omitempty"`
	SumCOP    float64 `json:"movimientos_sum_cop,omitempty"`
}

// Computed reports whether the aggregate was actually derived from a sheet.
func (s MovimientosSummary) Computed() bool {
	return s.SheetName != ""
}
