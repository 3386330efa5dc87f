package analytics

// Dashboard is the composed view every role-specific dashboard renders from.
// The primary KPI block is mandatory; the widget fields may come back empty
// when their underlying loads failed and were degraded.
type Dashboard struct {
	KPIs           KPISummary        `json:"kpis"`
	TechnicianLoad []FieldCount      `json:"technicianLoad"`
	TopClients     []FieldCount      `json:"topClients"`
	Evolution      []PeriodCount     `json:"evolution"`
	Resolution     ResolutionSummary `json:"resolution"`
	Rating         Rating            `json:"rating"`
}
