package model

type AuditRequest struct {
	Score           ScoreFile `json:"score"`
	IncludeMetadata bool      `json:"include_metadata,omitempty"`
}

type AuditResponse struct {
	Modified      bool           `json:"modified"`
	ResolvedClefs int            `json:"resolved_clefs"`
	Score         ScoreFile      `json:"score"`
	Metadata      *ScoreMetadata `json:"metadata,omitempty"`
}

type ClassifyRequest struct {
	Shape           Shape      `json:"shape"`
	MeasuredPitches []*float64 `json:"measured_pitches"`
}

type ClassifyResponse struct {
	Kind   string             `json:"kind,omitempty"`
	Errors map[string]float64 `json:"errors"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
