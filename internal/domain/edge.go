package domain

// Edge is a confirmed directed relationship between two occurrences of the
// same concept. At most one edge exists per (from, to) pair; confirmation is
// an idempotent upsert keyed on that pair. Edges are never auto-created.
type Edge struct {
	EdgeID         uint `gorm:"column:edge_id;primaryKey;autoIncrement" json:"edge_id"`
	FromOccurrence uint `gorm:"column:from_occurrence;not null;index:idx_edges_from_occurrence" json:"from_occurrence"`
	ToOccurrence   uint `gorm:"column:to_occurrence;not null;index:idx_edges_to_occurrence" json:"to_occurrence"`

	EdgeType      EdgeType   `gorm:"column:edge_type;type:text" json:"edge_type"`
	EdgeNature    EdgeNature `gorm:"column:edge_nature;type:text" json:"edge_nature"`
	ConfirmedBy   string     `gorm:"column:confirmed_by;type:text" json:"confirmed_by"`
	ConfirmedDate string     `gorm:"column:confirmed_date;type:text" json:"confirmed_date"`
}

func (Edge) TableName() string { return "edges" }

// CandidateEdge is a derived, unpersisted proposed edge between two
// occurrences of the same concept, generated from sequential curriculum
// ordering. It awaits human confirmation before becoming an Edge.
type CandidateEdge struct {
	FromOccurrenceID uint   `json:"from_occurrence_id"`
	ToOccurrenceID   uint   `json:"to_occurrence_id"`
	Term             string `json:"term"`

	FromSubject string `json:"from_subject"`
	FromYear    int    `json:"from_year"`
	FromTerm    string `json:"from_term"`
	FromUnit    string `json:"from_unit"`
	FromChapter string `json:"from_chapter"`

	ToSubject string `json:"to_subject"`
	ToYear    int    `json:"to_year"`
	ToTerm    string `json:"to_term"`
	ToUnit    string `json:"to_unit"`
	ToChapter string `json:"to_chapter"`

	EdgeType         EdgeType `json:"edge_type"`
	AlreadyConfirmed bool     `json:"already_confirmed"`
}
