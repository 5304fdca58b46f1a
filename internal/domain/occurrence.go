package domain

// Occurrence is one appearance of a concept at a specific curriculum
// position. Concept text is immutable once created, but the validation and
// audit fields are mutated repeatedly across reconciliation passes.
type Occurrence struct {
	OccurrenceID uint `gorm:"column:occurrence_id;primaryKey;autoIncrement" json:"occurrence_id"`
	ConceptID    uint `gorm:"column:concept_id;not null;index:idx_occurrences_concept_id" json:"concept_id"`

	Subject string `gorm:"column:subject;type:text;not null" json:"subject"`
	Year    int    `gorm:"column:year;not null" json:"year"`
	// Term is the curriculum term period (Autumn1..Summer2), not the
	// concept text — that lives on concepts.term.
	Term    string  `gorm:"column:term;type:text;not null" json:"term"`
	Unit    string  `gorm:"column:unit;type:text;not null" json:"unit"`
	Chapter *string `gorm:"column:chapter;type:text" json:"chapter,omitempty"`

	SlideNumber    *int    `gorm:"column:slide_number" json:"slide_number,omitempty"`
	IsIntroduction bool    `gorm:"column:is_introduction;not null;index:idx_occurrences_is_introduction" json:"is_introduction"`
	TermInContext  *string `gorm:"column:term_in_context;type:text" json:"term_in_context,omitempty"`
	SourcePath     *string `gorm:"column:source_path;type:text" json:"source_path,omitempty"`

	NeedsReview  bool    `gorm:"column:needs_review;not null;default:0" json:"needs_review"`
	ReviewReason *string `gorm:"column:review_reason;type:text" json:"review_reason,omitempty"`

	ValidationStatus *ValidationStatus `gorm:"column:validation_status;type:text" json:"validation_status,omitempty"`
	VocabConfidence  *float64          `gorm:"column:vocab_confidence" json:"vocab_confidence,omitempty"`
	VocabMatchType   *MatchTier        `gorm:"column:vocab_match_type;type:text" json:"vocab_match_type,omitempty"`
	VocabSource      *string           `gorm:"column:vocab_source;type:text" json:"vocab_source,omitempty"`

	AuditDecision *AuditDecision `gorm:"column:audit_decision;type:text" json:"audit_decision,omitempty"`
	AuditNotes    *string        `gorm:"column:audit_notes;type:text" json:"audit_notes,omitempty"`
}

func (Occurrence) TableName() string { return "occurrences" }

// Position returns the sortable curriculum position of the occurrence.
func (o *Occurrence) Position() CurriculumPosition {
	slide := 0
	if o.SlideNumber != nil {
		slide = *o.SlideNumber
	}
	return NewCurriculumPosition(o.Year, o.Term, slide)
}
