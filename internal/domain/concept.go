package domain

// Concept is an abstract vocabulary term, deduplicated by exact term text.
// Created on first occurrence insertion; never updated; deleted only when
// its last occurrence is deleted.
type Concept struct {
	ConceptID   uint    `gorm:"column:concept_id;primaryKey;autoIncrement" json:"concept_id"`
	Term        string  `gorm:"column:term;type:text;not null" json:"term"`
	SubjectArea *string `gorm:"column:subject_area;type:text" json:"subject_area,omitempty"`
}

func (Concept) TableName() string { return "concepts" }
