package domain

// ValidationStatus classifies an occurrence against the authoritative
// vocabulary list and the extractor's review flags.
type ValidationStatus string

const (
	StatusConfirmed          ValidationStatus = "confirmed"
	StatusConfirmedWithFlag  ValidationStatus = "confirmed_with_flag"
	StatusPotentialNoise     ValidationStatus = "potential_noise"
	StatusHighPriorityReview ValidationStatus = "high_priority_review"
)

func (s ValidationStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusConfirmedWithFlag, StatusPotentialNoise, StatusHighPriorityReview:
		return true
	}
	return false
}

// MatchTier records how an occurrence was matched against the vocabulary
// list. The recovery tiers mark rows inserted by the recovery passes rather
// than by extraction.
type MatchTier string

const (
	TierExact      MatchTier = "exact"
	TierNormalised MatchTier = "normalised"
	TierFuzzy      MatchTier = "fuzzy"
	TierNone       MatchTier = "none"

	TierManualAdd     MatchTier = "manual_add"
	TierVocabRecovery MatchTier = "vocab_first_recovery"
)

// AuditDecision is a reviewer's verdict on an audit issue row.
type AuditDecision string

const (
	DecisionKeep   AuditDecision = "keep"
	DecisionDelete AuditDecision = "delete"
	DecisionAdd    AuditDecision = "add"
	DecisionSkip   AuditDecision = "skip"
)

func (d AuditDecision) Valid() bool {
	switch d {
	case DecisionKeep, DecisionDelete, DecisionAdd, DecisionSkip:
		return true
	}
	return false
}

// EdgeType is derived from whether the two ends share a subject.
type EdgeType string

const (
	EdgeWithinSubject EdgeType = "within_subject"
	EdgeCrossSubject  EdgeType = "cross_subject"
)

// DeriveEdgeType returns the edge type for a pair of occurrence subjects.
func DeriveEdgeType(fromSubject, toSubject string) EdgeType {
	if fromSubject == toSubject {
		return EdgeWithinSubject
	}
	return EdgeCrossSubject
}

// EdgeNature is assigned only by human confirmation, never automatically.
type EdgeNature string

const (
	NatureReinforcement EdgeNature = "reinforcement"
	NatureExtension     EdgeNature = "extension"
	NatureCrossSubject  EdgeNature = "cross_subject_application"
)

func (n EdgeNature) Valid() bool {
	switch n {
	case NatureReinforcement, NatureExtension, NatureCrossSubject:
		return true
	}
	return false
}

// IssueType categorises rows in the term audit queue.
type IssueType string

const (
	IssueMissedFromExtraction IssueType = "missed_from_extraction"
	IssuePotentialNoise       IssueType = "potential_noise"
	IssueHighPriorityReview   IssueType = "high_priority_review"
)

// AuditIssueTypes lists the queue categories in review-priority order.
var AuditIssueTypes = []IssueType{
	IssueMissedFromExtraction,
	IssuePotentialNoise,
	IssueHighPriorityReview,
}

// termOrder maps the six curriculum term periods to their position in the
// school year. Unknown periods sort to 0, ahead of ranked ones.
var termOrder = map[string]int{
	"Autumn1": 1, "Autumn2": 2,
	"Spring1": 3, "Spring2": 4,
	"Summer1": 5, "Summer2": 6,
}

// TermOrdinal returns the 1..6 ordinal of a term period, or 0 if unranked.
func TermOrdinal(term string) int {
	return termOrder[term]
}

// CurriculumPosition orders occurrences by (year, term ordinal, slide).
type CurriculumPosition struct {
	Year        int
	TermOrdinal int
	Slide       int
}

func NewCurriculumPosition(year int, term string, slide int) CurriculumPosition {
	return CurriculumPosition{Year: year, TermOrdinal: TermOrdinal(term), Slide: slide}
}

// Less reports whether p sorts before q in curriculum order.
func (p CurriculumPosition) Less(q CurriculumPosition) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	if p.TermOrdinal != q.TermOrdinal {
		return p.TermOrdinal < q.TermOrdinal
	}
	return p.Slide < q.Slide
}
