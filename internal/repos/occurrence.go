package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/logger"
)

// UnitKey identifies one unit of work for the reconciliation passes:
// a (subject, year, term period, unit) tuple plus the source deck path
// shared by the unit's occurrences.
type UnitKey struct {
	Subject    string `gorm:"column:subject"`
	Year       int    `gorm:"column:year"`
	Term       string `gorm:"column:term"`
	Unit       string `gorm:"column:unit"`
	SourcePath string `gorm:"column:source_path"`
}

// OccurrenceRow is an occurrence joined with its concept's term text.
type OccurrenceRow struct {
	domain.Occurrence
	ConceptTerm string `gorm:"column:concept_term"`
}

// occurrenceSelect joins occurrences to concepts for OccurrenceRow scans.
const occurrenceSelect = "occurrences.*, concepts.term AS concept_term"

// ListFilter narrows and paginates occurrence listings. Zero values mean no
// filtering on that axis; Limit <= 0 disables pagination.
type ListFilter struct {
	Subject string
	Year    int
	Term    string
	Search  string // substring match on the concept's term text
	Limit   int
	Offset  int
}

type OccurrenceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, occ *domain.Occurrence) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Occurrence, error)
	GetRowByID(ctx context.Context, tx *gorm.DB, id uint) (*OccurrenceRow, error)
	// Delete removes an occurrence by id. Returns false if the row was
	// already gone, keeping repeated applies idempotent.
	Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error)

	DistinctUnits(ctx context.Context, tx *gorm.DB) ([]UnitKey, error)
	DistinctSourcePaths(ctx context.Context, tx *gorm.DB) ([]string, error)
	GetByUnit(ctx context.Context, tx *gorm.DB, subject string, year int, term, unit string) ([]OccurrenceRow, error)
	SourcePathForUnit(ctx context.Context, tx *gorm.DB, subject string, year int, term, unit string) (string, error)

	// ExistsAt reports whether an occurrence already exists for the concept
	// at the given curriculum location (slide may be nil). The guard behind
	// every recovery/add insertion.
	ExistsAt(ctx context.Context, tx *gorm.DB, conceptID uint, subject string, year int, term, unit string, slide *int) (bool, error)
	// FindID locates an occurrence by unit, concept term and (optionally)
	// slide number, for audit rows that carry no id of their own.
	FindID(ctx context.Context, tx *gorm.DB, subject string, year int, term, unit, conceptTerm string, slide *int) (uint, bool, error)

	// ListByStatuses pages through occurrences in the given statuses, in
	// curriculum order, returning the page and the unpaginated total.
	ListByStatuses(ctx context.Context, tx *gorm.DB, statuses []domain.ValidationStatus, f ListFilter) ([]OccurrenceRow, int64, error)
	// ListAll is the corpus browse query behind the review UI.
	ListAll(ctx context.Context, tx *gorm.DB, f ListFilter) ([]OccurrenceRow, int64, error)

	DeleteByStatuses(ctx context.Context, tx *gorm.DB, statuses []domain.ValidationStatus) (int64, error)
	CountByStatuses(ctx context.Context, tx *gorm.DB, statuses []domain.ValidationStatus) (int64, error)
	PromoteStatus(ctx context.Context, tx *gorm.DB, from, to domain.ValidationStatus) (int64, error)

	UpdateChapter(ctx context.Context, tx *gorm.DB, id uint, chapter string) error
	SetValidationStatus(ctx context.Context, tx *gorm.DB, id uint, status domain.ValidationStatus) error
	UpdateValidation(ctx context.Context, tx *gorm.DB, id uint, status domain.ValidationStatus, confidence float64, tier domain.MatchTier, vocabSource string) error
	SetAuditDecision(ctx context.Context, tx *gorm.DB, id uint, decision *domain.AuditDecision, notes *string) error
	ListWithDecisions(ctx context.Context, tx *gorm.DB) ([]OccurrenceRow, error)

	// ConfirmedRows returns every confirmed occurrence joined with its
	// concept term, ordered by concept then curriculum position, for the
	// candidate edge generator.
	ConfirmedRows(ctx context.Context, tx *gorm.DB) ([]OccurrenceRow, error)
	GetByConceptOrdered(ctx context.Context, tx *gorm.DB, conceptID uint) ([]domain.Occurrence, error)
}

type occurrenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOccurrenceRepo(db *gorm.DB, baseLog *logger.Logger) OccurrenceRepo {
	return &occurrenceRepo{db: db, log: baseLog.With("repo", "OccurrenceRepo")}
}

func (r *occurrenceRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// termOrderCase sorts term periods in curriculum order inside SQL.
const termOrderCase = `CASE occurrences.term
	WHEN 'Autumn1' THEN 1 WHEN 'Autumn2' THEN 2
	WHEN 'Spring1' THEN 3 WHEN 'Spring2' THEN 4
	WHEN 'Summer1' THEN 5 WHEN 'Summer2' THEN 6 ELSE 0 END`

func (r *occurrenceRepo) Create(ctx context.Context, tx *gorm.DB, occ *domain.Occurrence) error {
	return r.conn(tx).WithContext(ctx).Create(occ).Error
}

func (r *occurrenceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Occurrence, error) {
	var occ domain.Occurrence
	err := r.conn(tx).WithContext(ctx).First(&occ, "occurrence_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &occ, nil
}

func (r *occurrenceRepo) GetRowByID(ctx context.Context, tx *gorm.DB, id uint) (*OccurrenceRow, error) {
	var row OccurrenceRow
	err := r.conn(tx).WithContext(ctx).
		Table("occurrences").
		Select(occurrenceSelect).
		Joins("JOIN concepts ON occurrences.concept_id = concepts.concept_id").
		Where("occurrences.occurrence_id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *occurrenceRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	res := r.conn(tx).WithContext(ctx).Delete(&domain.Occurrence{}, "occurrence_id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *occurrenceRepo) DistinctUnits(ctx context.Context, tx *gorm.DB) ([]UnitKey, error) {
	var units []UnitKey
	err := r.conn(tx).WithContext(ctx).
		Table("occurrences").
		Distinct("subject", "year", "term", "unit", "source_path").
		Order("subject, year, term, unit").
		Scan(&units).Error
	return units, err
}

func (r *occurrenceRepo) DistinctSourcePaths(ctx context.Context, tx *gorm.DB) ([]string, error) {
	var paths []string
	err := r.conn(tx).WithContext(ctx).
		Table("occurrences").
		Where("source_path IS NOT NULL").
		Distinct("source_path").
		Pluck("source_path", &paths).Error
	return paths, err
}

func (r *occurrenceRepo) GetByUnit(ctx context.Context, tx *gorm.DB, subject string, year int, term, unit string) ([]OccurrenceRow, error) {
	var rows []OccurrenceRow
	err := r.conn(tx).WithContext(ctx).
		Table("occurrences").
		Select(occurrenceSelect).
		Joins("JOIN concepts ON occurrences.concept_id = concepts.concept_id").
		Where("occurrences.subject = ? AND occurrences.year = ? AND occurrences.term = ? AND occurrences.unit = ?",
			subject, year, term, unit).
		Order("occurrences.slide_number").
		Scan(&rows).Error
	return rows, err
}

func (r *occurrenceRepo) SourcePathForUnit(ctx context.Context, tx *gorm.DB, subject string, year int, term, unit string) (string, error) {
	var path string
	err := r.conn(tx).WithContext(ctx).
		Table("occurrences").
		Where("subject = ? AND year = ? AND term = ? AND unit = ? AND source_path IS NOT NULL",
			subject, year, term, unit).
		Limit(1).
		Pluck("source_path", &path).Error
	return path, err
}

func (r *occurrenceRepo) ExistsAt(ctx context.Context, tx *gorm.DB, conceptID uint, subject string, year int, term, unit string, slide *int) (bool, error) {
	q := r.conn(tx).WithContext(ctx).
		Model(&domain.Occurrence{}).
		Where("concept_id = ? AND subject = ? AND year = ? AND term = ? AND unit = ?",
			conceptID, subject, year, term, unit)
	if slide != nil {
		q = q.Where("slide_number = ?", *slide)
	} else {
		q = q.Where("slide_number IS NULL")
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *occurrenceRepo) FindID(ctx context.Context, tx *gorm.DB, subject string, year int, term, unit, conceptTerm string, slide *int) (uint, bool, error) {
	q := r.conn(tx).WithContext(ctx).
		Table("occurrences").
		Joins("JOIN concepts ON occurrences.concept_id = concepts.concept_id").
		Where("occurrences.subject = ? AND occurrences.year = ? AND occurrences.term = ? AND occurrences.unit = ? AND concepts.term = ?",
			subject, year, term, unit, conceptTerm)
	if slide != nil {
		q = q.Where("occurrences.slide_number = ?", *slide)
	}
	var ids []uint
	if err := q.Limit(1).Pluck("occurrences.occurrence_id", &ids).Error; err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

func (r *occurrenceRepo) listQuery(ctx context.Context, tx *gorm.DB, f ListFilter) *gorm.DB {
	q := r.conn(tx).WithContext(ctx).
		Table("occurrences").
		Joins("JOIN concepts ON occurrences.concept_id = concepts.concept_id")
	if f.Subject != "" {
		q = q.Where("occurrences.subject = ?", f.Subject)
	}
	if f.Year != 0 {
		q = q.Where("occurrences.year = ?", f.Year)
	}
	if f.Term != "" {
		q = q.Where("occurrences.term = ?", f.Term)
	}
	if f.Search != "" {
		q = q.Where("concepts.term LIKE ?", "%"+f.Search+"%")
	}
	return q
}

func (r *occurrenceRepo) listPage(ctx context.Context, tx *gorm.DB, f ListFilter, base func() *gorm.DB) ([]OccurrenceRow, int64, error) {
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := base().
		Select(occurrenceSelect).
		Order("occurrences.year, " + termOrderCase + ", occurrences.slide_number, occurrences.occurrence_id")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var rows []OccurrenceRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *occurrenceRepo) ListByStatuses(ctx context.Context, tx *gorm.DB, statuses []domain.ValidationStatus, f ListFilter) ([]OccurrenceRow, int64, error) {
	return r.listPage(ctx, tx, f, func() *gorm.DB {
		return r.listQuery(ctx, tx, f).Where("occurrences.validation_status IN ?", statuses)
	})
}

func (r *occurrenceRepo) ListAll(ctx context.Context, tx *gorm.DB, f ListFilter) ([]OccurrenceRow, int64, error) {
	return r.listPage(ctx, tx, f, func() *gorm.DB {
		return r.listQuery(ctx, tx, f)
	})
}

func (r *occurrenceRepo) DeleteByStatuses(ctx context.Context, tx *gorm.DB, statuses []domain.ValidationStatus) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Where("validation_status IN ?", statuses).
		Delete(&domain.Occurrence{})
	return res.RowsAffected, res.Error
}

func (r *occurrenceRepo) CountByStatuses(ctx context.Context, tx *gorm.DB, statuses []domain.ValidationStatus) (int64, error) {
	var n int64
	err := r.conn(tx).WithContext(ctx).
		Model(&domain.Occurrence{}).
		Where("validation_status IN ?", statuses).
		Count(&n).Error
	return n, err
}

func (r *occurrenceRepo) PromoteStatus(ctx context.Context, tx *gorm.DB, from, to domain.ValidationStatus) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&domain.Occurrence{}).
		Where("validation_status = ?", from).
		Update("validation_status", to)
	return res.RowsAffected, res.Error
}

func (r *occurrenceRepo) UpdateChapter(ctx context.Context, tx *gorm.DB, id uint, chapter string) error {
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Occurrence{}).
		Where("occurrence_id = ?", id).
		Update("chapter", chapter).Error
}

func (r *occurrenceRepo) SetValidationStatus(ctx context.Context, tx *gorm.DB, id uint, status domain.ValidationStatus) error {
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Occurrence{}).
		Where("occurrence_id = ?", id).
		Update("validation_status", status).Error
}

func (r *occurrenceRepo) UpdateValidation(ctx context.Context, tx *gorm.DB, id uint, status domain.ValidationStatus, confidence float64, tier domain.MatchTier, vocabSource string) error {
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Occurrence{}).
		Where("occurrence_id = ?", id).
		Updates(map[string]interface{}{
			"validation_status": status,
			"vocab_confidence":  confidence,
			"vocab_match_type":  tier,
			"vocab_source":      vocabSource,
		}).Error
}

func (r *occurrenceRepo) SetAuditDecision(ctx context.Context, tx *gorm.DB, id uint, decision *domain.AuditDecision, notes *string) error {
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Occurrence{}).
		Where("occurrence_id = ?", id).
		Updates(map[string]interface{}{
			"audit_decision": decision,
			"audit_notes":    notes,
		}).Error
}

func (r *occurrenceRepo) ListWithDecisions(ctx context.Context, tx *gorm.DB) ([]OccurrenceRow, error) {
	var rows []OccurrenceRow
	err := r.conn(tx).WithContext(ctx).
		Table("occurrences").
		Select(occurrenceSelect).
		Joins("JOIN concepts ON occurrences.concept_id = concepts.concept_id").
		Where("occurrences.audit_decision IS NOT NULL").
		Scan(&rows).Error
	return rows, err
}

func (r *occurrenceRepo) ConfirmedRows(ctx context.Context, tx *gorm.DB) ([]OccurrenceRow, error) {
	var rows []OccurrenceRow
	err := r.conn(tx).WithContext(ctx).
		Table("occurrences").
		Select(occurrenceSelect).
		Joins("JOIN concepts ON occurrences.concept_id = concepts.concept_id").
		Where("occurrences.validation_status = ?", domain.StatusConfirmed).
		Order("occurrences.concept_id, occurrences.year, " + termOrderCase + ", occurrences.slide_number, occurrences.occurrence_id").
		Scan(&rows).Error
	return rows, err
}

func (r *occurrenceRepo) GetByConceptOrdered(ctx context.Context, tx *gorm.DB, conceptID uint) ([]domain.Occurrence, error) {
	var occs []domain.Occurrence
	err := r.conn(tx).WithContext(ctx).
		Where("concept_id = ?", conceptID).
		Order("year, " + termOrderCase + ", slide_number, occurrence_id").
		Find(&occs).Error
	return occs, err
}
