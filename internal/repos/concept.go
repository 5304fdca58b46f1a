package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/logger"
)

type ConceptRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Concept, error)
	GetByTerm(ctx context.Context, tx *gorm.DB, term string) (*domain.Concept, error)
	// GetOrCreate returns the concept for term, inserting it if absent.
	// The boolean reports whether a new row was created.
	GetOrCreate(ctx context.Context, tx *gorm.DB, term string, subjectArea *string) (*domain.Concept, bool, error)
	// CleanupOrphans deletes every concept with zero remaining occurrences
	// and returns the number deleted.
	CleanupOrphans(ctx context.Context, tx *gorm.DB) (int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "ConceptRepo")}
}

func (r *conceptRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *conceptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*domain.Concept, error) {
	var c domain.Concept
	err := r.conn(tx).WithContext(ctx).First(&c, "concept_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conceptRepo) GetByTerm(ctx context.Context, tx *gorm.DB, term string) (*domain.Concept, error) {
	var c domain.Concept
	err := r.conn(tx).WithContext(ctx).First(&c, "term = ?", term).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conceptRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, term string, subjectArea *string) (*domain.Concept, bool, error) {
	existing, err := r.GetByTerm(ctx, tx, term)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	c := domain.Concept{Term: term, SubjectArea: subjectArea}
	if err := r.conn(tx).WithContext(ctx).Create(&c).Error; err != nil {
		return nil, false, err
	}
	return &c, true, nil
}

func (r *conceptRepo) CleanupOrphans(ctx context.Context, tx *gorm.DB) (int64, error) {
	res := r.conn(tx).WithContext(ctx).Exec(`
		DELETE FROM concepts
		WHERE concept_id NOT IN (SELECT DISTINCT concept_id FROM occurrences)`)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *conceptRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := r.conn(tx).WithContext(ctx).Model(&domain.Concept{}).Count(&n).Error
	return n, err
}
