package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/logger"
)

// EdgeUpsertAction reports whether Upsert inserted a new edge or updated an
// existing one.
type EdgeUpsertAction string

const (
	EdgeInserted EdgeUpsertAction = "inserted"
	EdgeUpdated  EdgeUpsertAction = "updated"
)

type EdgeRepo interface {
	// Upsert confirms an edge, keyed on the (from, to) occurrence pair.
	// Re-confirming an existing pair overwrites its type, nature, reviewer
	// and date in place; a second row is never created.
	Upsert(ctx context.Context, tx *gorm.DB, edge *domain.Edge) (EdgeUpsertAction, error)
	GetByPair(ctx context.Context, tx *gorm.DB, from, to uint) (*domain.Edge, error)
	// ConfirmedPairs returns the set of confirmed (from, to) pairs, used to
	// tag candidate edges as already confirmed.
	ConfirmedPairs(ctx context.Context, tx *gorm.DB) (map[[2]uint]bool, error)
	ListForOccurrences(ctx context.Context, tx *gorm.DB, occurrenceIDs []uint) ([]domain.Edge, error)
	CountByType(ctx context.Context, tx *gorm.DB) (map[domain.EdgeType]int64, error)
	CountByNature(ctx context.Context, tx *gorm.DB) (map[domain.EdgeNature]int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type edgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEdgeRepo(db *gorm.DB, baseLog *logger.Logger) EdgeRepo {
	return &edgeRepo{db: db, log: baseLog.With("repo", "EdgeRepo")}
}

func (r *edgeRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *edgeRepo) Upsert(ctx context.Context, tx *gorm.DB, edge *domain.Edge) (EdgeUpsertAction, error) {
	existing, err := r.GetByPair(ctx, tx, edge.FromOccurrence, edge.ToOccurrence)
	if err != nil {
		return "", err
	}
	if existing != nil {
		err := r.conn(tx).WithContext(ctx).
			Model(&domain.Edge{}).
			Where("edge_id = ?", existing.EdgeID).
			Updates(map[string]interface{}{
				"edge_type":      edge.EdgeType,
				"edge_nature":    edge.EdgeNature,
				"confirmed_by":   edge.ConfirmedBy,
				"confirmed_date": edge.ConfirmedDate,
			}).Error
		if err != nil {
			return "", err
		}
		edge.EdgeID = existing.EdgeID
		return EdgeUpdated, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(edge).Error; err != nil {
		return "", err
	}
	return EdgeInserted, nil
}

func (r *edgeRepo) GetByPair(ctx context.Context, tx *gorm.DB, from, to uint) (*domain.Edge, error) {
	var e domain.Edge
	err := r.conn(tx).WithContext(ctx).
		First(&e, "from_occurrence = ? AND to_occurrence = ?", from, to).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *edgeRepo) ConfirmedPairs(ctx context.Context, tx *gorm.DB) (map[[2]uint]bool, error) {
	var edges []domain.Edge
	if err := r.conn(tx).WithContext(ctx).
		Select("from_occurrence", "to_occurrence").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	pairs := make(map[[2]uint]bool, len(edges))
	for _, e := range edges {
		pairs[[2]uint{e.FromOccurrence, e.ToOccurrence}] = true
	}
	return pairs, nil
}

func (r *edgeRepo) ListForOccurrences(ctx context.Context, tx *gorm.DB, occurrenceIDs []uint) ([]domain.Edge, error) {
	var edges []domain.Edge
	if len(occurrenceIDs) == 0 {
		return edges, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Where("from_occurrence IN ? OR to_occurrence IN ?", occurrenceIDs, occurrenceIDs).
		Find(&edges).Error
	return edges, err
}

func (r *edgeRepo) CountByType(ctx context.Context, tx *gorm.DB) (map[domain.EdgeType]int64, error) {
	type row struct {
		EdgeType domain.EdgeType `gorm:"column:edge_type"`
		N        int64           `gorm:"column:n"`
	}
	var rows []row
	err := r.conn(tx).WithContext(ctx).
		Table("edges").
		Select("edge_type, COUNT(*) AS n").
		Group("edge_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.EdgeType]int64, len(rows))
	for _, r := range rows {
		out[r.EdgeType] = r.N
	}
	return out, nil
}

func (r *edgeRepo) CountByNature(ctx context.Context, tx *gorm.DB) (map[domain.EdgeNature]int64, error) {
	type row struct {
		EdgeNature domain.EdgeNature `gorm:"column:edge_nature"`
		N          int64             `gorm:"column:n"`
	}
	var rows []row
	err := r.conn(tx).WithContext(ctx).
		Table("edges").
		Select("edge_nature, COUNT(*) AS n").
		Group("edge_nature").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.EdgeNature]int64, len(rows))
	for _, r := range rows {
		out[r.EdgeNature] = r.N
	}
	return out, nil
}

func (r *edgeRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := r.conn(tx).WithContext(ctx).Model(&domain.Edge{}).Count(&n).Error
	return n, err
}
