package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/suxatcode/learn-graph-layout/db"
	"github.com/suxatcode/learn-graph-layout/layout"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Meta is the free-form metadata of a layout, stored as jsonb.
type Meta map[string]interface{}

func (m Meta) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	return string(data), err
}

func (m *Meta) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*m = Meta{}
		return nil
	default:
		return errors.Errorf("cannot scan %T into Meta", value)
	}
	return json.Unmarshal(data, m)
}

type Layout struct {
	gorm.Model
	Name      string         `gorm:"uniqueIndex;not null"`
	Meta      Meta           `gorm:"type:jsonb;default:'{}';not null"`
	Positions []NodePosition `gorm:"constraint:OnDelete:CASCADE"`
}

type NodePosition struct {
	ID       uint   `gorm:"primarykey"`
	LayoutID uint   `gorm:"index:noDuplicateVertices,unique;not null"`
	VertexID string `gorm:"index:noDuplicateVertices,unique;not null"`
	X        float64
	Y        float64
}

// positions are inserted in batches of this size
const batchSize = 500

func NewPostgresDB(conf db.Config) (db.Store, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: fmt.Sprintf("host=%s user=learngraph password=%s dbname=learngraph port=5432 sslmode=disable", conf.PGHost, conf.PGPassword),
	}), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	pg := &PostgresDB{
		db: db,
	}
	return pg.init()
}

type PostgresDB struct {
	db *gorm.DB
}

func (pg *PostgresDB) init() (db.Store, error) {
	return pg, pg.db.AutoMigrate(&Layout{}, &NodePosition{})
}

func (pg *PostgresDB) SaveLayout(ctx context.Context, name string, record *db.Record) error {
	if err := db.ValidName(name); err != nil {
		return err
	}
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteLayout(tx, name); err != nil && !errors.Is(err, db.ErrLayoutNotFound) {
			return err
		}
		l := ConvertToLayout(name, record)
		positions := l.Positions
		l.Positions = nil
		if err := tx.Create(&l).Error; err != nil {
			return errors.Wrapf(err, "failed to create layout '%s'", name)
		}
		if len(positions) == 0 {
			return nil
		}
		for i := range positions {
			positions[i].LayoutID = l.ID
		}
		if err := tx.CreateInBatches(positions, batchSize).Error; err != nil {
			return errors.Wrapf(err, "failed to create %d positions of layout '%s'", len(positions), name)
		}
		return nil
	})
}

func (pg *PostgresDB) LoadLayout(ctx context.Context, name string) (*db.Record, error) {
	l := Layout{}
	err := pg.db.WithContext(ctx).Preload("Positions").Where("name = ?", name).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, db.ErrLayoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return ConvertToRecord(l), nil
}

func (pg *PostgresDB) DeleteLayout(ctx context.Context, name string) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteLayout(tx, name)
	})
}

func deleteLayout(tx *gorm.DB, name string) error {
	l := Layout{}
	err := tx.Unscoped().Where("name = ?", name).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.ErrLayoutNotFound
	}
	if err != nil {
		return err
	}
	if err := tx.Where("layout_id = ?", l.ID).Delete(&NodePosition{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&l).Error
}

// ConvertToLayout creates the database representation of record. Positions
// are sorted by vertex id.
func ConvertToLayout(name string, record *db.Record) Layout {
	l := Layout{
		Name:      name,
		Meta:      Meta{},
		Positions: make([]NodePosition, 0, len(record.Pos)),
	}
	for k, v := range record.Meta {
		l.Meta[k] = v
	}
	for _, id := range db.SortedKeys(record.Pos) {
		p := record.Pos[id]
		l.Positions = append(l.Positions, NodePosition{VertexID: id, X: p.X, Y: p.Y})
	}
	return l
}

func ConvertToRecord(l Layout) *db.Record {
	r := &db.Record{
		Meta: map[string]interface{}{},
		Pos:  make(map[string]layout.Position, len(l.Positions)),
	}
	for k, v := range l.Meta {
		r.Meta[k] = v
	}
	for _, p := range l.Positions {
		r.Pos[p.VertexID] = layout.Position{X: p.X, Y: p.Y}
	}
	return r
}
