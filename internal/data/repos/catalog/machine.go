package catalog

import (
	"time"

	"gorm.io/gorm"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

// MachineFilter narrows List. Zero values mean "no constraint".
type MachineFilter struct {
	ManufacturerSlug string
	Year             *int
	MachineType      string
	Limit            int
	Offset           int
}

type MachineRepo interface {
	Create(dbc dbctx.Context, m *types.Machine) error
	GetByID(dbc dbctx.Context, id uint) (*types.Machine, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Machine, error)
	GetDetailBySlug(dbc dbctx.Context, slug string) (*types.Machine, error)
	All(dbc dbctx.Context) ([]*types.Machine, error)
	List(dbc dbctx.Context, f MachineFilter) ([]*types.Machine, int64, error)
	UpdateColumns(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	SlugTaken(dbc dbctx.Context, slug string) (bool, error)
	CountByManufacturer(dbc dbctx.Context, manufacturerID uint) (int64, error)
	GetOtherByColumn(dbc dbctx.Context, column string, value interface{}, excludeID uint) (*types.Machine, error)
}

type machineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMachineRepo(db *gorm.DB, baseLog *logger.Logger) MachineRepo {
	return &machineRepo{db: db, log: baseLog.With("repo", "MachineRepo")}
}

func (r *machineRepo) Create(dbc dbctx.Context, m *types.Machine) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(m).Error
}

func (r *machineRepo) GetByID(dbc dbctx.Context, id uint) (*types.Machine, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Machine
	err := t.WithContext(dbc.Ctx).First(&out, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *machineRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Machine, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Machine
	err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDetailBySlug loads the machine with everything the detail endpoint
// renders: manufacturer, group, credits with people, themes.
func (r *machineRepo) GetDetailBySlug(dbc dbctx.Context, slug string) (*types.Machine, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Machine
	err := t.WithContext(dbc.Ctx).
		Preload("Manufacturer").
		Preload("MachineGroup").
		Preload("Credits.Person").
		Preload("Themes.Theme").
		Where("slug = ?", slug).
		First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *machineRepo) All(dbc dbctx.Context) ([]*types.Machine, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Machine
	if err := t.WithContext(dbc.Ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *machineRepo) List(dbc dbctx.Context, f MachineFilter) ([]*types.Machine, int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Machine{})
	if f.ManufacturerSlug != "" {
		q = q.Joins("JOIN manufacturer ON manufacturer.id = machine.manufacturer_id").
			Where("manufacturer.slug = ?", f.ManufacturerSlug)
	}
	if f.Year != nil {
		q = q.Where("machine.year = ?", *f.Year)
	}
	if f.MachineType != "" {
		q = q.Where("machine.machine_type = ?", f.MachineType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.Machine
	if err := q.
		Preload("Manufacturer").
		Order("machine.name, machine.id").
		Limit(limit).
		Offset(f.Offset).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *machineRepo) UpdateColumns(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Machine{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *machineRepo) SlugTaken(dbc dbctx.Context, slug string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Machine{}).
		Where("slug = ?", slug).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *machineRepo) CountByManufacturer(dbc dbctx.Context, manufacturerID uint) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Machine{}).
		Where("manufacturer_id = ?", manufacturerID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// GetOtherByColumn returns a machine other than excludeID holding value
// in column, or nil. column must be one of the descriptor-declared
// unique columns, never caller input.
func (r *machineRepo) GetOtherByColumn(dbc dbctx.Context, column string, value interface{}, excludeID uint) (*types.Machine, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Machine
	err := t.WithContext(dbc.Ctx).
		Where(column+" = ?", value).
		Where("id <> ?", excludeID).
		First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
