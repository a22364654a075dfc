package material

import (
	"context"
	"errors"
	"printshop/internal/service/pricing/layout"
	"printshop/internal/storage"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetMaterial(ctx context.Context, id int64) (*storage.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Material), args.Error(1)
}

func (m *MockStorage) GetProductMaterials(ctx context.Context, productID int64) ([]storage.ProductMaterial, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ProductMaterial), args.Error(1)
}

func (m *MockStorage) GetMaterialRules(ctx context.Context, productType, productName string) ([]storage.MaterialRule, error) {
	args := m.Called(ctx, productType, productName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.MaterialRule), args.Error(1)
}

func (m *MockStorage) GetInStockMaterials(ctx context.Context, limit int) ([]storage.Material, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Material), args.Error(1)
}

var (
	coated  = storage.Material{ID: 1, Name: "Мелованная 300г", Unit: "лист", PricePerSheet: 2.5, InStock: true}
	offset  = storage.Material{ID: 2, Name: "Офсетная 80г", Unit: "лист", PricePerSheet: 0.8, InStock: true}
	film    = storage.Material{ID: 3, Name: "Плёнка ламинации", Unit: "м2", PricePerSheet: 4, InStock: true}
	flyer   = storage.Product{ID: 10, Name: "Листовка", Type: "flyers"}
	flyerSz = layout.Dimensions{Width: 150, Height: 210}
)

func baseInput() Input {
	return Input{
		Product:      flyer,
		Size:         flyerSz,
		Layout:       layout.Result{FitsOnSheet: true, ItemsPerSheet: 4},
		Quantity:     400,
		SheetsNeeded: 100,
	}
}

func TestResolve_ExplicitBeatsProductMaterials(t *testing.T) {
	// 1. Явно выбран материал и одновременно у изделия есть свои материалы
	st := new(MockStorage)
	st.On("GetMaterial", mock.Anything, int64(1)).Return(&coated, nil)

	in := baseInput()
	id := int64(1)
	in.MaterialID = &id

	// 2. Считаем
	res, err := NewResolver(st).Resolve(context.Background(), in)

	// 3. Берётся только явный выбор, до материалов изделия дело не доходит
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, SourceExplicit, res.Source)
	assert.Equal(t, 100, res.Lines[0].Quantity)
	assert.Equal(t, 250.0, res.Lines[0].Total)
	assert.False(t, res.Estimated)
	assert.False(t, res.ExplicitMissing)
	st.AssertNotCalled(t, "GetProductMaterials", mock.Anything, mock.Anything)
}

func TestResolve_ExplicitMissingFallsThrough(t *testing.T) {
	st := new(MockStorage)
	st.On("GetMaterial", mock.Anything, int64(99)).Return(nil, storage.ErrNotFound)
	st.On("GetProductMaterials", mock.Anything, int64(10)).Return([]storage.ProductMaterial{
		{MaterialID: 2, QtyPerSheet: 1, Material: offset},
	}, nil)

	in := baseInput()
	id := int64(99)
	in.MaterialID = &id

	res, err := NewResolver(st).Resolve(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, SourceProduct, res.Source)
	assert.Equal(t, int64(2), res.Lines[0].MaterialID)
	assert.True(t, res.ExplicitMissing)
	assert.False(t, res.Estimated)
}

func TestResolve_ProductMaterialsRoundUp(t *testing.T) {
	st := new(MockStorage)
	st.On("GetProductMaterials", mock.Anything, int64(10)).Return([]storage.ProductMaterial{
		{MaterialID: 3, QtyPerSheet: 0.15, Material: film},
		{MaterialID: 2, QtyPerSheet: 0.1, Material: offset},
	}, nil)

	in := baseInput()
	in.SheetsNeeded = 30

	res, err := NewResolver(st).Resolve(context.Background(), in)

	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	// 0.15 * 30 = 4.5 -> 5
	assert.Equal(t, 5, res.Lines[0].Quantity)
	assert.Equal(t, 20.0, res.Lines[0].Total)
	// 0.1 * 30 в float даёт 3.0000000000000004, должно остаться 3
	assert.Equal(t, 3, res.Lines[1].Quantity)
}

func TestResolve_RulesByBasis(t *testing.T) {
	st := new(MockStorage)
	st.On("GetProductMaterials", mock.Anything, int64(10)).Return([]storage.ProductMaterial{}, nil)
	st.On("GetMaterialRules", mock.Anything, "flyers", "Листовка").Return([]storage.MaterialRule{
		{ID: 1, MaterialID: 1, QtyPerUnit: 1, Basis: storage.BasisPerSheet, Material: coated},
		{ID: 2, MaterialID: 3, QtyPerUnit: 1, Basis: storage.BasisPerSquareMeter, Material: film},
		{ID: 3, MaterialID: 2, QtyPerUnit: 0.5, Basis: storage.BasisPerItem, Material: offset},
		{ID: 4, MaterialID: 2, QtyPerUnit: 2, Basis: storage.BasisFixed, Material: offset},
		{ID: 5, ProductName: "Буклет", MaterialID: 2, QtyPerUnit: 100, Basis: storage.BasisFixed, Material: offset},
	}, nil)

	res, err := NewResolver(st).Resolve(context.Background(), baseInput())

	require.NoError(t, err)
	assert.Equal(t, SourceRule, res.Source)
	require.Len(t, res.Lines, 4)

	assert.Equal(t, 100, res.Lines[0].Quantity)
	// 400 * 0.15 * 0.21 = 12.6 -> 13
	assert.Equal(t, 13, res.Lines[1].Quantity)
	assert.Equal(t, 200, res.Lines[2].Quantity)
	assert.Equal(t, 2, res.Lines[3].Quantity)
	assert.Equal(t, storage.BasisFixed, res.Lines[3].Basis)
}

func TestResolve_RuleNameMatchIsCaseInsensitive(t *testing.T) {
	st := new(MockStorage)
	st.On("GetProductMaterials", mock.Anything, int64(10)).Return(nil, nil)
	st.On("GetMaterialRules", mock.Anything, "flyers", "Листовка").Return([]storage.MaterialRule{
		{ID: 1, ProductName: "листовка", MaterialID: 1, QtyPerUnit: 1, Basis: storage.BasisPerSheet, Material: coated},
	}, nil)

	res, err := NewResolver(st).Resolve(context.Background(), baseInput())

	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, int64(1), res.Lines[0].MaterialID)
}

func TestResolve_TemplateMaterialsNotCoveredByRules(t *testing.T) {
	st := new(MockStorage)
	st.On("GetProductMaterials", mock.Anything, int64(10)).Return(nil, nil)
	st.On("GetMaterialRules", mock.Anything, "flyers", "Листовка").Return([]storage.MaterialRule{
		{ID: 1, MaterialID: 1, QtyPerUnit: 1, Basis: storage.BasisPerSheet, Material: coated},
	}, nil)
	st.On("GetMaterial", mock.Anything, int64(2)).Return(&offset, nil)
	st.On("GetMaterial", mock.Anything, int64(7)).Return(nil, storage.ErrNotFound)

	in := baseInput()
	in.Template = &storage.ProductTemplate{MaterialIDs: []int64{1, 2, 7}}

	res, err := NewResolver(st).Resolve(context.Background(), in)

	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, SourceRule, res.Lines[0].Source)
	assert.Equal(t, SourceTemplate, res.Lines[1].Source)
	assert.Equal(t, 100, res.Lines[1].Quantity)
	st.AssertNotCalled(t, "GetMaterial", mock.Anything, int64(1))
}

func TestResolve_TemplateQuantityWithoutSheets(t *testing.T) {
	st := new(MockStorage)
	st.On("GetProductMaterials", mock.Anything, int64(10)).Return(nil, nil)
	st.On("GetMaterialRules", mock.Anything, "flyers", "Листовка").Return(nil, nil)
	st.On("GetMaterial", mock.Anything, int64(2)).Return(&offset, nil)

	in := baseInput()
	in.SheetsNeeded = 0
	in.Quantity = 10
	in.Template = &storage.ProductTemplate{MaterialIDs: []int64{2}}

	res, err := NewResolver(st).Resolve(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, SourceTemplate, res.Source)
	// 10 / 4 = 2.5 -> 3
	assert.Equal(t, 3, res.Lines[0].Quantity)
}

func TestResolve_FallbackIsEstimated(t *testing.T) {
	st := new(MockStorage)
	st.On("GetProductMaterials", mock.Anything, int64(10)).Return(nil, nil)
	st.On("GetMaterialRules", mock.Anything, "flyers", "Листовка").Return(nil, nil)
	st.On("GetInStockMaterials", mock.Anything, 5).Return([]storage.Material{coated, offset}, nil)

	res, err := NewResolver(st).Resolve(context.Background(), baseInput())

	require.NoError(t, err)
	assert.True(t, res.Estimated)
	assert.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, 100, res.Lines[1].Quantity)
	assert.Equal(t, 80.0, res.Lines[1].Total)
}

func TestResolve_NothingConfigured(t *testing.T) {
	st := new(MockStorage)
	st.On("GetProductMaterials", mock.Anything, int64(10)).Return(nil, nil)
	st.On("GetMaterialRules", mock.Anything, "flyers", "Листовка").Return(nil, nil)
	st.On("GetInStockMaterials", mock.Anything, 5).Return(nil, nil)

	res, err := NewResolver(st).Resolve(context.Background(), baseInput())

	require.NoError(t, err)
	assert.Empty(t, res.Lines)
	assert.False(t, res.Estimated)
}

func TestResolve_ZeroPriceIsValid(t *testing.T) {
	free := storage.Material{ID: 5, Name: "Давальческая бумага", Unit: "лист"}

	st := new(MockStorage)
	st.On("GetMaterial", mock.Anything, int64(5)).Return(&free, nil)

	in := baseInput()
	id := int64(5)
	in.MaterialID = &id

	res, err := NewResolver(st).Resolve(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Lines[0].Total)
}

func TestResolve_UnknownBasis(t *testing.T) {
	st := new(MockStorage)
	st.On("GetProductMaterials", mock.Anything, int64(10)).Return(nil, nil)
	st.On("GetMaterialRules", mock.Anything, "flyers", "Листовка").Return([]storage.MaterialRule{
		{ID: 9, MaterialID: 1, QtyPerUnit: 1, Basis: "per_pallet", Material: coated},
	}, nil)

	_, err := NewResolver(st).Resolve(context.Background(), baseInput())

	assert.ErrorContains(t, err, "per_pallet")
}

func TestResolve_StorageError(t *testing.T) {
	st := new(MockStorage)
	st.On("GetProductMaterials", mock.Anything, int64(10)).Return(nil, errors.New("db down"))

	_, err := NewResolver(st).Resolve(context.Background(), baseInput())

	assert.ErrorContains(t, err, "db down")
}
