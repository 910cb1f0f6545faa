package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/erp/buildledger/internal/application/txn"
	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/erp/buildledger/internal/infrastructure/csvimport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newImportService(repo *MockProductRepository) *ProductImportService {
	return NewProductImportService(repo, txn.NewNoOpScope(&txn.Set{ProductRepo: repo}), nil)
}

const catalogueCSV = `code,name,category,unit,hsn_code,gst_rate,reorder_level
cem-opc53,OPC 53 Cement,Cement,bag,2523,28,200
tmt-12,TMT Bar 12mm,steel,KG,7214,18,
sand-m,M-Sand,sand,cum,,5,10
`

func TestProductImportService_Import(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	codes := []string{"CEM-OPC53", "TMT-12", "SAND-M"}

	t.Run("creates new products and skips existing ones", func(t *testing.T) {
		repo := new(MockProductRepository)
		existing := cement(t, tenantID)
		repo.On("FindByCodes", ctx, tenantID, codes).Return([]catalog.Product{*existing}, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		res, err := newImportService(repo).Import(ctx, tenantID, strings.NewReader(catalogueCSV), ImportProductsRequest{})
		require.NoError(t, err)
		assert.True(t, res.Accepted())
		assert.Equal(t, 3, res.TotalRows)
		assert.Equal(t, 2, res.Created)
		assert.Equal(t, 1, res.Skipped)
		repo.AssertNumberOfCalls(t, "Save", 2)

		saved := repo.Calls[1].Arguments.Get(1).(*catalog.Product)
		assert.Equal(t, "TMT-12", saved.Code)
		assert.Equal(t, catalog.UnitKg, saved.Unit)
		assert.True(t, saved.ReorderLevel.IsZero())
	})

	t.Run("update mode rewrites existing products", func(t *testing.T) {
		repo := new(MockProductRepository)
		existing := cement(t, tenantID)
		repo.On("FindByCodes", ctx, tenantID, codes).Return([]catalog.Product{*existing}, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
		repo.On("SaveWithLock", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		res, err := newImportService(repo).Import(ctx, tenantID, strings.NewReader(catalogueCSV), ImportProductsRequest{Mode: ConflictUpdate})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Created)
		assert.Equal(t, 1, res.Updated)
		repo.AssertNumberOfCalls(t, "SaveWithLock", 1)
		repo.AssertNotCalled(t, "HasStockHistory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("update refuses a unit change on stocked material", func(t *testing.T) {
		repo := new(MockProductRepository)
		existing := cement(t, tenantID)
		repo.On("FindByCodes", ctx, tenantID, []string{"CEM-OPC53"}).Return([]catalog.Product{*existing}, nil)
		repo.On("HasStockHistory", ctx, tenantID, existing.ID).Return(true, nil)

		csv := "code,name,category,unit,gst_rate\nCEM-OPC53,OPC 53 Cement,cement,kg,28\n"
		_, err := newImportService(repo).Import(ctx, tenantID, strings.NewReader(csv), ImportProductsRequest{Mode: ConflictUpdate})
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("fail mode rejects the file on conflict", func(t *testing.T) {
		repo := new(MockProductRepository)
		existing := cement(t, tenantID)
		repo.On("FindByCodes", ctx, tenantID, codes).Return([]catalog.Product{*existing}, nil)

		res, err := newImportService(repo).Import(ctx, tenantID, strings.NewReader(catalogueCSV), ImportProductsRequest{Mode: ConflictFail})
		require.NoError(t, err)
		assert.False(t, res.Accepted())
		require.Len(t, res.Errors, 1)
		assert.Equal(t, 2, res.Errors[0].Row)
		assert.Equal(t, csvimport.CodeConflict, res.Errors[0].Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByCodes", ctx, tenantID, codes).Return([]catalog.Product{}, nil)

		res, err := newImportService(repo).Import(ctx, tenantID, strings.NewReader(catalogueCSV), ImportProductsRequest{DryRun: true})
		require.NoError(t, err)
		assert.True(t, res.DryRun)
		assert.Equal(t, 3, res.Created)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("row errors reject the whole file", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByCodes", ctx, tenantID, []string{"OK-1"}).Return([]catalog.Product{}, nil)

		csv := "code,name,category,unit,gst_rate\n" +
			"OK-1,Fine,paint,ltr,18\n" +
			"OK-1,Duplicate,paint,ltr,18\n" +
			"BAD 2,Spaces,paint,ltr,18\n" +
			"B3,Bad gst,paint,ltr,15\n" +
			"B4,,food,gallon,\n"
		res, err := newImportService(repo).Import(ctx, tenantID, strings.NewReader(csv), ImportProductsRequest{})
		require.NoError(t, err)
		assert.False(t, res.Accepted())
		assert.Equal(t, 5, res.TotalRows)
		assert.Equal(t, 4, res.ErrorRows)
		assert.Equal(t, 6, res.TotalErrors)
		assert.Zero(t, res.Created)

		byRow := map[int][]string{}
		for _, e := range res.Errors {
			byRow[e.Row] = append(byRow[e.Row], e.Column)
		}
		assert.Equal(t, []string{"code"}, byRow[3])
		assert.Equal(t, []string{"code"}, byRow[4])
		assert.Equal(t, []string{"gst_rate"}, byRow[5])
		assert.ElementsMatch(t, []string{"name", "category", "unit"}, byRow[6])
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("file level failures", func(t *testing.T) {
		tests := []struct {
			name  string
			input string
			mode  ConflictMode
			code  string
		}{
			{"unknown mode", catalogueCSV, "merge", "INVALID_IMPORT_MODE"},
			{"empty", "", "", "INVALID_FILE"},
			{"header only", "code,name,category,unit\n", "", "INVALID_FILE"},
			{"missing columns", "code,name\nA,B\n", "", "INVALID_FILE"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := new(MockProductRepository)
				_, err := newImportService(repo).Import(ctx, tenantID, strings.NewReader(tt.input), ImportProductsRequest{Mode: tt.mode})
				var de *shared.DomainError
				require.True(t, errors.As(err, &de), "got %v", err)
				assert.Equal(t, tt.code, de.Code)
				repo.AssertNotCalled(t, "FindByCodes", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})
}

func TestImportTemplate(t *testing.T) {
	assert.Equal(t, "code,name,category,unit,hsn_code,gst_rate,reorder_level\n", ImportTemplate())
}
