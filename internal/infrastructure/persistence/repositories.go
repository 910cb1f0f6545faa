package persistence

import (
	"github.com/erp/buildledger/internal/domain/billing"
	"github.com/erp/buildledger/internal/domain/catalog"
	"github.com/erp/buildledger/internal/domain/company"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/labor"
	"github.com/erp/buildledger/internal/domain/project"
	"github.com/erp/buildledger/internal/domain/purchase"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/erp/buildledger/internal/domain/tenant"
)

var (
	_ tenant.Repository                 = (*GormTenantRepository)(nil)
	_ company.Repository                = (*GormCompanyRepository)(nil)
	_ project.Repository                = (*GormProjectRepository)(nil)
	_ catalog.ProductRepository         = (*GormProductRepository)(nil)
	_ labor.Repository                  = (*GormLaborRepository)(nil)
	_ labor.AssignmentRepository        = (*GormAssignmentRepository)(nil)
	_ labor.AttendanceRepository        = (*GormAttendanceRepository)(nil)
	_ inventory.GodownRepository        = (*GormGodownRepository)(nil)
	_ inventory.StockBatchRepository    = (*GormStockBatchRepository)(nil)
	_ inventory.GodownStockRepository   = (*GormGodownStockRepository)(nil)
	_ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
	_ inventory.TransferRepository      = (*GormTransferRepository)(nil)
	_ inventory.AllocationRepository    = (*GormAllocationRepository)(nil)
	_ purchase.VendorRepository         = (*GormVendorRepository)(nil)
	_ purchase.PurchaseOrderRepository  = (*GormPurchaseOrderRepository)(nil)
	_ purchase.GoodsReceiptRepository   = (*GormGoodsReceiptRepository)(nil)
	_ billing.BillRepository            = (*GormBillRepository)(nil)
	_ billing.PaymentRepository         = (*GormPaymentRepository)(nil)
	_ shared.SequenceRepository         = (*GormSequenceRepository)(nil)
)
