package labor

import (
	"time"

	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Assignment places a worker on a project for a span of days.
// An open assignment has no ToDate.
type Assignment struct {
	shared.TenantEntity
	LaborID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;index"`
	FromDate  time.Time  `gorm:"type:date;not null"`
	ToDate    *time.Time `gorm:"type:date"`
	Remarks   string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Assignment) TableName() string {
	return "labor_assignments"
}

// NewAssignment opens an assignment starting on from
func NewAssignment(tenantID, laborID, projectID uuid.UUID, from time.Time, remarks string) (*Assignment, error) {
	if from.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Assignment start date is required")
	}
	return &Assignment{
		TenantEntity: shared.NewTenantEntity(tenantID),
		LaborID:      laborID,
		ProjectID:    projectID,
		FromDate:     shared.DateOnly(from),
		Remarks:      remarks,
	}, nil
}

// IsOpen reports whether the assignment has not been closed
func (a *Assignment) IsOpen() bool {
	return a.ToDate == nil
}

// Covers reports whether the worker was on the project on day d
func (a *Assignment) Covers(d time.Time) bool {
	r := shared.DateRange{From: a.FromDate}
	if a.ToDate != nil {
		r.To = *a.ToDate
	}
	return r.Contains(d)
}

// Close ends the assignment on to (inclusive)
func (a *Assignment) Close(to time.Time) error {
	if !a.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", "Assignment is already closed")
	}
	to = shared.DateOnly(to)
	if to.Before(a.FromDate) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "Release date cannot be before assignment start")
	}
	a.ToDate = &to
	a.UpdatedAt = time.Now()
	return nil
}
