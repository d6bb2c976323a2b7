package gorm

import (
	"time"

	"github.com/AryanGupta9719/Xeno-CRM/xeno"
)

// customerRow mirrors the 'customers' table columns read by the store.
type customerRow struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	TotalSpend float64
	VisitCount int
	LastVisit  time.Time
}

func (r *customerRow) toDomain() *xeno.Customer {
	return &xeno.Customer{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		TotalSpend: r.TotalSpend,
		VisitCount: r.VisitCount,
		LastVisit:  r.LastVisit,
	}
}
