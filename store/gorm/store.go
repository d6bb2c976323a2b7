package gorm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AryanGupta9719/Xeno-CRM/xeno"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	upsertLogsSqlPrefix = "INSERT INTO communication_logs (user_id, campaign_id, status, sent_count, failed_count, last_updated) VALUES "
	upsertLogsSqlSuffix = " ON CONFLICT (user_id, campaign_id) DO UPDATE SET" +
		" status=EXCLUDED.status," +
		" sent_count=communication_logs.sent_count+EXCLUDED.sent_count," +
		" failed_count=communication_logs.failed_count+EXCLUDED.failed_count," +
		" last_updated=EXCLUDED.last_updated"
	incrementDeliveryStatsSql = "UPDATE campaigns SET delivery_stats_sent=delivery_stats_sent+?, delivery_stats_failed=delivery_stats_failed+?, updated_at=NOW() WHERE id=?"
	findCustomerByEmailSql    = "SELECT id, name, email, phone, total_spend, visit_count, last_visit FROM customers WHERE email=?"
	listCustomersSql          = "SELECT id, name, email, phone, total_spend, visit_count, last_visit FROM customers ORDER BY created_at DESC"
	insertCustomerSql         = "INSERT INTO customers (id, name, email, phone, total_spend, visit_count, last_visit) VALUES (?, ?, ?, ?, ?, ?, ?)"
	insertOrderSql            = "INSERT INTO orders (id, order_id, customer_id, customer_email, amount) VALUES (?, ?, ?, ?, ?)"
	incrementCustomerSpendSql = "UPDATE customers SET total_spend=total_spend+?, updated_at=NOW() WHERE id=?"
)

// maxUpsertBatch bounds the placeholder count of a single bulk upsert
// statement.
const maxUpsertBatch = 500

// Store is the gorm implementation of the communication log, campaign,
// customer and order stores.
type Store struct {
	db     *gorm.DB
	logger xeno.Logger
}

var _ xeno.CommunicationLogStore = (*Store)(nil)
var _ xeno.CampaignStore = (*Store)(nil)
var _ xeno.CustomerStore = (*Store)(nil)
var _ xeno.OrderStore = (*Store)(nil)
var _ xeno.Loggable = (*Store)(nil)

func New(db *gorm.DB) *Store {
	if db == nil {
		panic("db is mandatory")
	}
	return &Store{
		db:     db,
		logger: &xeno.NopLogger{},
	}
}

// SetLogger sets an optional logger.
func (s *Store) SetLogger(l xeno.Logger) {
	s.logger = l
}

// BulkUpsert applies all folded batch rows with one statement per chunk of
// maxUpsertBatch. New (user, campaign) pairs are inserted; existing pairs
// get their counters incremented by the row deltas and their status and
// last-updated replaced.
func (s *Store) BulkUpsert(ctx context.Context, rows []*xeno.CommunicationLogUpsert) error {
	for i := 0; i < len(rows); i += maxUpsertBatch {
		end := i + maxUpsertBatch
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i:end]

		placeholders := make([]string, len(batch))
		values := make([]interface{}, 0, len(batch)*6)
		for j, row := range batch {
			placeholders[j] = "(?, ?, ?, ?, ?, ?)"
			values = append(values, row.UserID, row.CampaignID, string(row.Status), row.SentDelta, row.FailedDelta, row.LastUpdated)
		}
		query := upsertLogsSqlPrefix + strings.Join(placeholders, ", ") + upsertLogsSqlSuffix

		if err := s.db.WithContext(ctx).Exec(query, values...).Error; err != nil {
			return fmt.Errorf("upserting %d communication log rows: %w", len(batch), err)
		}
	}
	return nil
}

// IncrementDeliveryStats adds the batch deltas to the campaign totals. A
// missing campaign is logged and dropped rather than failing the whole
// batch: the communication log rows for it are already durable.
func (s *Store) IncrementDeliveryStats(ctx context.Context, campaignID string, delta xeno.CampaignDelta) error {
	res := s.db.WithContext(ctx).Exec(incrementDeliveryStatsSql, delta.Sent, delta.Failed, campaignID)
	if res.Error != nil {
		return fmt.Errorf("incrementing delivery stats for campaign '%s': %w", campaignID, res.Error)
	}
	if res.RowsAffected == 0 {
		s.logger.Warn(fmt.Sprintf("campaign '%s' not found; %d sent / %d failed increments dropped", campaignID, delta.Sent, delta.Failed))
	}
	return nil
}

// FindByEmail returns the customer with the given email or (nil, nil) when
// absent.
func (s *Store) FindByEmail(ctx context.Context, email string) (*xeno.Customer, error) {
	var row customerRow
	res := s.db.WithContext(ctx).Raw(findCustomerByEmailSql, email).Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("looking up customer by email '%s': %w", email, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return row.toDomain(), nil
}

// Create persists a new customer. A missing id is assigned here.
func (s *Store) Create(ctx context.Context, c *xeno.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.LastVisit.IsZero() {
		c.LastVisit = time.Now().UTC()
	}
	err := s.db.WithContext(ctx).Exec(insertCustomerSql, c.ID, c.Name, c.Email, c.Phone, c.TotalSpend, c.VisitCount, c.LastVisit).Error
	if err != nil {
		return fmt.Errorf("creating customer '%s': %w", c.Email, err)
	}
	return nil
}

// List returns all customers, newest first.
func (s *Store) List(ctx context.Context) ([]*xeno.Customer, error) {
	rows, err := s.db.WithContext(ctx).Raw(listCustomersSql).Rows()
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*xeno.Customer
	for rows.Next() {
		var row customerRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Email, &row.Phone, &row.TotalSpend, &row.VisitCount, &row.LastVisit); err != nil {
			return nil, fmt.Errorf("scanning a customer row: %w", err)
		}
		customers = append(customers, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

// CreateWithSpend persists the order and adds its amount to the owning
// customer's total spend in one transaction, so a torn write can never leave
// the spend counter out of sync with the order rows.
func (s *Store) CreateWithSpend(ctx context.Context, o *xeno.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(insertOrderSql, o.ID, o.OrderID, o.CustomerID, o.CustomerEmail, o.Amount).Error; err != nil {
			return fmt.Errorf("persisting order '%s': %w", o.OrderID, err)
		}
		res := tx.Exec(incrementCustomerSpendSql, o.Amount, o.CustomerID)
		if res.Error != nil {
			return fmt.Errorf("incrementing total spend for customer '%s': %w", o.CustomerID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("customer '%s' not found while updating total spend", o.CustomerID)
		}
		return nil
	})
}
