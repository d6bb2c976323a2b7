package test

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func AssertError(t *testing.T, err error, expectErr bool) {
	if expectErr {
		assert.Error(t, err)
	} else {
		assert.NoError(t, err)
	}
}

func GenerateAnyArgsSlice(n int) []driver.Value {
	var result []driver.Value = make([]driver.Value, n)
	for i := 0; i < n; i++ {
		result[i] = sqlmock.AnyArg()
	}
	return result
}

func MockCustomerRows(mock sqlmock.Sqlmock, emails ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "total_spend", "visit_count", "last_visit"})
	for _, email := range emails {
		rows.AddRow(uuid.NewString(), "name", email, "555-0100", 100.0, 2, time.Now())
	}
	mock.ExpectQuery("SELECT .+ FROM customers.+").WillReturnRows(rows)
	return rows
}
