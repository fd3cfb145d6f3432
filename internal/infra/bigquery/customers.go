package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/cashbook/internal/domain"
)

// CustomerRow is a row of the CustomersData table.
type CustomerRow struct {
	ID        string              `bigquery:"id"`
	Name      string              `bigquery:"name"`
	Email     bigquery.NullString `bigquery:"email"`
	Phone     bigquery.NullString `bigquery:"phone"`
	Address   bigquery.NullString `bigquery:"address"`
	CreatedAt time.Time           `bigquery:"createdAt"`
}

func (r *CustomerRow) customer() domain.Customer {
	return domain.Customer{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email.StringVal,
		Phone:     r.Phone.StringVal,
		Address:   r.Address.StringVal,
		CreatedAt: r.CreatedAt,
	}
}

// InsertCustomerWithClient streams one customer into CustomersData.
func InsertCustomerWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, c domain.Customer) error {
	row := &CustomerRow{
		ID:        c.ID,
		Name:      c.Name,
		Email:     nullString(c.Email),
		Phone:     nullString(c.Phone),
		Address:   nullString(c.Address),
		CreatedAt: c.CreatedAt,
	}
	inserter := client.DatasetInProject(ds.ProjectID, ds.DatasetID).Table(customersTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertCustomer: inserting row: %w", err)
	}
	return nil
}

// ListCustomersWithClient lists customers ordered by name. A non-empty term
// restricts the result to customers whose name, email or phone contains it.
func ListCustomersWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, term string) ([]domain.Customer, error) {
	sql := `
		SELECT id, name, email, phone, address, createdAt
		FROM ` + ds.table(customersTable)

	var params []bigquery.QueryParameter
	if term = strings.TrimSpace(term); term != "" {
		sql += `
		WHERE CONTAINS_SUBSTR(name, @term)
		   OR CONTAINS_SUBSTR(IFNULL(email, ''), @term)
		   OR CONTAINS_SUBSTR(IFNULL(phone, ''), @term)`
		params = append(params, bigquery.QueryParameter{Name: "term", Value: term})
	}
	sql += `
		ORDER BY name ASC`

	q := client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCustomers: query read: %w", err)
	}

	result := make([]domain.Customer, 0)
	for {
		var r CustomerRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCustomers: iter next: %w", err)
		}
		result = append(result, r.customer())
	}
	return result, nil
}
