package ledger

import (
	"context"

	"github.com/dvloznov/cashbook/internal/domain"
)

type mockStore struct {
	InsertFunc     func(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	SelectFunc     func(ctx context.Context, q Query) ([]domain.Transaction, error)
	DeleteByIDFunc func(ctx context.Context, id string) error

	inserts int
	deletes int
}

func (m *mockStore) Insert(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	m.inserts++
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx)
	}
	return tx, nil
}

func (m *mockStore) Select(ctx context.Context, q Query) ([]domain.Transaction, error) {
	if m.SelectFunc != nil {
		return m.SelectFunc(ctx, q)
	}
	return nil, nil
}

func (m *mockStore) DeleteByID(ctx context.Context, id string) error {
	m.deletes++
	if m.DeleteByIDFunc != nil {
		return m.DeleteByIDFunc(ctx, id)
	}
	return nil
}
