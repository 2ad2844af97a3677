package mocks

import (
	"context"
	"crm/infras/postgres"

	"github.com/jmoiron/sqlx"
)

type transactorImpl struct {
	commitErr error
}

// NewTransactor runs the unit of work with a nil transaction. commitErr, when
// set, is returned after a successful unit of work to simulate a failed commit.
func NewTransactor(commitErr error) postgres.Transactor {
	return &transactorImpl{commitErr: commitErr}
}

func (t *transactorImpl) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := fn(nil); err != nil {
		return err
	}

	return t.commitErr
}
