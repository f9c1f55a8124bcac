package sql

import "database/sql"

// GetTxFromProductRepo is a test helper to extract transaction from ProductRepository.
func GetTxFromProductRepo(repo *ProductRepository) *sql.Tx {
	return repo.txn
}

// Classify exposes the driver error classification to tests.
func Classify(op string, err error) error {
	return classify(op, err)
}
