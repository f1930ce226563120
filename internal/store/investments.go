package store

import (
	"database/sql"
	"strings"
)

// AddInvestment starts tracking a ticker. The ticker is stored uppercase;
// the optional name improves mention matching. Returns false when the
// ticker is already tracked.
func (db *DB) AddInvestment(ticker string, name *string) (bool, error) {
	result, err := db.conn.Exec(
		"INSERT OR IGNORE INTO investments (ticker, name) VALUES (?, ?)",
		strings.ToUpper(ticker), name,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveInvestment stops tracking a ticker (case-insensitive). Returns
// false when the ticker was not tracked.
func (db *DB) RemoveInvestment(ticker string) (bool, error) {
	result, err := db.conn.Exec(
		"DELETE FROM investments WHERE ticker = ?", strings.ToUpper(ticker),
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetInvestment returns a tracked investment by ticker (case-insensitive),
// or nil when the ticker is not tracked.
func (db *DB) GetInvestment(ticker string) (*Investment, error) {
	row := db.conn.QueryRow(
		"SELECT id, ticker, name, added_at FROM investments WHERE ticker = ?",
		strings.ToUpper(ticker),
	)
	var inv Investment
	err := row.Scan(&inv.ID, &inv.Ticker, &inv.Name, &inv.AddedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListInvestments returns all tracked investments in tracking order.
func (db *DB) ListInvestments() ([]Investment, error) {
	rows, err := db.conn.Query(
		"SELECT id, ticker, name, added_at FROM investments ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var investments []Investment
	for rows.Next() {
		var inv Investment
		if err := rows.Scan(&inv.ID, &inv.Ticker, &inv.Name, &inv.AddedAt); err != nil {
			return nil, err
		}
		investments = append(investments, inv)
	}
	return investments, rows.Err()
}
