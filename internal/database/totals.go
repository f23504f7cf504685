package database

import (
	"database/sql"
	"fmt"
	"log"
)

// SaveTotal stores an unlabeled cumulative counter.
func SaveTotal(counterName string, value float64) error {
	query := `
	INSERT OR REPLACE INTO totals (counter_name, label_one, label_two, total)
	VALUES (?, '', '', ?);`
	_, err := DB.Exec(query, counterName, value)
	if err != nil {
		return fmt.Errorf("failed to save total: %w", err)
	}
	return nil
}

// GetTotal loads an unlabeled cumulative counter, defaulting to 0.
func GetTotal(counterName string) (float64, error) {
	var value float64
	query := `
	SELECT total
	FROM totals
	WHERE counter_name = ? AND label_one = '' AND label_two = '';`
	err := DB.QueryRow(query, counterName).Scan(&value)
	if err == sql.ErrNoRows {
		log.Printf("Total %s not found in the database, defaulting to 0", counterName)
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("failed to get total %s: %w", counterName, err)
	}
	return value, nil
}

// SaveTotalWithLabels stores one labeled series of a cumulative counter.
func SaveTotalWithLabels(counterName, labelOne, labelTwo string, value float64) error {
	query := `
	INSERT OR REPLACE INTO totals (counter_name, label_one, label_two, total)
	VALUES (?, ?, ?, ?);`
	_, err := DB.Exec(query, counterName, labelOne, labelTwo, value)
	if err != nil {
		return fmt.Errorf("failed to save total with labels: %w", err)
	}
	return nil
}

// GetTotalsWithLabels fetches all labeled series for a given counter name.
func GetTotalsWithLabels(counterName string) (map[string]map[string]float64, error) {
	query := `
	SELECT label_one, label_two, total
	FROM totals
	WHERE counter_name = ? AND NOT (label_one = '' AND label_two = '');`

	rows, err := DB.Query(query, counterName)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals with labels: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]map[string]float64)
	for rows.Next() {
		var labelOne, labelTwo string
		var value float64
		if err := rows.Scan(&labelOne, &labelTwo, &value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if _, exists := totals[labelOne]; !exists {
			totals[labelOne] = make(map[string]float64)
		}
		totals[labelOne][labelTwo] = value
	}
	return totals, nil
}
