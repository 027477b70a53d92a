package sqlite

import (
	"context"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/storage/dbutil"
	"github.com/julianstephens/daylog/internal/validation"
)

// RawQuery runs an arbitrary statement and returns its rows as text.
func (s *Store) RawQuery(ctx context.Context, query string) (models.QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return models.QueryResult{Query: query}, err
	}
	defer rows.Close()
	return dbutil.CollectRows(rows, query)
}

// GetIntegrityRows projects every stored activity for integrity checks,
// including rows whose habit is missing or owned by someone else.
func (s *Store) GetIntegrityRows(ctx context.Context) ([]validation.ActivityRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.user_id, COALESCE(h.user_id, ''), a.date, a.hours
		FROM activities a
		LEFT JOIN habits h ON h.id = a.habit_id
		ORDER BY a.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []validation.ActivityRow
	for rows.Next() {
		var r validation.ActivityRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.HabitUserID, &r.Date, &r.Hours); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
