package postgres

import (
	"context"
	"time"

	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/storage/dbutil"
	"github.com/julianstephens/daylog/internal/validation"
)

func (s *Store) RawQuery(ctx context.Context, query string) (models.QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return models.QueryResult{Query: query}, err
	}
	defer rows.Close()
	return dbutil.CollectRows(rows, query)
}

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
		var date time.Time
		if err := rows.Scan(&r.ID, &r.UserID, &r.HabitUserID, &date, &r.Hours); err != nil {
			return nil, err
		}
		r.Date = date.Format(constants.DateFormat)
		out = append(out, r)
	}
	return out, rows.Err()
}
