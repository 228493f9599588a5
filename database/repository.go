package database

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"horoscope-api/forecast"
)

// ForecastRepository handles forecast reads over the canonical schema.
type ForecastRepository struct {
	db *Database
}

var (
	_ forecast.Store             = (*ForecastRepository)(nil)
	_ forecast.AvailabilityStore = (*ForecastRepository)(nil)
	_ forecast.Describer         = (*ForecastRepository)(nil)
	_ forecast.Checker           = (*ForecastRepository)(nil)
)

// NewForecastRepository creates a new forecast repository
func NewForecastRepository(db *Database) *ForecastRepository {
	return &ForecastRepository{db: db}
}

func (r *ForecastRepository) session(ctx context.Context) *gorm.DB {
	return r.db.db.WithContext(ctx)
}

func bySign(tx *gorm.DB, sign string) *gorm.DB {
	return tx.Where("LOWER(sign) = ?", sign)
}

func byCategory(tx *gorm.DB, category string) *gorm.DB {
	if category == "" {
		return tx
	}
	return tx.Where("LOWER(category) = ?", category)
}

// latest returns MAX(column) for sign in table, or "" when the sign has no rows.
func (r *ForecastRepository) latest(ctx context.Context, table, column, sign string) (string, error) {
	var v sql.NullString
	row := bySign(r.session(ctx).Table(table).Select(fmt.Sprintf("MAX(%s)", column)), sign).Row()
	if err := row.Scan(&v); err != nil {
		return "", err
	}
	return v.String, nil
}

// Daily answers an explicit date as-is, else the sign's latest date.
func (r *ForecastRepository) Daily(ctx context.Context, q forecast.DailyQuery) (forecast.Selection, error) {
	date := q.Date
	if date == "" {
		var err error
		if date, err = r.latest(ctx, TableDaily, "date", q.Sign); err != nil {
			return forecast.Selection{}, WrapDBError("daily latest date", err)
		}
	}

	sel := forecast.Selection{Date: date, Records: []forecast.Record{}}
	if date == "" {
		return sel, nil
	}

	var rows []DailyForecast
	tx := byCategory(bySign(r.session(ctx), q.Sign).Where("date = ?", date), q.Category)
	if err := tx.Find(&rows).Error; err != nil {
		return forecast.Selection{}, WrapDBError("daily rows", err)
	}
	for _, row := range rows {
		sel.Records = append(sel.Records, forecast.Record{
			Sign:     row.Sign,
			Date:     row.Date,
			Category: row.Category,
			Forecast: row.Forecast,
			Stars:    starsOrDefault(row.Stars),
		})
	}
	return sel, nil
}

// Weekly answers an explicit week pair as-is. Otherwise it takes the
// earliest week, restricted to weeks starting or ending in the hint month
// when a hint is present.
func (r *ForecastRepository) Weekly(ctx context.Context, q forecast.WeeklyQuery) (forecast.Selection, error) {
	start, end := q.WeekStart, q.WeekEnd
	if !q.HasWeek() {
		var wk weekPair
		tx := bySign(r.session(ctx).Model(&WeeklyForecast{}).Select("week_start, week_end"), q.Sign)
		if q.Hint != "" {
			prefix := q.Hint + "-%"
			tx = tx.Where("(week_start LIKE ? OR week_end LIKE ?)", prefix, prefix)
		}
		res := tx.Order("week_start ASC").Order("week_end ASC").Limit(1).Scan(&wk)
		if res.Error != nil {
			return forecast.Selection{}, WrapDBError("weekly resolve week", res.Error)
		}
		if res.RowsAffected == 0 {
			return forecast.Selection{WeekStart: start, WeekEnd: end, Records: []forecast.Record{}}, nil
		}
		start, end = wk.WeekStart, wk.WeekEnd
	}

	sel := forecast.Selection{WeekStart: start, WeekEnd: end, Records: []forecast.Record{}}

	var rows []WeeklyForecast
	tx := byCategory(bySign(r.session(ctx), q.Sign).Where("week_start = ? AND week_end = ?", start, end), q.Category)
	if err := tx.Find(&rows).Error; err != nil {
		return forecast.Selection{}, WrapDBError("weekly rows", err)
	}
	for _, row := range rows {
		sel.Records = append(sel.Records, forecast.Record{
			Sign:      row.Sign,
			WeekStart: row.WeekStart,
			WeekEnd:   row.WeekEnd,
			Category:  row.Category,
			Forecast:  row.Forecast,
			Stars:     starsOrDefault(row.Stars),
		})
	}
	return sel, nil
}

// Monthly answers an explicit month as-is, else the sign's latest month.
func (r *ForecastRepository) Monthly(ctx context.Context, q forecast.MonthlyQuery) (forecast.Selection, error) {
	month := q.Month
	if month == "" {
		var err error
		if month, err = r.latest(ctx, TableMonthly, "month", q.Sign); err != nil {
			return forecast.Selection{}, WrapDBError("monthly latest month", err)
		}
	}

	sel := forecast.Selection{Month: month, Records: []forecast.Record{}}
	if month == "" {
		return sel, nil
	}

	var rows []MonthlyForecast
	tx := byCategory(bySign(r.session(ctx), q.Sign).Where("month = ?", month), q.Category)
	if err := tx.Find(&rows).Error; err != nil {
		return forecast.Selection{}, WrapDBError("monthly rows", err)
	}
	for _, row := range rows {
		sel.Records = append(sel.Records, forecast.Record{
			Sign:     row.Sign,
			Month:    row.Month,
			Category: row.Category,
			Forecast: row.Forecast,
			Stars:    starsOrDefault(row.Stars),
		})
	}
	return sel, nil
}

type weekPair struct {
	WeekStart string
	WeekEnd   string
}

type signMonth struct {
	Sign  string
	Month string
}

// Availability lists, per sign, the months holding rows for each period.
// A week counts toward both the month it starts in and the month it ends in.
func (r *ForecastRepository) Availability(ctx context.Context) (forecast.Availability, error) {
	queries := []struct {
		period forecast.Period
		sql    string
	}{
		{forecast.Daily, fmt.Sprintf(
			"SELECT DISTINCT LOWER(sign) AS sign, SUBSTR(date, 1, 7) AS month FROM %s", TableDaily)},
		{forecast.Weekly, fmt.Sprintf(
			"SELECT LOWER(sign) AS sign, SUBSTR(week_start, 1, 7) AS month FROM %[1]s "+
				"UNION SELECT LOWER(sign) AS sign, SUBSTR(week_end, 1, 7) AS month FROM %[1]s", TableWeekly)},
		{forecast.Monthly, fmt.Sprintf(
			"SELECT DISTINCT LOWER(sign) AS sign, month FROM %s", TableMonthly)},
	}

	avail := forecast.Availability{}
	for _, q := range queries {
		var rows []signMonth
		if err := r.session(ctx).Raw(q.sql).Scan(&rows).Error; err != nil {
			return nil, WrapDBError(fmt.Sprintf("%s availability", q.period), err)
		}
		for _, row := range rows {
			avail.Add(row.Sign, q.period, row.Month)
		}
	}
	return avail.Compact(), nil
}

// Describe reports the backend for /health.
func (r *ForecastRepository) Describe() map[string]any {
	return map[string]any{
		"backend": "db",
		"driver":  r.db.Driver(),
	}
}

// Check pings the connection pool.
func (r *ForecastRepository) Check(ctx context.Context) (map[string]any, error) {
	if err := r.db.Ping(ctx); err != nil {
		return map[string]any{"db_ok": false}, WrapDBError("ping", err)
	}
	return map[string]any{"db_ok": true}, nil
}

func starsOrDefault(stars *int) *int {
	if stars != nil {
		return stars
	}
	v := forecast.DefaultStars
	return &v
}
