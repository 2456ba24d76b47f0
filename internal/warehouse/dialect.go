package warehouse

import (
	"fmt"

	"github.com/huangsam/snowdash/schema"
)

// Dialect holds the driver and statements used for one warehouse backend.
// Every statement returns upper-case column names understood by the row parsers.
type Dialect struct {
	DriverName   string
	Trends       string
	Efficiency   string // args: lookback days
	Anomalies    string // args: lookback days, z-score threshold
	DailyCredits string // args: lookback days
	DailyQueries string // args: lookback days
}

// DialectFor returns the dialect of the given warehouse backend.
func DialectFor(backend schema.WarehouseBackend) (Dialect, error) {
	switch backend {
	case schema.SnowflakeWarehouse:
		return snowflakeDialect, nil
	case schema.PostgreSQLWarehouse:
		return postgresDialect, nil
	case schema.MySQLWarehouse:
		return mysqlDialect, nil
	case schema.SQLiteWarehouse:
		return sqliteDialect, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported warehouse backend: %s. Must be snowflake, postgresql, mysql, or sqlite", backend)
	}
}

var snowflakeDialect = Dialect{
	DriverName: "snowflake",
	Trends:     `CALL SNOWFLAKE_EXAMPLE.SAM_THE_SNOWMAN.SP_SAM_TREND_ANALYSIS()`,
	Efficiency: `CALL SNOWFLAKE_EXAMPLE.SAM_THE_SNOWMAN.SP_SAM_EFFICIENCY_SCORE(?)`,
	Anomalies:  `CALL SNOWFLAKE_EXAMPLE.SAM_THE_SNOWMAN.SP_SAM_COST_ANOMALIES(?, ?)`,
	DailyCredits: `
		SELECT
			DATE(START_TIME) AS USAGE_DATE,
			SUM(CREDITS_USED) AS DAILY_CREDITS
		FROM SNOWFLAKE.ACCOUNT_USAGE.WAREHOUSE_METERING_HISTORY
		WHERE START_TIME >= DATEADD(DAY, -1 * ?, CURRENT_TIMESTAMP())
			AND WAREHOUSE_NAME NOT LIKE 'SYSTEM$%'
		GROUP BY USAGE_DATE
		ORDER BY USAGE_DATE`,
	DailyQueries: `
		SELECT
			DATE(START_TIME) AS USAGE_DATE,
			COUNT(*) AS QUERY_COUNT
		FROM SNOWFLAKE.ACCOUNT_USAGE.QUERY_HISTORY
		WHERE START_TIME >= DATEADD(DAY, -1 * ?, CURRENT_TIMESTAMP())
			AND WAREHOUSE_NAME NOT LIKE 'SYSTEM$%'
		GROUP BY USAGE_DATE
		ORDER BY USAGE_DATE`,
}

var postgresDialect = Dialect{
	DriverName: "pgx",
	Trends:     `SELECT * FROM sam_the_snowman.sp_sam_trend_analysis()`,
	Efficiency: `SELECT * FROM sam_the_snowman.sp_sam_efficiency_score($1)`,
	Anomalies:  `SELECT * FROM sam_the_snowman.sp_sam_cost_anomalies($1, $2)`,
	DailyCredits: `
		SELECT
			DATE(start_time) AS "USAGE_DATE",
			SUM(credits_used) AS "DAILY_CREDITS"
		FROM sam_the_snowman.warehouse_metering_history
		WHERE start_time >= NOW() - make_interval(days => $1::int)
			AND warehouse_name NOT LIKE 'SYSTEM$%'
		GROUP BY 1
		ORDER BY 1`,
	DailyQueries: `
		SELECT
			DATE(start_time) AS "USAGE_DATE",
			COUNT(*) AS "QUERY_COUNT"
		FROM sam_the_snowman.query_history
		WHERE start_time >= NOW() - make_interval(days => $1::int)
			AND warehouse_name NOT LIKE 'SYSTEM$%'
		GROUP BY 1
		ORDER BY 1`,
}

var mysqlDialect = Dialect{
	DriverName: "mysql",
	Trends:     `CALL sam_the_snowman.sp_sam_trend_analysis()`,
	Efficiency: `CALL sam_the_snowman.sp_sam_efficiency_score(?)`,
	Anomalies:  `CALL sam_the_snowman.sp_sam_cost_anomalies(?, ?)`,
	DailyCredits: `
		SELECT
			DATE(start_time) AS USAGE_DATE,
			SUM(credits_used) AS DAILY_CREDITS
		FROM sam_the_snowman.warehouse_metering_history
		WHERE start_time >= NOW() - INTERVAL ? DAY
			AND warehouse_name NOT LIKE 'SYSTEM$%'
		GROUP BY USAGE_DATE
		ORDER BY USAGE_DATE`,
	DailyQueries: `
		SELECT
			DATE(start_time) AS USAGE_DATE,
			COUNT(*) AS QUERY_COUNT
		FROM sam_the_snowman.query_history
		WHERE start_time >= NOW() - INTERVAL ? DAY
			AND warehouse_name NOT LIKE 'SYSTEM$%'
		GROUP BY USAGE_DATE
		ORDER BY USAGE_DATE`,
}

// sqliteDialect reads procedure output materialized into plain tables.
var sqliteDialect = Dialect{
	DriverName: "sqlite",
	Trends: `
		SELECT metric_name, this_week_value, change_pct, trend, insight
		FROM sam_trend_analysis
		ORDER BY rowid`,
	Efficiency: `
		SELECT warehouse_name, query_count, efficiency_score, cache_score, spill_score,
			error_score, queue_score, efficiency_grade, primary_issue, recommendation
		FROM sam_efficiency_score
		WHERE lookback_days = ?
		ORDER BY efficiency_score DESC, warehouse_name`,
	Anomalies: `
		SELECT usage_date, daily_credits, baseline_avg, percent_above_baseline, z_score,
			anomaly_severity, top_warehouse, top_warehouse_credits
		FROM sam_cost_anomalies
		WHERE usage_date >= date('now', '-' || ? || ' days')
			AND z_score >= ?
		ORDER BY usage_date`,
	DailyCredits: `
		SELECT date(start_time) AS usage_date, SUM(credits_used) AS daily_credits
		FROM warehouse_metering_history
		WHERE start_time >= datetime('now', '-' || ? || ' days')
			AND warehouse_name NOT LIKE 'SYSTEM$%'
		GROUP BY usage_date
		ORDER BY usage_date`,
	DailyQueries: `
		SELECT date(start_time) AS usage_date, COUNT(*) AS query_count
		FROM query_history
		WHERE start_time >= datetime('now', '-' || ? || ' days')
			AND warehouse_name NOT LIKE 'SYSTEM$%'
		GROUP BY usage_date
		ORDER BY usage_date`,
}
