package schema

// Custom string types for type safety.
type (
	// Severity is the anomaly severity assigned by the detection procedure.
	Severity string

	// Grade is the letter grade assigned by the efficiency procedure.
	Grade string

	// Direction tells whether an increase of a metric is good or bad.
	Direction string

	// Color is an abstract color token, mapped to terminal or HTML colors by writers.
	Color string

	// ChartType is the sparkline rendering hint for a KPI card.
	ChartType string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and snapshots.
	DatabaseBackend string

	// WarehouseBackend represents the dialect of the analytics warehouse.
	WarehouseBackend string
)

// All severities supported.
const (
	CriticalSeverity Severity = "CRITICAL"
	HighSeverity     Severity = "HIGH"
	MediumSeverity   Severity = "MEDIUM"
	LowSeverity      Severity = "LOW"
	NormalSeverity   Severity = "NORMAL" // annotated points only
)

// All grades supported.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Directions of improvement.
const (
	HigherIsBetter Direction = "higher_is_better"
	LowerIsBetter  Direction = "lower_is_better"
)

// All color tokens.
const (
	Red    Color = "red"
	Orange Color = "orange"
	Yellow Color = "yellow"
	Blue   Color = "blue"
	Green  Color = "green"
	Gray   Color = "gray"
)

// BarChart is the sparkline style for cumulative metrics; other cards carry no chart type.
const BarChart ChartType = "bar"

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	CSVOut  OutputMode = "csv"
	XLSXOut OutputMode = "xlsx"
)

// All cache and snapshot backends supported.
const (
	MemoryBackend     DatabaseBackend = "memory" // default for cache
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All warehouse dialects supported.
const (
	SnowflakeWarehouse  WarehouseBackend = "snowflake" // default
	PostgreSQLWarehouse WarehouseBackend = "postgresql"
	MySQLWarehouse      WarehouseBackend = "mysql"
	SQLiteWarehouse     WarehouseBackend = "sqlite"
)

// Well-known trend metric names.
const (
	TotalCreditsMetric     = "Total Credits"
	QueryCountMetric       = "Query Count"
	AvgDurationMetric      = "Avg Duration (sec)"
	ErrorRateMetric        = "Error Rate (%)"
	ActiveWarehousesMetric = "Active Warehouses"
	ActiveUsersMetric      = "Active Users"
)

// NoPrimaryIssue is the primary issue value for warehouses without a recommendation.
const NoPrimaryIssue = "None"

// ValidSeverities lists severities accepted on anomaly records.
var ValidSeverities = map[Severity]struct{}{
	CriticalSeverity: {},
	HighSeverity:     {},
	MediumSeverity:   {},
	LowSeverity:      {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
	CSVOut:  {},
	XLSXOut: {},
}

// ValidDatabaseBackends lists all valid cache and snapshot backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	MemoryBackend:     {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidWarehouseBackends lists all valid warehouse dialects.
var ValidWarehouseBackends = map[WarehouseBackend]struct{}{
	SnowflakeWarehouse:  {},
	PostgreSQLWarehouse: {},
	MySQLWarehouse:      {},
	SQLiteWarehouse:     {},
}
