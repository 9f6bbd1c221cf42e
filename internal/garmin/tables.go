// ABOUTME: Garmin entity table and view definitions.
// ABOUTME: Versions bump when a table's shape changes release to release.
package garmin

import (
	"github.com/klmckay/healthdb/internal/schema"
)

const zeroTime = "'00:00:00'"

var attributesTable = schema.KeyValueTable("attributes", 1)

var devicesTable = schema.Table{
	Name:    "devices",
	Version: 3,
	Columns: []schema.Column{
		{Name: "serial_number", Type: schema.Integer, PrimaryKey: true},
		{Name: "timestamp", Type: schema.DateTime},
		{Name: "manufacturer", Type: schema.EnumText, Enum: Manufacturer},
		{Name: "product", Type: schema.Text},
		{Name: "hardware_version", Type: schema.Text},
	},
	TimeColumn:   "timestamp",
	MatchColumns: []string{"serial_number"},
}

var deviceInfoTable = schema.Table{
	Name:    "device_info",
	Version: 2,
	Columns: []schema.Column{
		{Name: "id", Type: schema.Integer, PrimaryKey: true},
		{Name: "timestamp", Type: schema.DateTime, NotNull: true},
		{Name: "file_id", Type: schema.Text, References: "files(id)"},
		{Name: "serial_number", Type: schema.Integer, NotNull: true, References: "devices(serial_number)"},
		{Name: "device_type", Type: schema.Text},
		{Name: "software_version", Type: schema.Text},
		{Name: "cum_operating_time", Type: schema.TimeOfDay, NotNull: true, Default: zeroTime},
		{Name: "battery_voltage", Type: schema.Float},
	},
	TimeColumn:   "timestamp",
	MatchColumns: []string{"timestamp", "serial_number", "device_type"},
}

var filesTable = schema.Table{
	Name:    "files",
	Version: 3,
	Columns: []schema.Column{
		{Name: "id", Type: schema.Text, PrimaryKey: true},
		{Name: "name", Type: schema.Text, Unique: true},
		{Name: "type", Type: schema.EnumText, NotNull: true, Enum: FileType},
		{Name: "serial_number", Type: schema.Integer, References: "devices(serial_number)"},
	},
	MatchColumns: []string{"name"},
}

var weightTable = schema.Table{
	Name:    "weight",
	Version: 1,
	Columns: []schema.Column{
		{Name: "day", Type: schema.Date, PrimaryKey: true},
		{Name: "weight", Type: schema.Float, NotNull: true},
	},
	TimeColumn: "day",
}

var stressTable = schema.Table{
	Name:    "stress",
	Version: 1,
	Columns: []schema.Column{
		{Name: "timestamp", Type: schema.DateTime, PrimaryKey: true},
		{Name: "stress", Type: schema.Integer, NotNull: true},
	},
	TimeColumn: "timestamp",
}

var sleepTable = schema.Table{
	Name:    "sleep",
	Version: 1,
	Columns: []schema.Column{
		{Name: "day", Type: schema.Date, PrimaryKey: true},
		{Name: "start", Type: schema.DateTime},
		{Name: "end", Type: schema.DateTime},
		{Name: "total_sleep", Type: schema.TimeOfDay, NotNull: true, Default: zeroTime},
		{Name: "deep_sleep", Type: schema.TimeOfDay, NotNull: true, Default: zeroTime},
		{Name: "light_sleep", Type: schema.TimeOfDay, NotNull: true, Default: zeroTime},
		{Name: "rem_sleep", Type: schema.TimeOfDay, NotNull: true, Default: zeroTime},
		{Name: "awake", Type: schema.TimeOfDay, NotNull: true, Default: zeroTime},
	},
	TimeColumn: "day",
}

var sleepEventsTable = schema.Table{
	Name:    "sleep_events",
	Version: 1,
	Columns: []schema.Column{
		{Name: "id", Type: schema.Integer, PrimaryKey: true},
		{Name: "timestamp", Type: schema.DateTime, Unique: true},
		{Name: "event", Type: schema.Text},
		{Name: "duration", Type: schema.TimeOfDay, NotNull: true, Default: zeroTime},
	},
	TimeColumn:   "timestamp",
	MatchColumns: []string{"timestamp"},
}

var restingHeartRateTable = schema.Table{
	Name:    "resting_hr",
	Version: 1,
	Columns: []schema.Column{
		{Name: "day", Type: schema.Date, PrimaryKey: true},
		{Name: "resting_heart_rate", Type: schema.Float},
	},
	TimeColumn: "day",
}

var dailySummaryTable = schema.Table{
	Name:    "daily_summary",
	Version: 1,
	Columns: []schema.Column{
		{Name: "day", Type: schema.Date, PrimaryKey: true},
		{Name: "hr_min", Type: schema.Integer},
		{Name: "hr_max", Type: schema.Integer},
		{Name: "rhr", Type: schema.Integer},
		{Name: "stress_avg", Type: schema.Integer},
		{Name: "step_goal", Type: schema.Integer},
		{Name: "steps", Type: schema.Integer},
		{Name: "moderate_activity_time", Type: schema.TimeOfDay, NotNull: true, Default: zeroTime},
		{Name: "vigorous_activity_time", Type: schema.TimeOfDay, NotNull: true, Default: zeroTime},
		{Name: "intensity_time_goal", Type: schema.TimeOfDay, NotNull: true, Default: zeroTime},
		{Name: "floors_up", Type: schema.Float},
		{Name: "floors_down", Type: schema.Float},
		{Name: "floors_goal", Type: schema.Float},
		{Name: "distance", Type: schema.Float},
		{Name: "calories_goal", Type: schema.Integer},
		{Name: "calories_total", Type: schema.Integer},
		{Name: "calories_bmr", Type: schema.Integer},
		{Name: "calories_active", Type: schema.Integer},
		{Name: "calories_consumed", Type: schema.Integer},
		{Name: "description", Type: schema.Text},
	},
	TimeColumn: "day",
}

var deviceInfoView = schema.View{
	Name:    "device_info_view",
	Version: 4,
	Select: []schema.ViewColumn{
		{Expr: "device_info.timestamp", As: "timestamp"},
		{Expr: "device_info.file_id", As: "file_id"},
		{Expr: "device_info.serial_number", As: "serial_number"},
		{Expr: "device_info.device_type", As: "device_type"},
		{Expr: "device_info.software_version", As: "software_version"},
		{Expr: "devices.manufacturer", As: "manufacturer"},
		{Expr: "devices.product", As: "product"},
		{Expr: "devices.hardware_version", As: "hardware_version"},
	},
	From: "device_info",
	Joins: []schema.Join{
		{Table: "devices", On: "device_info.serial_number = devices.serial_number"},
	},
	OrderBy: "device_info.timestamp DESC",
}

var filesView = schema.View{
	Name:    "files_view",
	Version: 4,
	Select: []schema.ViewColumn{
		{Expr: "device_info.timestamp", As: "timestamp"},
		{Expr: "files.id", As: "activity_id"},
		{Expr: "files.name", As: "name"},
		{Expr: "files.type", As: "type"},
		{Expr: "devices.manufacturer", As: "manufacturer"},
		{Expr: "devices.product", As: "product"},
		{Expr: "devices.serial_number", As: "serial_number"},
	},
	From: "files",
	Joins: []schema.Join{
		{Table: "devices", On: "files.serial_number = devices.serial_number"},
		{Table: "device_info", On: "files.id = device_info.file_id"},
	},
	OrderBy: "device_info.timestamp DESC",
}
