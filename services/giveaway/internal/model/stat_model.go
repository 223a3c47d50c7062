package model

const (
	DimensionEvent    = "event"
	DimensionCategory = "category"
)

// DailyStatCounterModel is one counter of a day's stats record. A day's
// record is the set of rows sharing its date.
type DailyStatCounterModel struct {
	Date      string `gorm:"type:varchar(10);primaryKey" json:"date"`
	Dimension string `gorm:"type:varchar(16);primaryKey" json:"dimension"`
	Name      string `gorm:"type:varchar(64);primaryKey" json:"name"`
	Total     int64  `gorm:"not null;default:0" json:"total"`
}

func (DailyStatCounterModel) TableName() string { return "daily_stat_counters" }

// All lists every model for AutoMigrate in tests and local tooling.
func All() []interface{} {
	return []interface{}{
		&PostModel{},
		&PostImageModel{},
		&ReportModel{},
		&DailyStatCounterModel{},
	}
}
