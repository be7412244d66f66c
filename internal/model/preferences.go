package model

import "time"

const (
	DefaultFontFamily = "Inter"
	DefaultFontSize   = 16
)

type Preferences struct {
	UserUUID   string    `db:"user_uuid" json:"user_uuid"`
	FontFamily string    `db:"font_family" json:"font_family"`
	FontSize   int       `db:"font_size" json:"font_size"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

func DefaultPreferences(userUUID string) *Preferences {
	return &Preferences{
		UserUUID:   userUUID,
		FontFamily: DefaultFontFamily,
		FontSize:   DefaultFontSize,
	}
}

type ReportKind string

const (
	ReportStatistics ReportKind = "statistics"
	ReportTCCs       ReportKind = "tccs"
	ReportActivity   ReportKind = "activity"
	ReportStorage    ReportKind = "storage"
	ReportCourses    ReportKind = "courses"
	ReportAuthors    ReportKind = "authors"
	ReportKeywords   ReportKind = "keywords"
	ReportThemes     ReportKind = "themes"
)

var ReportKinds = []ReportKind{
	ReportStatistics, ReportTCCs, ReportActivity, ReportStorage,
	ReportCourses, ReportAuthors, ReportKeywords, ReportThemes,
}

func (k ReportKind) Valid() bool {
	for _, known := range ReportKinds {
		if k == known {
			return true
		}
	}
	return false
}
