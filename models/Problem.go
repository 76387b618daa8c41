package models

// Problem is a row of the local AtCoder problem catalog. The catalog is a
// disposable cache: every successful sync drops and recreates the whole
// table, so nothing else may hold a foreign key that cascades from it.
type Problem struct {
	ID         string `gorm:"type:varchar(255);primary_key" json:"id"`
	Title      string `gorm:"type:varchar(255);not null" json:"title"`
	Difficulty int    `gorm:"not null;index" json:"difficulty"`
}
