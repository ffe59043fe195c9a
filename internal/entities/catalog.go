package entities

import "time"

// Patient is the root of the catalog hierarchy. Identity is the
// whitespace-collapsed patient name.
type Patient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255" json:"name"`
	Thumbnail string    `gorm:"size:512" json:"thumbnail"`
	BirthDate string    `gorm:"size:32" json:"birth_date"`
	Gender    string    `gorm:"size:16" json:"gender"`
	CreatedAt time.Time `json:"created_at"`
}

// Study identity is (patient, name, uid).
type Study struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PatientID uint      `gorm:"index" json:"patient_id"`
	Name      string    `gorm:"size:255" json:"name"`
	UID       string    `gorm:"size:255" json:"uid"`
	Thumbnail string    `gorm:"size:512" json:"thumbnail"`
	Patient   Patient   `gorm:"foreignKey:PatientID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Series identity is the full geometric tuple (study, name, uid, orientation,
// series number, sequence name, slice thickness, rows, columns). The same
// tuple drives volume grouping and conflict detection, so the three agree on
// what "the same volume" means.
//
// Geometric fields are stored as strings: they are compared for equality,
// never computed with, and keeping the decoded header text verbatim avoids
// lossy numeric round-trips.
type Series struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StudyID         uint      `gorm:"index" json:"study_id"`
	Size            int       `json:"size"`
	Name            string    `gorm:"size:255" json:"name"`
	Path            string    `gorm:"size:512" json:"path"`
	UID             string    `gorm:"size:255" json:"uid"`
	Orientation     string    `gorm:"size:255" json:"orientation"`
	SeriesNumber    string    `gorm:"size:64" json:"series_number"`
	SequenceName    string    `gorm:"size:255" json:"sequence_name"`
	SliceThickness  string    `gorm:"size:64" json:"slice_thickness"`
	Rows            string    `gorm:"size:32" json:"rows"`
	Columns         string    `gorm:"size:32" json:"columns"`
	Thumbnail       string    `gorm:"size:512" json:"thumbnail"`
	Age             string    `gorm:"size:32" json:"age"`
	Description     string    `gorm:"type:text" json:"description"`
	Modality        string    `gorm:"size:64" json:"modality"`
	Protocol        string    `gorm:"size:255" json:"protocol"`
	Comments        string    `gorm:"type:text" json:"comments"`
	Status          string    `gorm:"size:64" json:"status"`
	AcquisitionDate string    `gorm:"size:64" json:"acquisition_date"`
	ImportationDate string    `gorm:"size:64" json:"importation_date"`
	Referee         string    `gorm:"size:255" json:"referee"`
	Performer       string    `gorm:"size:255" json:"performer"`
	Institution     string    `gorm:"size:255" json:"institution"`
	Report          string    `gorm:"type:text" json:"report"`
	Study           Study     `gorm:"foreignKey:StudyID" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// Image is one catalog row per source file (or per frame for multi-frame
// containers). Identity is (series, name).
type Image struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SeriesID     uint      `gorm:"index" json:"series_id"`
	Name         string    `gorm:"size:255" json:"name"`
	Path         string    `gorm:"size:512" json:"path"`
	InstancePath string    `gorm:"size:512" json:"instance_path"`
	Thumbnail    string    `gorm:"size:512" json:"thumbnail"`
	IsIndexed    bool      `json:"is_indexed"`
	Series       Series    `gorm:"foreignKey:SeriesID" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusSuccess   ImportStatus = "success"
	ImportStatusFailure   ImportStatus = "failure"
	ImportStatusCancelled ImportStatus = "cancelled"
)

// ImportRun records one ingestion run: what was requested, how far it got
// and how it ended. Progress is a 0-100 percentage and only ever grows.
type ImportRun struct {
	ID              string       `gorm:"primaryKey;size:36" json:"id"`
	TargetPath      string       `gorm:"size:512" json:"target_path"`
	IndexOnly       bool         `json:"index_only"`
	Status          ImportStatus `gorm:"size:20;default:'pending'" json:"status"`
	Progress        int          `json:"progress"`
	Message         string       `gorm:"type:text" json:"message,omitempty"`
	ConflictSummary string       `gorm:"type:text" json:"conflict_summary,omitempty"`
	StartedAt       *time.Time   `json:"started_at,omitempty"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}

func (Study) TableName() string {
	return "studies"
}

func (Series) TableName() string {
	return "series"
}

func (Image) TableName() string {
	return "images"
}

func (ImportRun) TableName() string {
	return "import_runs"
}
