// Package catalog provides database operations for the patient / study /
// series / image hierarchy.
//
// Every write is a get-or-create keyed on the entity's defining attribute
// tuple, so repeated calls with the same inputs are no-ops returning the
// existing identifier. The series tuple is the same one the importer uses
// for volume grouping and conflict detection.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"gorm.io/gorm"

	"github.com/mrlokans/medcatalog/internal/entities"
	"github.com/mrlokans/medcatalog/internal/formats"
	"github.com/mrlokans/medcatalog/internal/importer"
)

// Repository handles all catalog hierarchy database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// seriesTupleQuery narrows a query to the full geometric series identity
// tuple under one study.
func seriesTupleQuery(db *gorm.DB, m *formats.Metadata, studyID uint) *gorm.DB {
	return db.Where(
		"study_id = ? AND name = ? AND uid = ? AND orientation = ? AND series_number = ? AND sequence_name = ? AND slice_thickness = ? AND rows = ? AND columns = ?",
		studyID,
		importer.Collapse(m.SeriesDescription),
		m.SeriesUID,
		m.Orientation,
		m.SeriesNumber,
		m.SequenceName,
		m.SliceThickness,
		m.Rows,
		m.Columns,
	)
}

func (r *Repository) findPatient(name string) (*entities.Patient, error) {
	var patient entities.Patient
	err := r.db.Where("name = ?", name).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *Repository) findStudy(patientID uint, name, uid string) (*entities.Study, error) {
	var study entities.Study
	err := r.db.Where("patient_id = ? AND name = ? AND uid = ?", patientID, name, uid).First(&study).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &study, nil
}

func (r *Repository) findSeries(m *formats.Metadata, studyID uint) (*entities.Series, error) {
	var series entities.Series
	err := seriesTupleQuery(r.db, m, studyID).First(&series).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// SeriesExists walks patient -> study -> series on the record's identity
// attributes. Only a full chain match is a hit; a missing link anywhere
// means the series is not cataloged yet.
func (r *Repository) SeriesExists(m *formats.Metadata) (bool, error) {
	patient, err := r.findPatient(importer.Collapse(m.PatientName))
	if err != nil || patient == nil {
		return false, err
	}

	study, err := r.findStudy(patient.ID, importer.Collapse(m.StudyDescription), m.StudyUID)
	if err != nil || study == nil {
		return false, err
	}

	series, err := r.findSeries(m, study.ID)
	if err != nil {
		return false, err
	}
	return series != nil, nil
}

// ImageExists extends the SeriesExists chain down to a single image row
// matched by name. The first pass uses it to skip source files that are
// individually already cataloged.
func (r *Repository) ImageExists(m *formats.Metadata, imageName string) (bool, error) {
	patient, err := r.findPatient(importer.Collapse(m.PatientName))
	if err != nil || patient == nil {
		return false, err
	}

	study, err := r.findStudy(patient.ID, importer.Collapse(m.StudyDescription), m.StudyUID)
	if err != nil || study == nil {
		return false, err
	}

	series, err := r.findSeries(m, study.ID)
	if err != nil || series == nil {
		return false, err
	}

	var image entities.Image
	err = r.db.Where("series_id = ? AND name = ?", series.ID, imageName).First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetOrCreatePatient matches by collapsed name.
func (r *Repository) GetOrCreatePatient(m *formats.Metadata) (uint, error) {
	name := importer.Collapse(m.PatientName)

	patient, err := r.findPatient(name)
	if err != nil {
		return 0, err
	}
	if patient != nil {
		return patient.ID, nil
	}

	patient = &entities.Patient{
		Name:      name,
		Thumbnail: m.ThumbnailPath,
		BirthDate: m.BirthDate,
		Gender:    m.Gender,
	}
	if err := r.db.Create(patient).Error; err != nil {
		return 0, fmt.Errorf("failed to create patient %s: %w", name, err)
	}
	return patient.ID, nil
}

// GetOrCreateStudy matches by (patient, name, uid).
func (r *Repository) GetOrCreateStudy(m *formats.Metadata, patientID uint) (uint, error) {
	name := importer.Collapse(m.StudyDescription)

	study, err := r.findStudy(patientID, name, m.StudyUID)
	if err != nil {
		return 0, err
	}
	if study != nil {
		return study.ID, nil
	}

	study = &entities.Study{
		PatientID: patientID,
		Name:      name,
		UID:       m.StudyUID,
		Thumbnail: m.ThumbnailPath,
	}
	if err := r.db.Create(study).Error; err != nil {
		return 0, fmt.Errorf("failed to create study %s: %w", name, err)
	}
	return study.ID, nil
}

// GetOrCreateSeries matches by the full geometric tuple. When indexing
// without importing the stored path stays empty: no aggregated file exists.
func (r *Repository) GetOrCreateSeries(m *formats.Metadata, studyID uint, indexOnly bool) (uint, error) {
	series, err := r.findSeries(m, studyID)
	if err != nil {
		return 0, err
	}
	if series != nil {
		return series.ID, nil
	}

	path := ""
	if !indexOnly {
		path = m.FileName
	}
	size, _ := strconv.Atoi(m.Size)

	series = &entities.Series{
		StudyID:         studyID,
		Size:            size,
		Name:            importer.Collapse(m.SeriesDescription),
		Path:            path,
		UID:             m.SeriesUID,
		Orientation:     m.Orientation,
		SeriesNumber:    m.SeriesNumber,
		SequenceName:    m.SequenceName,
		SliceThickness:  m.SliceThickness,
		Rows:            m.Rows,
		Columns:         m.Columns,
		Thumbnail:       m.ThumbnailPath,
		Age:             m.Age,
		Description:     m.Description,
		Modality:        m.Modality,
		Protocol:        m.Protocol,
		Comments:        m.Comments,
		Status:          m.Status,
		AcquisitionDate: m.AcquisitionDate,
		ImportationDate: m.ImportationDate,
		Referee:         m.Referee,
		Performer:       m.Performer,
		Institution:     m.Institution,
		Report:          m.Report,
	}
	if err := r.db.Create(series).Error; err != nil {
		return 0, fmt.Errorf("failed to create series %s: %w", series.Name, err)
	}
	return series.ID, nil
}

// CreateMissingImages inserts one image row per source file, matched by
// (series, name). A single source expanding into several thumbnails (a
// multi-frame container) gets one row per thumbnail named <basename><index>;
// otherwise rows beyond the available thumbnails store an empty thumbnail
// reference. instance_path stays empty when indexing, since the full source
// path in path is authoritative.
func (r *Repository) CreateMissingImages(m *formats.Metadata, seriesID uint, thumbPaths []string, indexOnly bool) error {
	instancePath := ""
	if !indexOnly {
		instancePath = m.FileName
	}

	if len(m.FilePaths) == 1 && len(thumbPaths) > 1 {
		name := filepath.Base(m.FilePaths[0])
		for i, thumb := range thumbPaths {
			img := entities.Image{
				SeriesID:     seriesID,
				Name:         name + strconv.Itoa(i),
				Path:         m.FilePaths[0],
				InstancePath: instancePath,
				Thumbnail:    thumb,
				IsIndexed:    indexOnly,
			}
			if err := r.createImageIfMissing(&img); err != nil {
				return err
			}
		}
		return nil
	}

	for i, path := range m.FilePaths {
		thumb := ""
		if i < len(thumbPaths) {
			thumb = thumbPaths[i]
		}
		img := entities.Image{
			SeriesID:     seriesID,
			Name:         filepath.Base(path),
			Path:         path,
			InstancePath: instancePath,
			Thumbnail:    thumb,
			IsIndexed:    indexOnly,
		}
		if err := r.createImageIfMissing(&img); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) createImageIfMissing(img *entities.Image) error {
	var existing entities.Image
	err := r.db.Where("series_id = ? AND name = ?", img.SeriesID, img.Name).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := r.db.Create(img).Error; err != nil {
		return fmt.Errorf("failed to create image %s: %w", img.Name, err)
	}
	return nil
}

// Browse queries used by the HTTP layer.

func (r *Repository) ListPatients() ([]entities.Patient, error) {
	var patients []entities.Patient
	err := r.db.Order("name ASC").Find(&patients).Error
	return patients, err
}

func (r *Repository) ListStudies(patientID uint) ([]entities.Study, error) {
	var studies []entities.Study
	err := r.db.Where("patient_id = ?", patientID).Order("id ASC").Find(&studies).Error
	return studies, err
}

func (r *Repository) ListSeries(studyID uint) ([]entities.Series, error) {
	var series []entities.Series
	err := r.db.Where("study_id = ?", studyID).Order("id ASC").Find(&series).Error
	return series, err
}

func (r *Repository) ListImages(seriesID uint) ([]entities.Image, error) {
	var images []entities.Image
	err := r.db.Where("series_id = ?", seriesID).Order("name ASC").Find(&images).Error
	return images, err
}
