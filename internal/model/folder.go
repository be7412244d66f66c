package model

import (
	"strconv"
	"strings"
	"time"
)

type Folder struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ParentID       *string   `json:"parent_id,omitempty"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Subfolders     []Folder  `json:"subfolders,omitempty"`
	Files          []File    `json:"files,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FolderContent : непосредственные потомки папки (или корня организации, если Folder == nil)
type FolderContent struct {
	Folder     *Folder  `json:"folder,omitempty"`
	Subfolders []Folder `json:"subfolders"`
	Files      []File   `json:"files"`
}

type File struct {
	ID               string            `json:"id"`
	Filename         string            `json:"filename"`
	DisplayName      string            `json:"displayName"`
	Size             string            `json:"size"`
	Type             string            `json:"type"`
	FolderID         string            `json:"folder_id,omitempty"`
	UploadedBy       string            `json:"uploaded_by,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	ExpirationAlerts []ExpirationAlert `json:"expiration_alerts,omitempty"`
}

// SizeBytes : API отдаёт размер строкой
func (f File) SizeBytes() int64 {
	size, err := strconv.ParseInt(strings.TrimSpace(f.Size), 10, 64)
	if err != nil {
		return 0
	}
	return size
}

type ExpirationAlert struct {
	ID          string    `json:"id,omitempty"`
	FileID      string    `json:"file_id"`
	AlertDate   time.Time `json:"alert_date"`
	Description string    `json:"description"`
}

type SearchHit struct {
	Kind       string  `json:"kind"` // file | folder
	File       *File   `json:"file,omitempty"`
	Folder     *Folder `json:"folder,omitempty"`
	FolderPath string  `json:"folder_path,omitempty"`
	Score      float64 `json:"score,omitempty"`
}
