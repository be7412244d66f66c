// Package browser : состояние проводника папок/файлов одной сессии.
//
// Текущая папка задаётся стеком кадров (id, имя), а не строкой пути: путь
// "Root/A/B" только производное значение для хлебных крошек. Состояние
// меняется исключительно командами через Reduce, поэтому все побочные
// эффекты видны в одном месте и легко тестируются.
package browser

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"docs-admin-console/internal/model"
)

const RootLabel = "Root"

type Frame struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type set map[string]struct{}

func (s set) clone() set {
	out := make(set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s set) toggle(id string) {
	if _, ok := s[id]; ok {
		delete(s, id)
		return
	}
	s[id] = struct{}{}
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type State struct {
	OrganizationID  string
	Frames          []Frame
	Expanded        set
	SelectedFiles   set
	SelectedFolders set
	Content         *model.FolderContent
	Loading         bool
	LoadError       string
	Access          model.AccessLevel
	Generation      uint64
}

func NewState() State {
	return State{
		Expanded:        set{},
		SelectedFiles:   set{},
		SelectedFolders: set{},
	}
}

// Clone : глубокая копия, Reduce никогда не трогает исходное состояние
func (s State) Clone() State {
	out := s
	out.Frames = append([]Frame(nil), s.Frames...)
	out.Expanded = s.Expanded.clone()
	out.SelectedFiles = s.SelectedFiles.clone()
	out.SelectedFolders = s.SelectedFolders.clone()
	if s.Content != nil {
		content := *s.Content
		content.Subfolders = append([]model.Folder(nil), s.Content.Subfolders...)
		content.Files = append([]model.File(nil), s.Content.Files...)
		out.Content = &content
	}
	return out
}

// CurrentFolderID : "" означает корень организации
func (s State) CurrentFolderID() string {
	if len(s.Frames) == 0 {
		return ""
	}
	return s.Frames[len(s.Frames)-1].ID
}

func (s State) AtRoot() bool {
	return len(s.Frames) == 0
}

// Path : отображаемый путь, только для показа
func (s State) Path() string {
	names := make([]string, 0, len(s.Frames)+1)
	names = append(names, RootLabel)
	for _, frame := range s.Frames {
		names = append(names, frame.Name)
	}
	return strings.Join(names, "/")
}

func (s State) IsExpanded(folderID string) bool {
	_, ok := s.Expanded[folderID]
	return ok
}

func (s State) IsFileSelected(fileID string) bool {
	_, ok := s.SelectedFiles[fileID]
	return ok
}

func (s State) IsFolderSelected(folderID string) bool {
	_, ok := s.SelectedFolders[folderID]
	return ok
}

func (s State) SelectedFileIDs() []string {
	return s.SelectedFiles.sorted()
}

func (s State) SelectedFolderIDs() []string {
	return s.SelectedFolders.sorted()
}

func (s State) ExpandedIDs() []string {
	return s.Expanded.sorted()
}

func (s State) HasSelection() bool {
	return len(s.SelectedFiles) > 0 || len(s.SelectedFolders) > 0
}

// SelectionDigest : отпечаток выделения для подтверждения удаления; "" при пустом выделении
func (s State) SelectionDigest() string {
	if !s.HasSelection() {
		return ""
	}
	hash := sha256.New()
	for _, id := range s.SelectedFolders.sorted() {
		hash.Write([]byte("folder:" + id + "\n"))
	}
	for _, id := range s.SelectedFiles.sorted() {
		hash.Write([]byte("file:" + id + "\n"))
	}
	return hex.EncodeToString(hash.Sum(nil))
}

func (s State) subfolder(folderID string) (model.Folder, bool) {
	if s.Content == nil {
		return model.Folder{}, false
	}
	for _, folder := range s.Content.Subfolders {
		if folder.ID == folderID {
			return folder, true
		}
	}
	return model.Folder{}, false
}

func (s State) hasFile(fileID string) bool {
	if s.Content == nil {
		return false
	}
	for _, file := range s.Content.Files {
		if file.ID == fileID {
			return true
		}
	}
	return false
}
