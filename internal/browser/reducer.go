package browser

import (
	"docs-admin-console/internal/model"
)

// Command : единственный способ изменить State
type Command interface {
	apply(s *State) error
}

// Reduce : применяет команду к копии состояния; при ошибке возвращает исходное
func Reduce(s State, cmd Command) (State, error) {
	next := s.Clone()
	if err := cmd.apply(&next); err != nil {
		return s, err
	}
	return next, nil
}

// IsNavigation : команды, после которых нужно заново загрузить содержимое и права
func IsNavigation(cmd Command) bool {
	switch cmd.(type) {
	case OpenOrganization, Enter, NavigateTo, JumpTo, GoUp, Refresh:
		return true
	}
	return false
}

func beginNavigation(s *State) {
	s.Generation++
	s.Loading = true
	s.LoadError = ""
	s.Content = nil
	s.Access = ""
	s.SelectedFiles = set{}
	s.SelectedFolders = set{}
}

type OpenOrganization struct {
	OrganizationID string
}

func (c OpenOrganization) apply(s *State) error {
	if c.OrganizationID == "" {
		return &model.ValidationError{Message: "Organização é obrigatória"}
	}
	if c.OrganizationID != s.OrganizationID {
		s.Expanded = set{}
	}
	s.OrganizationID = c.OrganizationID
	s.Frames = nil
	beginNavigation(s)
	return nil
}

// Enter : спуск в подпапку, видимую в текущем содержимом
type Enter struct {
	FolderID string
}

func (c Enter) apply(s *State) error {
	if s.OrganizationID == "" {
		return &model.ValidationError{Message: "Nenhuma organização aberta"}
	}
	folder, ok := s.subfolder(c.FolderID)
	if !ok {
		return &model.NotFoundError{Message: "Pasta não encontrada na pasta atual"}
	}
	s.Frames = append(s.Frames, Frame{ID: folder.ID, Name: folder.Name})
	beginNavigation(s)
	return nil
}

// NavigateTo : переход сразу на известную цепочку папок (дерево, результаты поиска)
type NavigateTo struct {
	Frames []Frame
}

func (c NavigateTo) apply(s *State) error {
	if s.OrganizationID == "" {
		return &model.ValidationError{Message: "Nenhuma organização aberta"}
	}
	for _, frame := range c.Frames {
		if frame.ID == "" {
			return &model.ValidationError{Message: "Caminho de pastas inválido"}
		}
	}
	s.Frames = append([]Frame(nil), c.Frames...)
	beginNavigation(s)
	return nil
}

// JumpTo : клик по хлебной крошке i оставляет первые i+1 кадров, -1 это корень
type JumpTo struct {
	Index int
}

func (c JumpTo) apply(s *State) error {
	if c.Index < -1 || c.Index >= len(s.Frames) {
		return &model.ValidationError{Message: "Índice de navegação inválido"}
	}
	s.Frames = s.Frames[:c.Index+1]
	beginNavigation(s)
	return nil
}

type GoUp struct{}

func (GoUp) apply(s *State) error {
	if len(s.Frames) == 0 {
		return &model.ValidationError{Message: "Já está na pasta raiz"}
	}
	s.Frames = s.Frames[:len(s.Frames)-1]
	beginNavigation(s)
	return nil
}

type Refresh struct{}

func (Refresh) apply(s *State) error {
	if s.OrganizationID == "" {
		return &model.ValidationError{Message: "Nenhuma organização aberta"}
	}
	beginNavigation(s)
	return nil
}

type ToggleExpanded struct {
	FolderID string
}

func (c ToggleExpanded) apply(s *State) error {
	if c.FolderID == "" {
		return &model.ValidationError{Message: "Pasta é obrigatória"}
	}
	s.Expanded.toggle(c.FolderID)
	return nil
}

// ToggleFile : выделять можно только видимое, снимать выделение можно всегда
type ToggleFile struct {
	FileID string
}

func (c ToggleFile) apply(s *State) error {
	if !s.IsFileSelected(c.FileID) && !s.hasFile(c.FileID) {
		return &model.NotFoundError{Message: "Arquivo não encontrado na pasta atual"}
	}
	s.SelectedFiles.toggle(c.FileID)
	return nil
}

type ToggleFolder struct {
	FolderID string
}

func (c ToggleFolder) apply(s *State) error {
	if !s.IsFolderSelected(c.FolderID) {
		if _, ok := s.subfolder(c.FolderID); !ok {
			return &model.NotFoundError{Message: "Pasta não encontrada na pasta atual"}
		}
	}
	s.SelectedFolders.toggle(c.FolderID)
	return nil
}

type ClearSelection struct{}

func (ClearSelection) apply(s *State) error {
	s.SelectedFiles = set{}
	s.SelectedFolders = set{}
	return nil
}

type SelectAll struct{}

func (SelectAll) apply(s *State) error {
	if s.Content == nil {
		return &model.ValidationError{Message: "Conteúdo ainda carregando"}
	}
	for _, file := range s.Content.Files {
		s.SelectedFiles[file.ID] = struct{}{}
	}
	for _, folder := range s.Content.Subfolders {
		s.SelectedFolders[folder.ID] = struct{}{}
	}
	return nil
}

type ContentLoaded struct {
	Generation uint64
	Content    *model.FolderContent
}

func (c ContentLoaded) apply(s *State) error {
	if c.Generation != s.Generation {
		return model.ErrStale
	}
	content := model.FolderContent{}
	if c.Content != nil {
		content = *c.Content
	}
	if content.Subfolders == nil {
		content.Subfolders = []model.Folder{}
	}
	if content.Files == nil {
		content.Files = []model.File{}
	}
	s.Content = &content
	s.Loading = false
	s.LoadError = ""
	return nil
}

type ContentFailed struct {
	Generation uint64
	Message    string
}

func (c ContentFailed) apply(s *State) error {
	if c.Generation != s.Generation {
		return model.ErrStale
	}
	s.Loading = false
	s.LoadError = c.Message
	return nil
}

type AccessResolved struct {
	Generation uint64
	Level      model.AccessLevel
}

func (c AccessResolved) apply(s *State) error {
	if c.Generation != s.Generation {
		return model.ErrStale
	}
	s.Access = c.Level
	return nil
}

// ItemsRemoved : убирает удалённые/перемещённые элементы из содержимого и выделения
type ItemsRemoved struct {
	FileIDs   []string
	FolderIDs []string
}

func (c ItemsRemoved) apply(s *State) error {
	files := set{}
	for _, id := range c.FileIDs {
		files[id] = struct{}{}
		delete(s.SelectedFiles, id)
	}
	folders := set{}
	for _, id := range c.FolderIDs {
		folders[id] = struct{}{}
		delete(s.SelectedFolders, id)
		delete(s.Expanded, id)
	}

	if s.Content == nil {
		return nil
	}

	keptFiles := s.Content.Files[:0]
	for _, file := range s.Content.Files {
		if _, removed := files[file.ID]; !removed {
			keptFiles = append(keptFiles, file)
		}
	}
	s.Content.Files = keptFiles

	keptFolders := s.Content.Subfolders[:0]
	for _, folder := range s.Content.Subfolders {
		if _, removed := folders[folder.ID]; !removed {
			keptFolders = append(keptFolders, folder)
		}
	}
	s.Content.Subfolders = keptFolders
	return nil
}

// FolderRenamed : ответ API на переименование вливается без перезагрузки
type FolderRenamed struct {
	Folder model.Folder
}

func (c FolderRenamed) apply(s *State) error {
	for i := range s.Frames {
		if s.Frames[i].ID == c.Folder.ID {
			s.Frames[i].Name = c.Folder.Name
		}
	}
	if s.Content == nil {
		return nil
	}
	if s.Content.Folder != nil && s.Content.Folder.ID == c.Folder.ID {
		current := *s.Content.Folder
		current.Name = c.Folder.Name
		s.Content.Folder = &current
	}
	for i := range s.Content.Subfolders {
		if s.Content.Subfolders[i].ID == c.Folder.ID {
			s.Content.Subfolders[i].Name = c.Folder.Name
		}
	}
	return nil
}

type FolderCreated struct {
	Folder model.Folder
}

func (c FolderCreated) apply(s *State) error {
	if s.Content == nil {
		return nil
	}
	parent := ""
	if c.Folder.ParentID != nil {
		parent = *c.Folder.ParentID
	}
	if parent != s.CurrentFolderID() {
		return nil
	}
	s.Content.Subfolders = append(s.Content.Subfolders, c.Folder)
	return nil
}
