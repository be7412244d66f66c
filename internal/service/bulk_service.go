package service

import (
	"context"
	"log"

	"docs-admin-console/internal/browser"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/security"

	"golang.org/x/sync/errgroup"
)

type BulkAction string

const (
	BulkDelete BulkAction = "delete"
	BulkMove   BulkAction = "move"
)

const (
	ItemFile   = "file"
	ItemFolder = "folder"
)

type BulkItem struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Error string `json:"error,omitempty"`
}

// BulkReport : результат по каждому элементу, неудачные остаются выделенными
type BulkReport struct {
	Action    BulkAction `json:"action"`
	Succeeded []BulkItem `json:"succeeded"`
	Failed    []BulkItem `json:"failed"`
}

type BulkService struct {
	registry      *browser.Registry
	folders       ports.FolderAPI
	files         ports.FileAPI
	permissions   *PermissionService
	confirmations *ConfirmationService
	concurrency   int
}

func NewBulkService(registry *browser.Registry, folders ports.FolderAPI, files ports.FileAPI,
	permissions *PermissionService, confirmations *ConfirmationService, concurrency int) *BulkService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BulkService{
		registry:      registry,
		folders:       folders,
		files:         files,
		permissions:   permissions,
		confirmations: confirmations,
		concurrency:   concurrency,
	}
}

func (s *BulkService) DeleteSelected(ctx context.Context, claims *security.Claims, session, confirmToken string) (*BulkReport, browser.State, error) {
	store := s.registry.Get(session)
	state := store.Snapshot()

	// токен выдан на конкретное выделение, после его изменения нужен новый
	if err := s.confirmations.Consume(claims.UserUUID, ConfirmBulkDelete, state.SelectionDigest(), confirmToken); err != nil {
		return nil, state, err
	}
	items, err := s.prepare(ctx, claims, state)
	if err != nil {
		return nil, state, err
	}

	report := s.run(ctx, BulkDelete, items, func(ctx context.Context, item BulkItem) error {
		if item.Kind == ItemFolder {
			return s.folders.DeleteFolder(ctx, item.ID)
		}
		return s.files.DeleteFile(ctx, item.ID)
	})

	next, err := s.merge(store, report)
	return report, next, err
}

// MoveSelected : папку нельзя переместить в саму себя, такой элемент сразу попадает в Failed
func (s *BulkService) MoveSelected(ctx context.Context, claims *security.Claims, session, destinationID string) (*BulkReport, browser.State, error) {
	store := s.registry.Get(session)
	state := store.Snapshot()

	if destinationID == "" {
		return nil, state, &model.ValidationError{Message: "Pasta de destino é obrigatória"}
	}
	if destinationID == state.CurrentFolderID() {
		return nil, state, &model.ValidationError{Message: "Os itens já estão nesta pasta"}
	}
	items, err := s.prepare(ctx, claims, state)
	if err != nil {
		return nil, state, err
	}
	if _, err := s.permissions.Require(ctx, claims, destinationID, model.ActionUpload); err != nil {
		return nil, state, err
	}

	report := s.run(ctx, BulkMove, items, func(ctx context.Context, item BulkItem) error {
		if item.Kind == ItemFolder {
			if item.ID == destinationID {
				return &model.ValidationError{Message: "Não é possível mover uma pasta para dentro dela mesma"}
			}
			return s.folders.MoveFolder(ctx, item.ID, destinationID)
		}
		return s.files.MoveFile(ctx, item.ID, destinationID)
	})

	next, err := s.merge(store, report)
	return report, next, err
}

func (s *BulkService) prepare(ctx context.Context, claims *security.Claims, state browser.State) ([]BulkItem, error) {
	if !state.HasSelection() {
		return nil, &model.ValidationError{Message: "Nenhum item selecionado"}
	}
	if _, err := s.permissions.Require(ctx, claims, state.CurrentFolderID(), model.ActionManage); err != nil {
		return nil, err
	}

	items := make([]BulkItem, 0, len(state.SelectedFiles)+len(state.SelectedFolders))
	for _, id := range state.SelectedFileIDs() {
		items = append(items, BulkItem{ID: id, Kind: ItemFile})
	}
	for _, id := range state.SelectedFolderIDs() {
		items = append(items, BulkItem{ID: id, Kind: ItemFolder})
	}
	return items, nil
}

// run : по запросу на элемент, ошибка одного элемента не отменяет остальные
func (s *BulkService) run(ctx context.Context, action BulkAction, items []BulkItem, apply func(context.Context, BulkItem) error) *BulkReport {
	outcomes := make([]error, len(items))

	var group errgroup.Group
	group.SetLimit(s.concurrency)
	for i, item := range items {
		group.Go(func() error {
			outcomes[i] = apply(ctx, item)
			return nil
		})
	}
	_ = group.Wait()

	report := &BulkReport{Action: action, Succeeded: []BulkItem{}, Failed: []BulkItem{}}
	for i, item := range items {
		if outcomes[i] != nil {
			item.Error = userMessage(outcomes[i])
			report.Failed = append(report.Failed, item)
			continue
		}
		report.Succeeded = append(report.Succeeded, item)
	}

	log.Printf("[BulkService] %s: успешно %d, с ошибкой %d", action, len(report.Succeeded), len(report.Failed))
	return report
}

func (s *BulkService) merge(store *browser.Store, report *BulkReport) (browser.State, error) {
	removed := browser.ItemsRemoved{}
	for _, item := range report.Succeeded {
		if item.Kind == ItemFolder {
			removed.FolderIDs = append(removed.FolderIDs, item.ID)
		} else {
			removed.FileIDs = append(removed.FileIDs, item.ID)
		}
	}
	return store.Dispatch(removed)
}
