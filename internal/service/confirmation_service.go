package service

import (
	"log"
	"sync"
	"time"

	"docs-admin-console/internal/model"
	"docs-admin-console/internal/util"
)

// ConfirmAction : разрушительные действия, которые требуют подтверждения
type ConfirmAction string

const (
	ConfirmDeleteFolder       ConfirmAction = "delete_folder"
	ConfirmBulkDelete         ConfirmAction = "bulk_delete"
	ConfirmDeleteTCC          ConfirmAction = "delete_tcc"
	ConfirmDeleteCourse       ConfirmAction = "delete_course"
	ConfirmDeleteOrganization ConfirmAction = "delete_organization"
)

func (a ConfirmAction) Valid() bool {
	switch a {
	case ConfirmDeleteFolder, ConfirmBulkDelete, ConfirmDeleteTCC, ConfirmDeleteCourse, ConfirmDeleteOrganization:
		return true
	}
	return false
}

type Confirmation struct {
	Token     string        `json:"token"`
	Action    ConfirmAction `json:"action"`
	TargetID  string        `json:"target_id"`
	ExpiresAt time.Time     `json:"expires_at"`
}

type pendingConfirmation struct {
	userID    string
	action    ConfirmAction
	targetID  string
	expiresAt time.Time
}

// ConfirmationService : одноразовые токены подтверждения, привязанные к пользователю, действию и цели
type ConfirmationService struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]pendingConfirmation
	now     func() time.Time
}

func NewConfirmationService(ttl time.Duration) *ConfirmationService {
	return &ConfirmationService{
		ttl:     ttl,
		pending: make(map[string]pendingConfirmation),
		now:     time.Now,
	}
}

func (s *ConfirmationService) Request(userID string, action ConfirmAction, targetID string) (*Confirmation, error) {
	if !action.Valid() {
		return nil, &model.ValidationError{Message: "Ação inválida"}
	}
	if targetID == "" {
		return nil, &model.ValidationError{Message: "Alvo da ação é obrigatório"}
	}

	token, err := util.GenerateRandomToken(32)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(s.ttl)
	s.pending[token] = pendingConfirmation{
		userID:    userID,
		action:    action,
		targetID:  targetID,
		expiresAt: expiresAt,
	}

	return &Confirmation{Token: token, Action: action, TargetID: targetID, ExpiresAt: expiresAt}, nil
}

// Consume : токен сгорает при первой попытке, даже если он не подошёл
func (s *ConfirmationService) Consume(userID string, action ConfirmAction, targetID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[token]
	delete(s.pending, token)

	if !ok || s.now().After(pending.expiresAt) ||
		pending.userID != userID || pending.action != action || pending.targetID != targetID {
		return &model.ValidationError{Message: "Confirmação inválida ou expirada"}
	}
	return nil
}

// Sweep : удаляет просроченные токены
func (s *ConfirmationService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for token, pending := range s.pending {
		if now.After(pending.expiresAt) {
			delete(s.pending, token)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[ConfirmationService] удалено просроченных подтверждений: %d", removed)
	}
	return removed
}
