package service

import (
	"context"
	"log"

	"docs-admin-console/internal/model"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/security"

	"golang.org/x/sync/errgroup"
)

type OrganizationService struct {
	api           ports.OrganizationAPI
	permissions   *PermissionService
	confirmations *ConfirmationService
	reports       *ReportService
}

func NewOrganizationService(api ports.OrganizationAPI, permissions *PermissionService,
	confirmations *ConfirmationService, reports *ReportService) *OrganizationService {
	return &OrganizationService{api: api, permissions: permissions, confirmations: confirmations, reports: reports}
}

// Overview : организация, пользователи и платежи загружаются параллельно
func (s *OrganizationService) Overview(ctx context.Context, claims *security.Claims, organizationID string) (*model.OrganizationOverview, error) {
	if err := s.permissions.RequireOrganization(claims, organizationID); err != nil {
		return nil, err
	}

	overview := &model.OrganizationOverview{}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		organization, err := s.api.GetOrganization(groupCtx, organizationID)
		overview.Organization = organization
		return err
	})
	group.Go(func() error {
		users, err := s.api.ListOrganizationUsers(groupCtx, organizationID)
		overview.Users = users
		return err
	})
	group.Go(func() error {
		payments, err := s.api.ListPayments(groupCtx, organizationID)
		overview.Payments = payments
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	if overview.Users == nil {
		overview.Users = []model.User{}
	}
	if overview.Payments == nil {
		overview.Payments = []model.Payment{}
	}
	if overview.Organization != nil {
		overview.StorageLimit = overview.Organization.StorageLimit()
		if overview.StorageLimit > 0 {
			overview.StorageUsage = float64(overview.Organization.StorageUsed) / float64(overview.StorageLimit) * 100
		}
	}
	return overview, nil
}

func (s *OrganizationService) Payments(ctx context.Context, claims *security.Claims, organizationID string) ([]model.Payment, error) {
	if err := s.permissions.RequireOrganization(claims, organizationID); err != nil {
		return nil, err
	}
	payments, err := s.api.ListPayments(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	return payments, nil
}

func (s *OrganizationService) Delete(ctx context.Context, claims *security.Claims, organizationID, confirmToken string) error {
	if !claims.IsAdmin {
		return &model.ForbiddenError{Message: "Apenas administradores podem excluir organizações"}
	}
	if err := s.confirmations.Consume(claims.UserUUID, ConfirmDeleteOrganization, organizationID, confirmToken); err != nil {
		return err
	}
	if err := s.api.DeleteOrganization(ctx, organizationID); err != nil {
		return err
	}

	s.reports.Invalidate(ctx, organizationID)
	log.Printf("[OrganizationService] организация %s удалена", organizationID)
	return nil
}
