package usecase

import (
	"context"
	"net/http"
	"time"

	"shophub/internal/domain/model"
	repo "shophub/internal/repository"
)

type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

type ListAuditLogsInput struct {
	Page         int
	Limit        int
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
}

type AuditLogListOutput struct {
	Logs        []model.AuditLog `json:"logs"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Total       int64            `json:"total"`
}

func (u *AuditLogUsecase) List(ctx context.Context, in ListAuditLogsInput) (AuditLogListOutput, error) {
	if in.Page < 1 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 200 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	f := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		ResourceID:  in.ResourceID,
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Page:        in.Page,
		Limit:       in.Limit,
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		switch a {
		case model.AuditActionUpdateStock, model.AuditActionUpdateOrderStatus, model.AuditActionForceLogout:
		default:
			return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid action")
		}
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		switch rt {
		case model.AuditResourceProduct, model.AuditResourceOrder, model.AuditResourceUser:
		default:
			return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid resourceType")
		}
		f.ResourceType = &rt
	}

	logs, total, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, internalError(err)
	}

	return AuditLogListOutput{
		Logs:        logs,
		TotalPages:  totalPages(total, in.Limit),
		CurrentPage: in.Page,
		Total:       total,
	}, nil
}
