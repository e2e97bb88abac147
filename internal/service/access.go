package service

import (
	"github.com/spec-kit/municipal-helpdesk/internal/domain"
	apperrors "github.com/spec-kit/municipal-helpdesk/pkg/util/errorutil"
)

func requireCaller(caller *domain.Identity) error {
	if caller == nil || caller.UserID <= 0 {
		return apperrors.NewUnauthorized("No autenticado")
	}
	return nil
}

func requireAdmin(caller *domain.Identity) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return apperrors.NewForbidden("Se requiere rol de administrador")
	}
	return nil
}

func requireNormal(caller *domain.Identity) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if !caller.IsNormal() {
		return apperrors.NewForbidden("Solo los usuarios pueden realizar esta acción")
	}
	return nil
}
