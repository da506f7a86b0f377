package rename

import (
	"context"

	"github.com/magabrotheeeer/mycrm/internal/models"
)

// Service описывает смену имени учётной записи.
type Service interface {
	UpdateName(ctx context.Context, accountID, name string) (*models.Account, error)
}
