package users

import (
	"context"

	"github.com/dmitrijs2005/userbase/internal/server/models"
)

// Repository is the storage contract for user rows. Lookups that find
// nothing return common.ErrNotFound; Create returns common.ErrDuplicateEmail
// when the email is already taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}
