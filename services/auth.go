package services

import (
	"fmt"

	"github.com/pedrowallacee/palpitarena-v2/models"
)

// AuthContext is the verified caller, passed explicitly into every operation.
type AuthContext struct {
	UserID  int
	IsAdmin bool
}

func (a AuthContext) CanManage(ownerID int) bool {
	return a.IsAdmin || (a.UserID != 0 && a.UserID == ownerID)
}

func authorizeManage(auth AuthContext, c *models.Championship) error {
	if !auth.CanManage(c.OwnerID) {
		return fmt.Errorf("%w: user %d does not manage championship %d", ErrForbiddenOperation, auth.UserID, c.ID)
	}
	return nil
}
