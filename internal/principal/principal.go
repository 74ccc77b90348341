// principal адаптирует запись каталога во внутреннее представление
// аутентифицированного субъекта. Без побочных эффектов.
package principal

import (
	"errors"
	"fmt"

	"github.com/apulsec/blog-auth-service/internal/models"
)

var (
	// ErrAccountNotFound — каталог не знает такого идентификатора.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountInactive — запись есть, но статус не active
	// (disabled/pending/deactivated).
	ErrAccountInactive = errors.New("account is not active")
)

// FromRecord строит Principal из записи каталога.
// Роли в этой схеме не реализованы: Authorities всегда пуст.
func FromRecord(record *models.DirectoryRecord) (*models.Principal, error) {
	const op = "principal.FromRecord"

	if record == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}

	if !record.Status.Active() {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountInactive)
	}

	return &models.Principal{
		Username:       record.Identifier,
		CredentialHash: record.CredentialHash,
		UserID:         record.UserID,
		Authorities:    []string{},
	}, nil
}
