package cockroach

import (
	"encoding/json"
	"errors"
	"fmt"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/chacha20poly1305"
)

// Credential читает секреты бот-аккаунтов из таблицы vault_secret.
// Секреты лежат запечатанными (XChaCha20-Poly1305), мастер-ключ передаётся процессу через окружение.
type Credential struct {
	db  *sqlx.DB
	key []byte
}

func NewCredential(db *sqlx.DB, masterKey []byte) (repo.Credential, error) {
	if len(masterKey) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("vault master key must be %d bytes, got %d", chacha20poly1305.KeySize, len(masterKey))
	}
	return &Credential{db: db, key: masterKey}, nil
}

type vaultSecretRow struct {
	Description string `db:"description"`
	Nonce       []byte `db:"nonce"`
	Secret      []byte `db:"secret"`
}

func (c *Credential) GetCredentials() ([]*entity.Credential, error) {
	var rows []vaultSecretRow
	query := `SELECT description, nonce, secret FROM vault_secret ORDER BY id`
	if err := c.db.Select(&rows, query); err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, err
	}

	credentials := make([]*entity.Credential, 0, len(rows))
	for _, row := range rows {
		if len(row.Nonce) != aead.NonceSize() {
			return nil, errors.New("vault secret has malformed nonce: " + row.Description)
		}
		plaintext, err := aead.Open(nil, row.Nonce, row.Secret, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to unseal vault secret %q: %w", row.Description, err)
		}
		credential := &entity.Credential{Description: row.Description}
		if err := json.Unmarshal(plaintext, &credential.Secret); err != nil {
			return nil, fmt.Errorf("failed to decode vault secret %q: %w", row.Description, err)
		}
		credentials = append(credentials, credential)
	}
	return credentials, nil
}
