package local

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

type sessionRepository struct {
	store repository.KeyValueStore
}

// NewSessionRepository stores the credential under "token" and the identity under "user".
func NewSessionRepository(store repository.KeyValueStore) repository.SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	token, tokenErr := r.store.Get(ctx, repository.KeyToken)
	rawUser, userErr := r.store.Get(ctx, repository.KeyUser)

	if err := firstRealError(tokenErr, userErr); err != nil {
		return nil, err
	}
	if len(token) == 0 || len(rawUser) == 0 {
		if len(token) > 0 || len(rawUser) > 0 {
			// half a session is no session
			return nil, r.Clear(ctx)
		}
		return nil, nil
	}

	var user domain.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "stored user is malformed", err)
	}
	return domain.NewSession(string(token), &user), nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.Token == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(session.User)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, repository.KeyUser, payload); err != nil {
		return err
	}
	if err := r.store.Set(ctx, repository.KeyToken, []byte(session.Token)); err != nil {
		_ = r.store.Remove(ctx, repository.KeyUser)
		return err
	}
	return nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	return errors.Join(
		r.store.Remove(ctx, repository.KeyToken),
		r.store.Remove(ctx, repository.KeyUser),
	)
}

func firstRealError(errs ...error) error {
	for _, err := range errs {
		if err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
			return err
		}
	}
	return nil
}
