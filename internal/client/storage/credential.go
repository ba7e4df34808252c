package storage

import "context"

// Token returns the stored bearer credential, or "" when there is none.
func (l *Local) Token(ctx context.Context) (string, error) {
	v, err := l.Get(ctx, KeyAuthToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (l *Local) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return l.ClearToken(ctx)
	}
	return l.Set(ctx, KeyAuthToken, []byte(token))
}

func (l *Local) ClearToken(ctx context.Context) error {
	return l.Delete(ctx, KeyAuthToken)
}

// LoadSlice returns the persisted session slice, or nil when none was saved.
func (l *Local) LoadSlice(ctx context.Context) ([]byte, error) {
	return l.Get(ctx, KeyAuthSlice)
}

func (l *Local) SaveSlice(ctx context.Context, data []byte) error {
	return l.Set(ctx, KeyAuthSlice, data)
}
