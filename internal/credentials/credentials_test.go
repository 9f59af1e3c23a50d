// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package credentials

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		content  *string
		want     *types.Credentials
		wantWarn bool
	}{
		{
			name:    "well-formed file",
			content: ptr(`{"oauth_token": "test_token", "oauth_token_secret": "test_secret"}`),
			want:    &types.Credentials{Token: "test_token", TokenSecret: "test_secret"},
		},
		{
			name:    "extra fields from the access token response are ignored",
			content: ptr(`{"oauth_token": "t", "oauth_token_secret": "s", "url_name": "alice"}`),
			want:    &types.Credentials{Token: "t", TokenSecret: "s"},
		},
		{
			name: "missing file is absent",
		},
		{
			name:     "malformed json is absent",
			content:  ptr(`{"oauth_token": `),
			wantWarn: true,
		},
		{
			name:     "missing secret is absent",
			content:  ptr(`{"oauth_token": "t"}`),
			wantWarn: true,
		},
		{
			name:     "empty token is absent",
			content:  ptr(`{"oauth_token": "", "oauth_token_secret": "s"}`),
			wantWarn: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tokens.json")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o600))
			}

			var log bytes.Buffer
			got, err := NewStore(path, &log).Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.wantWarn {
				assert.Contains(t, log.String(), "warning:")
			} else {
				assert.Empty(t, log.String())
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	store := NewStore(path, nil)

	creds := types.Credentials{Token: "access", TokenSecret: "secret"}
	require.NoError(t, store.Save(creds))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, creds, *got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"oauth_token":"access","oauth_token_secret":"secret"}`, string(data))
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewStore(path, nil)

	require.NoError(t, store.Save(types.Credentials{Token: "old", TokenSecret: "old-secret"}))
	require.NoError(t, store.Save(types.Credentials{Token: "new", TokenSecret: "new-secret"}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", got.Token)
	assert.Equal(t, "new-secret", got.TokenSecret)
}

func TestSaveRejectsIncompletePair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	err := NewStore(path, nil).Save(types.Credentials{Token: "only-token"})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file should be created")
}

func TestNewStoreDefaultPath(t *testing.T) {
	assert.Equal(t, DefaultPath, NewStore("", nil).Path())
}

func ptr(s string) *string { return &s }
