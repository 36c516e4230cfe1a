package gcs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	fetch  func(ctx context.Context, uri string) ([]byte, error)
	upload func(ctx context.Context, uri string, r io.Reader) error
}

func (m *mockStorage) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return m.fetch(ctx, uri)
}

func (m *mockStorage) Upload(ctx context.Context, uri string, r io.Reader) error {
	return m.upload(ctx, uri, r)
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://ledger/snapshots/household.json", "ledger", "snapshots/household.json", false},
		{"gs://ledger/a", "ledger", "a", false},
		{"gs://ledger", "", "", true},
		{"gs://ledger/", "", "", true},
		{"gs:///object", "", "", true},
		{"/tmp/ledger.json", "", "", true},
		{"s3://ledger/a", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "ledger.json", Filename("gs://bucket/folder/ledger.json"))
	assert.Equal(t, "ledger.json", Filename("/tmp/ledger.json"))
}

func TestReadSource(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"profiles":{}}`), 0o600))

	data, err := ReadSource(ctx, nil, path)
	require.NoError(t, err)
	assert.Equal(t, `{"profiles":{}}`, string(data))

	var fetched string
	s := &mockStorage{fetch: func(ctx context.Context, uri string) ([]byte, error) {
		fetched = uri
		return []byte("remote"), nil
	}}
	data, err = ReadSource(ctx, s, "gs://bucket/snap.json")
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))
	assert.Equal(t, "gs://bucket/snap.json", fetched)

	_, err = ReadSource(ctx, nil, "gs://bucket/snap.json")
	assert.Error(t, err)

	_, err = ReadSource(ctx, nil, filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteDest(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteDest(ctx, nil, path, bytes.NewBufferString("local")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	var uploaded bytes.Buffer
	s := &mockStorage{upload: func(ctx context.Context, uri string, r io.Reader) error {
		_, err := io.Copy(&uploaded, r)
		return err
	}}
	require.NoError(t, WriteDest(ctx, s, "gs://bucket/out.json", bytes.NewBufferString("remote")))
	assert.Equal(t, "remote", uploaded.String())
}
