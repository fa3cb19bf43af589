package manifest

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/viewrouter/internal/errors"
)

type mockS3Client struct {
	objects map[string]string
	err     error
	calls   []s3.GetObjectInput
}

func (m *mockS3Client) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.calls = append(m.calls, *params)
	if m.err != nil {
		return nil, m.err
	}
	body, ok := m.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("not found")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestSplitS3(t *testing.T) {
	tests := []struct {
		source      string
		bucket, key string
		ok          bool
	}{
		{"s3://routes/app.yaml", "routes", "app.yaml", true},
		{"s3://routes/env/prod/app.json", "routes", "env/prod/app.json", true},
		{"s3://routes", "", "", false},
		{"s3://routes/", "", "", false},
		{"s3:///app.yaml", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			bucket, key, ok := splitS3(tt.source)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestLoadS3(t *testing.T) {
	client := &mockS3Client{objects: map[string]string{
		"routes/app.yaml":      appYAML,
		"routes/prod/app.json": appJSON,
	}}
	ctx := context.Background()

	m, err := Load(ctx, "s3://routes/app.yaml", WithS3Client(client))
	require.NoError(t, err)
	assert.Equal(t, 4, m.Count())

	m, err = Load(ctx, "s3://routes/prod/app.json", WithS3Client(client))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count())

	require.Len(t, client.calls, 2)
	assert.Equal(t, "routes", aws.ToString(client.calls[1].Bucket))
	assert.Equal(t, "prod/app.json", aws.ToString(client.calls[1].Key))
}

func TestLoadS3Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid location", func(t *testing.T) {
		client := &mockS3Client{}
		_, err := Load(ctx, "s3://routes", WithS3Client(client))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.Empty(t, client.calls)
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := Load(ctx, "s3://routes/none.yaml", WithS3Client(&mockS3Client{}))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceUnavailable)

		var nsk *types.NoSuchKey
		assert.ErrorAs(t, err, &nsk)

		var re *errors.RouteError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "The object does not exist", re.Suggestion)
	})

	t.Run("access denied", func(t *testing.T) {
		client := &mockS3Client{err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}}
		_, err := Load(ctx, "s3://routes/app.yaml", WithS3Client(client))
		require.Error(t, err)

		var re *errors.RouteError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "M003", re.Code)
		assert.Equal(t, "Check the credentials and bucket policy", re.Suggestion)
	})

	t.Run("other API error", func(t *testing.T) {
		client := &mockS3Client{err: &smithy.GenericAPIError{Code: "InternalError"}}
		_, err := Load(ctx, "s3://routes/app.yaml", WithS3Client(client))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "InternalError")
	})

	t.Run("invalid content", func(t *testing.T) {
		client := &mockS3Client{objects: map[string]string{"routes/app.yaml": "routes: ["}}
		_, err := Load(ctx, "s3://routes/app.yaml", WithS3Client(client))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidManifest)
	})
}
