package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPutObject struct {
	mock.Mock
}

func (m *mockPutObject) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestS3Store_Upload(t *testing.T) {
	// Arrange
	client := new(mockPutObject)
	var body []byte
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ = io.ReadAll(in.Body)
		return aws.ToString(in.Bucket) == "recipes" &&
			aws.ToString(in.Key) == "recipes/abc/photo 1.png" &&
			aws.ToString(in.ContentType) == "image/png"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	store := NewS3StoreWithClient(client, config.StorageConfig{Bucket: "recipes", Region: "eu-west-3"}, zap.NewNop())

	// Act
	url, err := store.Upload(context.Background(), "recipes/abc/photo 1.png", []byte("png"), "image/png")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://recipes.s3.eu-west-3.amazonaws.com/recipes/abc/photo%201.png", url)
	assert.Equal(t, []byte("png"), body)
	client.AssertExpectations(t)
}

func TestS3Store_UploadErrors(t *testing.T) {
	client := new(mockPutObject)
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	store := NewS3StoreWithClient(client, config.StorageConfig{Bucket: "b", MaxFileSize: 4}, zap.NewNop())

	_, err := store.Upload(context.Background(), "k", []byte("too large"), "image/png")
	assert.ErrorContains(t, err, "exceeds")
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)

	_, err = store.Upload(context.Background(), "k", []byte("ok"), "image/png")
	assert.ErrorContains(t, err, "access denied")
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{name: "cdn", cfg: config.StorageConfig{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"}, want: "https://cdn.example.com"},
		{name: "custom endpoint", cfg: config.StorageConfig{Bucket: "b", Endpoint: "http://localhost:9000"}, want: "http://localhost:9000/b"},
		{name: "regional", cfg: config.StorageConfig{Bucket: "b", Region: "us-east-2"}, want: "https://b.s3.us-east-2.amazonaws.com"},
		{name: "global", cfg: config.StorageConfig{Bucket: "b"}, want: "https://b.s3.amazonaws.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBaseURL(tt.cfg))
		})
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), "k", nil, "image/png")
	assert.ErrorIs(t, err, outbound.ErrNotConfigured)
}
