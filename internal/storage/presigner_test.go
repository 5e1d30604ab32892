package storage

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3PresignerDisabledWithoutBucket(t *testing.T) {
	p, err := NewS3Presigner(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = p.PresignGet(context.Background(), "invoices/x.pdf")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPresignGet(t *testing.T) {
	p, err := NewS3Presigner(context.Background(), &config.Config{
		S3Bucket:    "invoices",
		S3Region:    "us-east-1",
		S3Endpoint:  "http://localhost:9000",
		S3AccessKey: "minio",
		S3SecretKey: "minio123",
	})
	require.NoError(t, err)
	require.NotNil(t, p)

	url, err := p.PresignGet(context.Background(), "2026/INV-01.pdf")
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/invoices/2026/INV-01.pdf")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
