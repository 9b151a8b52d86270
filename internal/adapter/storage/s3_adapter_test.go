package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Upload(t *testing.T) {
	client := &fakeS3{}
	adapter := NewS3Adapter(client, "car-images", "https://cdn.cartec.test/car-images/")

	url, err := adapter.Upload(context.Background(), "cars/1700000000000_front.jpg", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.cartec.test/car-images/cars/1700000000000_front.jpg", url)
	assert.Equal(t, "car-images", aws.StringValue(client.input.Bucket))
	assert.Equal(t, "cars/1700000000000_front.jpg", aws.StringValue(client.input.Key))
	assert.Equal(t, "image/jpeg", aws.StringValue(client.input.ContentType))
	assert.Equal(t, s3.ObjectCannedACLPublicRead, aws.StringValue(client.input.ACL))
	assert.Equal(t, "jpeg", client.body)
}

func TestS3Upload_Error(t *testing.T) {
	denied := errors.New("AccessDenied")
	adapter := NewS3Adapter(&fakeS3{err: denied}, "b", "https://x")

	_, err := adapter.Upload(context.Background(), "cars/k", "image/png", strings.NewReader(""))
	assert.ErrorIs(t, err, denied)
}

func TestNewS3Client(t *testing.T) {
	client, err := NewS3Client(S3Options{
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)
	assert.True(t, aws.BoolValue(client.Config.S3ForcePathStyle))
}
