package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/saas_boilerplate/internal/config"
)

type fakeObjects struct {
	put     *s3.PutObjectInput
	body    string
	deleted *s3.DeleteObjectInput
	err     error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = in
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresign struct {
	expires time.Duration
}

func (f *fakePresign) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var o s3.PresignOptions
	for _, fn := range optFns {
		fn(&o)
	}
	f.expires = o.Expires
	return &v4.PresignedHTTPRequest{URL: "https://bucket.s3/" + *in.Key + "?X-Amz-Signature=abc"}, nil
}

func TestS3Store_PutPresignDelete(t *testing.T) {
	t.Parallel()

	objs, pre := &fakeObjects{}, &fakePresign{}
	st := &S3Store{objects: objs, presign: pre, bucket: "avatars"}
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "avatars/u1", "image/png", strings.NewReader("png"), 3))
	assert.Equal(t, "avatars", *objs.put.Bucket)
	assert.Equal(t, "avatars/u1", *objs.put.Key)
	assert.Equal(t, "image/png", *objs.put.ContentType)
	assert.EqualValues(t, 3, *objs.put.ContentLength)
	assert.Equal(t, "png", objs.body)

	url, err := st.PresignGet(ctx, "avatars/u1", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, "avatars/u1")
	assert.Equal(t, time.Hour, pre.expires)

	require.NoError(t, st.Delete(ctx, "avatars/u1"))
	assert.Equal(t, "avatars/u1", *objs.deleted.Key)
}

func TestS3Store_Errors(t *testing.T) {
	t.Parallel()

	st := &S3Store{objects: &fakeObjects{err: errors.New("access denied")}, presign: &fakePresign{}, bucket: "avatars"}
	ctx := context.Background()

	require.Error(t, st.Put(ctx, "k", "image/png", strings.NewReader(""), 0))
	require.Error(t, st.Delete(ctx, "k"))
}

func TestNewS3Store_StaticCredentials(t *testing.T) {
	t.Parallel()

	st, err := NewS3Store(context.Background(), config.AWS{
		Region:          "eu-west-2",
		AccessKey:       "key",
		AccessKeySecret: "secret",
		Bucket:          "avatars",
		Endpoint:        "http://localhost:9000",
	})
	require.NoError(t, err)

	url, err := st.PresignGet(context.Background(), "avatars/u1", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/avatars/avatars/u1?"), url)
	assert.Contains(t, url, "X-Amz-Expires=3600")
}
