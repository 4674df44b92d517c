package minio

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/newdrug-response/internal/config"
	"github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/newdrug-response/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func (m *MockMinIOAPI) FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, filePath, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

type ClientTestSuite struct {
	suite.Suite
	api *MockMinIOAPI
	log logging.Logger
	cfg config.MinIOConfig
}

func (s *ClientTestSuite) SetupTest() {
	s.api = new(MockMinIOAPI)
	s.log = logging.NewNopLogger()
	s.cfg = config.MinIOConfig{
		Endpoint: "localhost:9000",
		Bucket:   "predictions",
		Prefix:   "runs",
	}
}

func (s *ClientTestSuite) TestApplyDefaults() {
	cfg := &config.MinIOConfig{}
	applyDefaults(cfg)
	assert.Equal(s.T(), "us-east-1", cfg.Region)

	cfg = &config.MinIOConfig{Region: "eu-west-1"}
	applyDefaults(cfg)
	assert.Equal(s.T(), "eu-west-1", cfg.Region)
}

func (s *ClientTestSuite) TestNewClient_BucketExists() {
	s.api.On("BucketExists", mock.Anything, "predictions").Return(true, nil)

	c, err := newMinIOClient(context.Background(), s.api, s.cfg, s.log)
	s.Require().NoError(err)
	assert.Equal(s.T(), "predictions", c.Bucket())
	assert.Equal(s.T(), "runs", c.Prefix())
	s.api.AssertNotCalled(s.T(), "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClientTestSuite) TestNewClient_CreatesMissingBucket() {
	s.api.On("BucketExists", mock.Anything, "predictions").Return(false, nil)
	s.api.On("MakeBucket", mock.Anything, "predictions", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)

	_, err := newMinIOClient(context.Background(), s.api, s.cfg, s.log)
	s.Require().NoError(err)
	s.api.AssertExpectations(s.T())
}

func (s *ClientTestSuite) TestNewClient_MakeBucketFails() {
	s.api.On("BucketExists", mock.Anything, "predictions").Return(false, nil)
	s.api.On("MakeBucket", mock.Anything, "predictions", mock.Anything).Return(assert.AnError)

	_, err := newMinIOClient(context.Background(), s.api, s.cfg, s.log)
	s.Require().Error(err)
	assert.True(s.T(), errors.IsCode(err, errors.CodeStorageUpload))
}

func (s *ClientTestSuite) TestNewClient_BucketCheckFails() {
	s.api.On("BucketExists", mock.Anything, "predictions").Return(false, assert.AnError)

	_, err := newMinIOClient(context.Background(), s.api, s.cfg, s.log)
	s.Require().Error(err)
	assert.True(s.T(), errors.IsCode(err, errors.CodeStorageUpload))
}

func (s *ClientTestSuite) TestNewClient_MissingBucket() {
	s.cfg.Bucket = ""
	_, err := newMinIOClient(context.Background(), s.api, s.cfg, nil)
	s.Require().Error(err)
	assert.True(s.T(), errors.IsCode(err, errors.CodeInvalidParam))
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

//Personal.AI order the ending
