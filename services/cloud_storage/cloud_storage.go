// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud_storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/Netcracker/qubership-apihub-capture-manager/utils"
	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// CloudStorage
// asynchronous archive of downloaded capture files
type CloudStorage interface {
	// StoreFile queues a copy of the artifact, never blocks on the upload itself
	StoreFile(fileName string, content []byte)
	IsActive() bool
	Close()
}

// Request
// a single archive job
type Request struct {
	FileName string
	Content  []byte
	stop     bool
}

type cloudStorage struct {
	inputQueue         chan Request
	closeOnce          sync.Once
	done               chan struct{}
	storageCredentials entities.MinioStorageCreds
	minioClient        *minioClient
	uploader           uploader
}

type minioClient struct {
	client *minio.Client
	error  error
}

// uploader
// the object store operations the archive loop needs
type uploader interface {
	EnsureBucket(ctx context.Context, bucket string) error
	Put(ctx context.Context, bucket, objectName string, content []byte) error
}

const (
	// TableName object prefix for archived captures
	TableName      = "PacketCaptures"
	QueueSize      = 16
	UploadAttempts = 3
	uploadTimeout  = 2 * time.Minute
)

func mustGetSystemCertPool() *x509.CertPool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		return x509.NewCertPool()
	}
	return pool
}

// createMinioClient
// creates minio instance, inactive storage does not get one
func createMinioClient(creds *entities.MinioStorageCreds) *minioClient {
	if !creds.IsActive {
		return nil
	}
	client := new(minioClient)
	tr, err := minio.DefaultTransport(true)
	if err != nil {
		log.Warnf("error creating the minio connection: error creating the default transport layer: %v", err)
		client.error = err
		return client
	}
	if creds.Crt != view.EmptyString {
		pem, err := base64.StdEncoding.DecodeString(creds.Crt)
		if err != nil {
			log.Warnf("unable to decode storage certificate: %v", err)
			client.error = err
			return client
		}
		rootCAs := mustGetSystemCertPool()
		rootCAs.AppendCertsFromPEM(pem)
		tr.TLSClientConfig.RootCAs = rootCAs
	}
	mc, err := minio.New(creds.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(creds.AccessKeyId, creds.SecretAccessKey, ""),
		Secure:    true,
		Transport: tr,
	})
	if err != nil {
		log.Warn(err.Error())
		client.error = err
		return client
	}
	log.Infof("MINIO instance initialized")
	client.client = mc
	return client
}

// NewCloudStorage
// creates interface instance and starts the archive loop
func NewCloudStorage(creds entities.MinioStorageCreds) CloudStorage {
	ret := &cloudStorage{
		storageCredentials: creds,
		minioClient:        createMinioClient(&creds),
	}
	if ret.minioClient != nil && ret.minioClient.client != nil {
		ret.uploader = &minioUploader{client: ret.minioClient.client}
	}
	ret.start()
	return ret
}

// newCloudStorageWithUploader
// lets tests replace the object store
func newCloudStorageWithUploader(creds entities.MinioStorageCreds, up uploader) *cloudStorage {
	ret := &cloudStorage{storageCredentials: creds, uploader: up}
	ret.start()
	return ret
}

func (s3 *cloudStorage) start() {
	s3.inputQueue = make(chan Request, QueueSize)
	s3.done = make(chan struct{})
	utils.SafeAsync(func() {
		defer close(s3.done)
		storeProcedure(s3, s3.inputQueue)
	})
}

func (s3 *cloudStorage) IsActive() bool {
	return s3.storageCredentials.IsActive && s3.uploader != nil
}

// StoreFile
// function to receive file store requests
func (s3 *cloudStorage) StoreFile(fileName string, content []byte) {
	if !s3.IsActive() {
		log.Debugf("storage inactive. do not store file %s", fileName)
		return
	}
	if fileName == view.EmptyString || len(content) == 0 {
		return
	}
	select {
	case s3.inputQueue <- Request{FileName: fileName, Content: content}:
		log.Debugf("requested to store file: %s (%d byte(s))", fileName, len(content))
	case <-s3.done:
		log.Warnf("archive closed, file %s is not stored", fileName)
	default:
		log.Warnf("archive queue is full, file %s is not stored", fileName)
	}
}

// Close
// stops the archive loop after queued files are processed
func (s3 *cloudStorage) Close() {
	s3.closeOnce.Do(func() {
		s3.inputQueue <- Request{stop: true}
		<-s3.done
	})
}

// storeProcedure
// goroutine to serve file storing
func storeProcedure(s3 *cloudStorage, inputQueue chan Request) {
	for req := range inputQueue {
		if req.stop {
			break
		}
		name, content := req.FileName, req.Content
		if s3.storageCredentials.CompressBeforeUpload && !strings.HasSuffix(name, view.GzipSuffix) {
			compressed, err := compress(name, content)
			if err != nil {
				log.Warnf("unable to compress file '%s', storing it as is. Error: %v", name, err)
			} else {
				name, content = name+view.GzipSuffix, compressed
			}
		}
		// let's make a couple attempts to store file
		for i := 0; i < UploadAttempts; i++ {
			if err := s3.upload(name, content); err != nil {
				log.Errorf("unable to store file '%s' (attempt %d). Error: %v", name, i+1, err)
				continue
			}
			log.Infof("stored %d byte(s) from file '%s' in s3/minio", len(content), name)
			break
		}
	}
}

func (s3 *cloudStorage) upload(name string, content []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()
	if err := s3.uploader.EnsureBucket(ctx, s3.storageCredentials.BucketName); err != nil {
		return fmt.Errorf("unable to acquire bucket: %w", err)
	}
	return s3.uploader.Put(ctx, s3.storageCredentials.BucketName, buildFileName(TableName, name), content)
}

func compress(name string, content []byte) ([]byte, error) {
	var buf bytes.Buffer
	wz := gzip.NewWriter(&buf)
	wz.Name = path.Base(name) // set filename in archive metadata
	if _, err := wz.Write(content); err != nil {
		return nil, err
	}
	if err := wz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildFileName(tableName, entityId string) string {
	return fmt.Sprintf("%s/%s", tableName, path.Base(entityId))
}

// minioUploader
// uploader over a real minio client
type minioUploader struct {
	client *minio.Client
}

func (m *minioUploader) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		log.Debugf("Using S3/Minio bucket '%s'", bucket)
		return nil
	}
	if err = m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return err
	}
	log.Debugf("S3/Minio bucket '%s' has been created", bucket)
	return nil
}

func (m *minioUploader) Put(ctx context.Context, bucket, objectName string, content []byte) error {
	_, err := m.client.PutObject(ctx, bucket, objectName, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/vnd.tcpdump.pcap"})
	return err
}
