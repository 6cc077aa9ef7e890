package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/sirupsen/logrus"
)

const uploadBlockSize = 4 * 1024 * 1024

// AzureOptions selects the account and container for generated videos.
// ConnectionString takes precedence and is meant for Azurite in development.
type AzureOptions struct {
	Account          string
	Container        string
	ConnectionString string
}

// AzureStorage keeps generated videos in Azure Blob Storage
type AzureStorage struct {
	client    *azblob.Client
	container string
}

// Ensure AzureStorage implements StorageInterface
var _ StorageInterface = (*AzureStorage)(nil)

// NewAzureStorage connects with the connection string when given and with
// the default credential chain otherwise, then makes sure the container exists
func NewAzureStorage(ctx context.Context, opts AzureOptions) (*AzureStorage, error) {
	if opts.Container == "" {
		return nil, errors.New("storage container name is required")
	}

	var (
		client *azblob.Client
		err    error
	)
	switch {
	case opts.ConnectionString != "":
		client, err = azblob.NewClientFromConnectionString(opts.ConnectionString, nil)
	case opts.Account != "":
		credential, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", credErr)
		}
		client, err = azblob.NewClient(fmt.Sprintf("https://%s.blob.core.windows.net/", opts.Account), credential, nil)
	default:
		return nil, errors.New("storage account name or connection string is required")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	s := &AzureStorage{client: client, container: opts.Container}
	if err := s.ensureContainer(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AzureStorage) ensureContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	switch {
	case err == nil:
		logrus.Infof("Created video container %s", s.container)
	case bloberror.HasCode(err, bloberror.ContainerAlreadyExists):
		logrus.Debugf("Video container %s already exists", s.container)
	default:
		return fmt.Errorf("failed to create container %s: %w", s.container, err)
	}
	return nil
}

// contentTypeFor derives the blob content type from the file extension
func contentTypeFor(name string) string {
	if path.Ext(name) == ".mp4" {
		return "video/mp4"
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Store uploads a video, tagging it with its content type so the blob can
// be streamed directly by browsers
func (s *AzureStorage) Store(ctx context.Context, name string, data io.Reader) error {
	if err := validName(name); err != nil {
		return err
	}

	contentType := contentTypeFor(name)
	_, err := s.client.UploadStream(ctx, s.container, name, data, &azblob.UploadStreamOptions{
		BlockSize:   uploadBlockSize,
		Concurrency: 3,
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("failed to upload video %s: %w", name, err)
	}

	logrus.WithFields(logrus.Fields{
		"container":    s.container,
		"name":         name,
		"content_type": contentType,
	}).Info("Stored video in Azure Blob Storage")
	return nil
}

// Open streams a stored video
func (s *AzureStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := validName(name); err != nil {
		return nil, ErrNotFound
	}

	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download video %s: %w", name, err)
	}
	return resp.Body, nil
}

// List returns the stored videos whose names start with prefix
func (s *AzureStorage) List(ctx context.Context, prefix string) ([]Artifact, error) {
	var artifacts []Artifact
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list videos: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			a := Artifact{Name: *item.Name}
			if item.Properties != nil && item.Properties.LastModified != nil {
				a.Modified = *item.Properties.LastModified
			}
			artifacts = append(artifacts, a)
		}
	}

	return artifacts, nil
}

// Delete removes a video. Deleting a missing video is not an error.
func (s *AzureStorage) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, name, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("failed to delete video %s: %w", name, err)
	}
	return nil
}
