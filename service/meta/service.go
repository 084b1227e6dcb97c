// Package meta reads and writes YAML documents through afs, so kernel
// configuration and state dumps can live on any afs-supported storage.
package meta

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"gopkg.in/yaml.v3"
)

// Service loads and stores YAML documents.
type Service struct {
	fs      afs.Service
	options []storage.Option
}

// Load decodes the YAML document at URL into target after expanding
// ${env.KEY} expressions.
func (s *Service) Load(ctx context.Context, URL string, target interface{}) error {
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return fmt.Errorf("failed to download %v: %w", URL, err)
	}
	if err = yaml.Unmarshal([]byte(ExpandEnv(string(data))), target); err != nil {
		return fmt.Errorf("failed to decode %v: %w", URL, err)
	}
	return nil
}

// Save encodes source as YAML and uploads it to URL.
func (s *Service) Save(ctx context.Context, URL string, source interface{}) error {
	data, err := yaml.Marshal(source)
	if err != nil {
		return fmt.Errorf("failed to encode %v: %w", URL, err)
	}
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data), s.options...); err != nil {
		return fmt.Errorf("failed to upload %v: %w", URL, err)
	}
	return nil
}

// New creates a meta service
func New(fs afs.Service, options ...storage.Option) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, options: options}
}
