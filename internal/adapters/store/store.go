// Package store persists custom commands between runs.
package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/cmdrule/internal/adapters/fingerprint"
	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/cmdrule/internal/core/ports"
	"go.trai.ch/zerr"
)

// schemaVersion must be incremented whenever payload changes shape.
const schemaVersion uint16 = 1

var _ ports.RecordStore = (*Store)(nil)

// Store implements ports.RecordStore with one msgpack file per target.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the records stored for target under root.
func (s *Store) Get(root, target string) ([]*domain.CustomCommand, error) {
	filename := s.getFilename(root, target)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "target", target)
	}

	var p payload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "target", target)
	}
	if p.Schema != schemaVersion {
		err := zerr.With(domain.ErrStoreSchemaMismatch, "found", p.Schema)
		return nil, zerr.With(err, "expected", schemaVersion)
	}

	records := make([]*domain.CustomCommand, 0, len(p.Records))
	for i := range p.Records {
		cc, err := p.Records[i].toDomain()
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "target", target)
		}
		records = append(records, cc)
	}
	return records, nil
}

// Put replaces the records stored for target under root.
// The file is written to a temporary name and renamed into place.
func (s *Store) Put(root, target string, records []*domain.CustomCommand) error {
	p := payload{
		Schema:  schemaVersion,
		Target:  target,
		Records: make([]recordDTO, len(records)),
	}
	for i, cc := range records {
		p.Records[i] = fromDomain(cc)
	}

	data, err := msgpack.Marshal(&p)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	filename := s.getFilename(root, target)
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

func (s *Store) getFilename(root, target string) string {
	storeDir := filepath.Join(root, domain.DefaultStorePath())
	return filepath.Join(storeDir, fingerprint.Key(target)+".mp")
}
